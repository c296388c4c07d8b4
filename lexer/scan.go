package lexer

import (
	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/token"
)

// resume continues a token whose bytes ran out mid-scan on a prior call,
// dispatching on the kind recorded when the TokenBuffer was engaged.
func (l *Lexer) resume() token.Token {
	p := l.pend
	switch p.kind {
	case token.Whitespace:
		return l.scanWhitespace(p.start)
	case token.Comment:
		if p.quote == '?' {
			l.pend = nil
			if l.pos < l.fed {
				switch l.buf[l.pos] {
				case '/':
					l.advance()
					return l.scanLineComment(p.start)
				case '*':
					l.advance()
					return l.scanBlockComment(p.start)
				}
			}
			return token.Token{Kind: token.Err, Span: span.New(p.start, l.pos), Depth: p.depth, Flags: token.HasError}
		}
		if p.block {
			return l.scanBlockComment(p.start)
		}
		return l.scanLineComment(p.start)
	case token.StringValue, token.CharLiteral:
		return l.scanQuoted(p.kind, p.start)
	case token.NumberValue:
		return l.scanNumber(p.start)
	case token.Identifier, token.FieldName, token.Import:
		return l.continueIdentLike(p.kind, p.start)
	case token.BooleanTrue, token.BooleanFalse, token.NullValue:
		return l.matchLiteral(p.start, "", p.kind)
	default:
		invariant.Invariant(false, "lexer: resume with unexpected pending kind %s", p.kind)
		return token.Token{}
	}
}

// beginPending stashes the scan state for a token that ran out of fed bytes
// before reaching its terminator, and returns the continuation token that
// tells the caller to Feed more and call Next again.
func (l *Lexer) beginPending(p pending) token.Token {
	l.pend = &p
	return token.Token{
		Kind:  token.ContinuationTok,
		Span:  span.New(p.start, l.pos),
		Depth: p.depth,
		Flags: token.IsContinuation,
	}
}

func (l *Lexer) scanWhitespace(start uint32) token.Token {
	if l.pend != nil {
		start = l.pend.start
		l.pend = nil
	}
	for l.pos < l.fed && isSpace(l.buf[l.pos]) {
		l.advance()
	}
	if l.pos >= l.fed && l.streaming {
		return l.beginPending(pending{kind: token.Whitespace, start: start, depth: l.depth})
	}
	return token.Token{Kind: token.Whitespace, Span: span.New(start, l.pos), Depth: l.depth}
}

// scanSlash resolves the ambiguity between a line comment, a block comment,
// and a bare invalid slash, consuming the first '/' before deciding.
func (l *Lexer) scanSlash(start uint32) token.Token {
	l.advance()
	if l.pos >= l.fed {
		if l.streaming {
			return l.beginPending(pending{kind: token.Comment, start: start, depth: l.depth, quote: '?'})
		}
		return token.Token{Kind: token.Err, Span: span.New(start, l.pos), Depth: l.depth, Flags: token.HasError}
	}
	switch l.buf[l.pos] {
	case '/':
		l.advance()
		return l.scanLineComment(start)
	case '*':
		l.advance()
		return l.scanBlockComment(start)
	default:
		return token.Token{Kind: token.Err, Span: span.New(start, l.pos), Depth: l.depth, Flags: token.HasError}
	}
}

// scanLineComment consumes through (but not including) the terminating
// newline, which is left for the next token as its own whitespace run.
func (l *Lexer) scanLineComment(start uint32) token.Token {
	if l.pend != nil {
		start = l.pend.start
		l.pend = nil
	}
	for l.pos < l.fed && l.buf[l.pos] != '\n' {
		l.advance()
	}
	if l.pos >= l.fed && l.streaming {
		return l.beginPending(pending{kind: token.Comment, start: start, depth: l.depth, block: false})
	}
	return token.Token{Kind: token.Comment, Span: span.New(start, l.pos), Depth: l.depth}
}

func (l *Lexer) scanBlockComment(start uint32) token.Token {
	prevStar := false
	if l.pend != nil {
		start = l.pend.start
		prevStar = l.pend.prevSpecial
		l.pend = nil
	}
	for l.pos < l.fed {
		ch := l.buf[l.pos]
		if prevStar && ch == '/' {
			l.advance()
			return token.Token{Kind: token.Comment, Span: span.New(start, l.pos), Depth: l.depth}
		}
		prevStar = ch == '*'
		l.advance()
	}
	if l.streaming {
		return l.beginPending(pending{kind: token.Comment, start: start, depth: l.depth, block: true, prevSpecial: prevStar})
	}
	return token.Token{Kind: token.Err, Span: span.New(start, l.pos), Depth: l.depth, Flags: token.HasError}
}

func (l *Lexer) scanString(start uint32) token.Token {
	return l.scanQuoted(token.StringValue, start)
}

func (l *Lexer) scanCharLiteral(start uint32) token.Token {
	return l.scanQuoted(token.CharLiteral, start)
}

// scanQuoted scans a double-quoted string or (ZON-only) single-quoted
// character literal; both share backslash-escape handling and only differ
// in which byte closes them and the token kind they produce. A character
// literal's length is not checked.
func (l *Lexer) scanQuoted(kind token.Kind, start uint32) token.Token {
	var quote byte
	var prevSpecial, hasEscapes bool
	if l.pend != nil {
		p := l.pend
		quote, prevSpecial, hasEscapes, start = p.quote, p.prevSpecial, p.hasEscapes, p.start
		l.pend = nil
	} else {
		quote = l.buf[l.pos]
		l.advance()
	}
	for l.pos < l.fed {
		ch := l.buf[l.pos]
		switch {
		case prevSpecial:
			prevSpecial = false
			l.advance()
		case ch == '\\':
			prevSpecial = true
			hasEscapes = true
			l.advance()
		case ch == quote:
			l.advance()
			var flags token.Flags
			if hasEscapes {
				flags |= token.HasEscapes
			}
			return token.Token{Kind: kind, Span: span.New(start, l.pos), Depth: l.depth, Flags: flags}
		default:
			l.advance()
		}
	}
	if l.streaming {
		return l.beginPending(pending{
			kind: kind, start: start, depth: l.depth,
			quote: quote, prevSpecial: prevSpecial, hasEscapes: hasEscapes,
		})
	}
	flags := token.HasError
	if hasEscapes {
		flags |= token.HasEscapes
	}
	return token.Token{Kind: token.Err, Span: span.New(start, l.pos), Depth: l.depth, Flags: flags}
}

func (l *Lexer) scanNumber(start uint32) token.Token {
	isFloat, isSci := false, false
	if l.pend != nil {
		p := l.pend
		start, isFloat, isSci = p.start, p.isFloat, p.isSci
		l.pend = nil
	} else if l.buf[l.pos] == '-' {
		l.advance()
	}
	for l.pos < l.fed {
		ch := l.buf[l.pos]
		switch {
		case isDigit(ch):
			l.advance()
		case ch == '.' && !isFloat && !isSci:
			isFloat = true
			l.advance()
		case (ch == 'e' || ch == 'E') && !isSci:
			isSci = true
			l.advance()
			if l.pos < l.fed && (l.buf[l.pos] == '+' || l.buf[l.pos] == '-') {
				l.advance()
			}
		default:
			return l.finishNumber(start, isFloat, isSci)
		}
	}
	if l.streaming {
		return l.beginPending(pending{kind: token.NumberValue, start: start, depth: l.depth, isFloat: isFloat, isSci: isSci})
	}
	return l.finishNumber(start, isFloat, isSci)
}

func (l *Lexer) finishNumber(start uint32, isFloat, isSci bool) token.Token {
	var flags token.Flags
	if isFloat {
		flags |= token.IsFloat
	}
	if isSci {
		flags |= token.IsScientific
	}
	if l.buf[start] == '-' {
		flags |= token.IsNegative
	}
	return token.Token{Kind: token.NumberValue, Span: span.New(start, l.pos), Depth: l.depth, Flags: flags}
}

func (l *Lexer) scanKeyword(start uint32) token.Token {
	switch l.buf[l.pos] {
	case 't':
		return l.matchLiteral(start, "true", token.BooleanTrue)
	case 'f':
		return l.matchLiteral(start, "false", token.BooleanFalse)
	default:
		return l.matchLiteral(start, "null", token.NullValue)
	}
}

// matchLiteral matches a fixed byte sequence (true/false/null), resuming at
// the byte offset recorded in l.pend if a prior call ran out of bytes.
func (l *Lexer) matchLiteral(start uint32, want string, kind token.Kind) token.Token {
	matched := 0
	if l.pend != nil {
		p := l.pend
		start, kind, want, matched = p.start, p.kind, p.literal, p.matched
		l.pend = nil
	}
	for matched < len(want) {
		if l.pos >= l.fed {
			if l.streaming {
				return l.beginPending(pending{kind: kind, start: start, depth: l.depth, literal: want, matched: matched})
			}
			return token.Token{Kind: token.Err, Span: span.New(start, l.pos), Depth: l.depth, Flags: token.HasError}
		}
		if l.buf[l.pos] != want[matched] {
			return l.errToken(start)
		}
		l.advance()
		matched++
	}
	return token.Token{Kind: kind, Span: span.New(start, l.pos), Depth: l.depth}
}

func (l *Lexer) scanIdentifier(start uint32) token.Token {
	return l.continueIdentLike(token.Identifier, start)
}

// scanZonFieldOrEnum handles a leading '.' followed by an identifier. ZON
// uses the same shape for a struct field name (".foo = 1") and a bare enum
// literal (".foo" in value position); the lexer always emits FieldName and
// leaves retagging a value-position occurrence as EnumLiteral to the parser,
// which knows which position it is looking at.
func (l *Lexer) scanZonFieldOrEnum(start uint32) token.Token {
	l.advance()
	return l.continueIdentLike(token.FieldName, start)
}

func (l *Lexer) scanImport(start uint32) token.Token {
	l.advance()
	return l.continueIdentLike(token.Import, start)
}

func (l *Lexer) continueIdentLike(kind token.Kind, start uint32) token.Token {
	if l.pend != nil {
		start, kind = l.pend.start, l.pend.kind
		l.pend = nil
	}
	for l.pos < l.fed && isIdentPart(l.buf[l.pos]) {
		l.advance()
	}
	if l.pos >= l.fed && l.streaming {
		return l.beginPending(pending{kind: kind, start: start, depth: l.depth})
	}
	return token.Token{Kind: kind, Span: span.New(start, l.pos), Depth: l.depth}
}
