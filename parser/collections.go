package parser

import (
	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/token"
)

// parseObject parses a JSON-style `{ "key": value, ... }`.
func (p *parser) parseObject() ast.ID {
	open := p.cur
	id := p.arena.New(ast.Object, open.Span)
	p.brackets.push(token.ObjectStart, open)
	p.depth++
	p.advance()

	for {
		if !p.curValid || p.atEOF() {
			p.diags.Addf(diag.ExpectedXGotY, diag.Error, p.endSpan(), "expected %s, got end of input", token.ObjectEnd)
			break
		}
		if p.at(token.ObjectEnd) {
			break
		}
		if p.checkMismatchedCloser(token.ObjectEnd) {
			break
		}
		before := p.cur.Span.Start
		p.arena.AppendChild(id, p.parseProperty())
		invariant.Invariant(p.progressed(before), "parser: parseObject made no progress")

		if p.at(token.Comma) {
			p.advance()
			if p.at(token.ObjectEnd) {
				sev := diag.Error
				if p.cfg.AllowTrailingCommas {
					sev = diag.Info
				}
				p.diags.Addf(diag.TrailingComma, sev, p.cur.Span, "trailing comma before %s", token.ObjectEnd)
			}
			continue
		}
		break
	}

	end := p.closeBracket(id, token.ObjectStart, token.ObjectEnd, open.Span)
	p.depth--
	p.arena.Node(id).Span = end
	return id
}

func (p *parser) parseProperty() ast.ID {
	start := p.cur.Span
	if !p.at(token.StringValue) {
		tok := p.cur
		p.diags.Addf(diag.UnexpectedToken, diag.Error, tok.Span, "expected a string key, got %s", tok.Kind)
		p.advance()
		return p.arena.New(ast.Err, tok.Span)
	}
	key := p.parseScalar(ast.StringLit)

	if !p.at(token.Colon) {
		p.diags.Addf(diag.MissingSeparator, diag.Error, p.errSpanAfter(key), "expected %s after property key", token.Colon)
		id := p.arena.New(ast.Property, start)
		p.arena.AppendChild(id, key)
		return id
	}
	p.advance()

	val := p.parseValue()
	id := p.arena.New(ast.Property, span.Cover(start, p.arena.Node(val).Span))
	p.arena.AppendChild(id, key)
	p.arena.AppendChild(id, val)
	return id
}

// parseStruct parses a ZON struct literal `.{ .field = value, ... }`.
func (p *parser) parseStruct() ast.ID {
	open := p.cur
	id := p.arena.New(ast.Object, open.Span)
	p.brackets.push(token.StructStart, open)
	p.depth++
	p.advance()

	for {
		if !p.curValid || p.atEOF() {
			p.diags.Addf(diag.ExpectedXGotY, diag.Error, p.endSpan(), "expected %s, got end of input", token.ObjectEnd)
			break
		}
		if p.at(token.ObjectEnd) {
			break
		}
		if p.checkMismatchedCloser(token.ObjectEnd) {
			break
		}
		before := p.cur.Span.Start
		p.arena.AppendChild(id, p.parseField())
		invariant.Invariant(p.progressed(before), "parser: parseStruct made no progress")

		if p.at(token.Comma) {
			p.advance()
			if p.at(token.ObjectEnd) {
				sev := diag.Error
				if p.cfg.AllowTrailingCommas {
					sev = diag.Info
				}
				p.diags.Addf(diag.TrailingComma, sev, p.cur.Span, "trailing comma before %s", token.ObjectEnd)
			}
			continue
		}
		break
	}

	end := p.closeBracket(id, token.StructStart, token.ObjectEnd, open.Span)
	p.depth--
	p.arena.Node(id).Span = end
	return id
}

func (p *parser) parseField() ast.ID {
	start := p.cur.Span
	if !p.at(token.FieldName) {
		tok := p.cur
		p.diags.Addf(diag.UnexpectedToken, diag.Error, tok.Span, "expected a field name, got %s", tok.Kind)
		p.advance()
		return p.arena.New(ast.Err, tok.Span)
	}
	name := p.parseScalar(ast.Identifier)

	if !p.at(token.Equals) {
		p.diags.Addf(diag.MissingSeparator, diag.Error, p.errSpanAfter(name), "expected %s after field name", token.Equals)
		id := p.arena.New(ast.Field, start)
		p.arena.AppendChild(id, name)
		return id
	}
	p.advance()

	val := p.parseValue()
	id := p.arena.New(ast.Field, span.Cover(start, p.arena.Node(val).Span))
	p.arena.AppendChild(id, name)
	p.arena.AppendChild(id, val)
	return id
}

// parseArray parses `[ value, value, ... ]`, shared by JSON and ZON.
func (p *parser) parseArray() ast.ID {
	open := p.cur
	id := p.arena.New(ast.Array, open.Span)
	p.brackets.push(token.ArrayStart, open)
	p.depth++
	p.advance()

	for {
		if !p.curValid || p.atEOF() {
			p.diags.Addf(diag.ExpectedXGotY, diag.Error, p.endSpan(), "expected %s, got end of input", token.ArrayEnd)
			break
		}
		if p.at(token.ArrayEnd) {
			break
		}
		if p.checkMismatchedCloser(token.ArrayEnd) {
			break
		}
		before := p.cur.Span.Start
		p.arena.AppendChild(id, p.parseValue())
		invariant.Invariant(p.progressed(before), "parser: parseArray made no progress")

		if p.at(token.Comma) {
			p.advance()
			if p.at(token.ArrayEnd) {
				sev := diag.Error
				if p.cfg.AllowTrailingCommas {
					sev = diag.Info
				}
				p.diags.Addf(diag.TrailingComma, sev, p.cur.Span, "trailing comma before %s", token.ArrayEnd)
			}
			continue
		}
		break
	}

	end := p.closeBracket(id, token.ArrayStart, token.ArrayEnd, open.Span)
	p.depth--
	p.arena.Node(id).Span = end
	return id
}

// expectEOF consumes and diagnoses any trailing tokens after the top-level
// value: well-formed input leaves exactly the eof token.
func (p *parser) expectEOF() {
	for p.curValid && !p.atEOF() {
		tok := p.cur
		p.diags.Addf(diag.UnexpectedToken, diag.Error, tok.Span, "unexpected %s after top-level value", tok.Kind)
		p.advance()
	}
}

// checkMismatchedCloser reports a closer token that does not match the
// bracket currently open (e.g. "]" closing a "{") and leaves it unconsumed,
// so the caller can stop collecting elements instead of misreading it as a
// value or key, and an enclosing bracket can still match it.
func (p *parser) checkMismatchedCloser(want token.Kind) bool {
	if !p.curValid || p.cur.Kind == want || !p.isCloser(p.cur.Kind) {
		return false
	}
	if top, ok := p.brackets.peek(); ok {
		p.diags.Addf(diag.UnmatchedBracket, diag.Error, p.cur.Span,
			"mismatched closing bracket: %s opened at offset %d but %s found",
			top.kind, top.open.Span.Start, p.cur.Kind)
	}
	return true
}

// closeBracket consumes the expected closer if present, or records the
// unclosed bracket and appends a synthetic Err child marking the missing
// close, matching spec §8 scenario (c): a collection left open at end of
// input still yields a well-formed partial AST plus an inserted err node.
// The record is an unmatched_bracket diagnostic when a different closer
// stands at the current position and expected_x_got_y otherwise; it is
// skipped when the collection loop already reported this position.
func (p *parser) closeBracket(id ast.ID, openKind, closeKind token.Kind, open span.Span) span.Span {
	p.brackets.pop(openKind)
	if p.at(closeKind) {
		end := span.Cover(open, p.cur.Span)
		p.advance()
		return end
	}
	reported := false
	if all := p.diags.All(); len(all) > 0 {
		last := all[len(all)-1]
		reported = (last.Code == diag.ExpectedXGotY || last.Code == diag.UnmatchedBracket) && last.Span.Start == p.curPos()
	}
	if !reported && p.curValid && p.isCloser(p.cur.Kind) {
		p.diags.Addf(diag.UnmatchedBracket, diag.Error, p.cur.Span,
			"mismatched closing bracket: %s opened at offset %d but %s found", openKind, open.Start, p.cur.Kind)
	} else if !reported {
		p.diags.Addf(diag.ExpectedXGotY, diag.Error, p.endSpan(), "expected %s, got %s", closeKind, p.cur.Kind)
	}
	missing := p.arena.New(ast.Err, p.endSpan())
	p.arena.AppendChild(id, missing)
	return span.Cover(open, p.endSpan())
}

func (p *parser) progressed(before uint32) bool {
	if !p.curValid {
		return true
	}
	return p.cur.Span.Start > before || p.atEOF()
}

// endSpan returns a zero-width span at the current lexer position, used for
// diagnostics anchored at end-of-input.
func (p *parser) endSpan() span.Span {
	pos := p.curPos()
	return span.New(pos, pos)
}

func (p *parser) errSpanAfter(id ast.ID) span.Span {
	end := p.arena.Node(id).Span.End
	return span.New(end, end)
}
