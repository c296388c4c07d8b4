// Package parser implements the recursive-descent parser of spec §4.2: it
// drives a lexer.Lexer token by token, builds an ast.Arena tree, and
// accumulates diag.Diagnostic values instead of failing outright, so a
// caller that ignores diagnostics still gets a best-effort AST (spec §7).
package parser

import (
	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/lexer"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/token"
	"github.com/opal-lang/stratacore/value"
)

// Result is the ParseResult of spec §6: the tree, the accumulated
// diagnostics, and the atom pool used to intern identifiers and field
// names (a FactStore built from this tree shares the same pool).
type Result struct {
	Arena       *ast.Arena
	Root        ast.ID
	Diagnostics []diag.Diagnostic
	Atoms       *value.AtomPool
}

// HasErrors reports whether any diagnostic at error severity was produced.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

const defaultMaxDepth = 100

// Parse parses source under lang, applying any supplied options over that
// language's defaults. Parse never panics on malformed input: malformed
// input produces Err nodes and diagnostics, never a Go error return (spec
// §7: only out-of-memory and contract violations are hard failures).
func Parse(lang lexer.Language, source []byte, opts ...Opt) Result {
	cfg := defaultConfig(lang)
	for _, o := range opts {
		o(&cfg)
	}

	var lexOpts []lexer.Opt
	if cfg.PreserveTrivia {
		lexOpts = append(lexOpts, lexer.WithTrivia())
	}

	atoms := cfg.Atoms
	if atoms == nil {
		atoms = value.NewAtomPool()
	}
	p := &parser{
		lex:   lexer.New(lang, source, lexOpts...),
		lang:  lang,
		cfg:   cfg,
		arena: ast.NewArena(len(source) / 4),
		atoms: atoms,
		src:   source,
	}
	p.advance()

	if len(source) == 0 {
		p.diags.Addf(diag.EmptyInput, diag.Warning, span.Zero, "empty input")
		root := p.arena.New(ast.Root, span.Zero)
		errNode := p.arena.New(ast.Err, span.Zero)
		p.arena.AppendChild(root, errNode)
		return p.result(root)
	}

	root := p.arena.New(ast.Root, span.Zero)
	topValue := p.parseValue()
	if topValue != 0 {
		p.arena.AppendChild(root, topValue)
	}
	p.expectEOF()

	rootSpan := span.New(0, uint32(len(source)))
	if topValue != 0 {
		rootSpan = p.arena.Node(topValue).Span
	}
	p.arena.Node(root).Span = rootSpan
	return p.result(root)
}

func defaultConfig(lang lexer.Language) Config {
	return Config{
		AllowTrailingCommas: lang == lexer.ZON,
		RecoverFromErrors:   true,
		MaxDepth:            defaultMaxDepth,
		PreserveTrivia:      false,
	}
}

type parser struct {
	lex   *lexer.Lexer
	lang  lexer.Language
	cfg   Config
	arena *ast.Arena
	atoms *value.AtomPool
	diags diag.Bag
	src   []byte

	cur      token.Token
	curValid bool

	depth       uint32
	depthWarned bool
	brackets    bracketTracker
}

func (p *parser) result(root ast.ID) Result {
	return Result{
		Arena:       p.arena,
		Root:        root,
		Diagnostics: p.diags.All(),
		Atoms:       p.atoms,
	}
}

// advance skips trivia (unless PreserveTrivia requested it from the lexer,
// in which case the parser still does not attach it to nodes — trivia
// attachment belongs to the formatter, which walks tokens directly) and
// loads the next meaningful token into p.cur.
func (p *parser) advance() {
	for {
		tok, ok := p.lex.Next()
		if !ok {
			p.curValid = false
			return
		}
		if tok.Kind.IsTrivia() {
			continue
		}
		p.cur = tok
		p.curValid = true
		return
	}
}

func (p *parser) at(kind token.Kind) bool {
	return p.curValid && p.cur.Kind == kind
}

func (p *parser) atEOF() bool {
	return p.curValid && p.cur.Kind == token.EOF
}

// parseValue parses one value in value position: an object/struct, array,
// scalar literal, or (ZON) identifier/enum literal. In the exhausted-input
// case it records an expected_x_got_y diagnostic and returns a zero-width
// Err node; it never returns 0.
func (p *parser) parseValue() ast.ID {
	if !p.curValid || p.atEOF() {
		start := p.curPos()
		p.diags.Addf(diag.ExpectedXGotY, diag.Error, span.New(start, start), "expected a value, got end of input")
		return p.arena.New(ast.Err, span.New(start, start))
	}

	if p.depth+1 > p.cfg.MaxDepth {
		return p.parseOverflow()
	}

	switch p.cur.Kind {
	case token.ObjectStart:
		return p.parseObject()
	case token.StructStart:
		return p.parseStruct()
	case token.ArrayStart:
		return p.parseArray()
	case token.StringValue:
		return p.parseScalar(ast.StringLit)
	case token.NumberValue:
		return p.parseScalar(ast.NumberLit)
	case token.BooleanTrue, token.BooleanFalse:
		return p.parseScalar(ast.BooleanLit)
	case token.NullValue:
		return p.parseScalar(ast.NullLit)
	case token.FieldName:
		// A bare ".name" in value position is an enum literal, not a
		// struct field — the lexer cannot tell these apart (see the
		// lexer's scanZonFieldOrEnum comment), so the parser retags it.
		return p.parseScalar(ast.EnumLit)
	case token.Identifier:
		return p.parseScalar(ast.Identifier)
	default:
		tok := p.cur
		p.diags.Addf(diag.UnexpectedToken, diag.Error, tok.Span, "unexpected %s", tok.Kind)
		p.advance()
		return p.arena.New(ast.Err, tok.Span)
	}
}

// parseOverflow handles the max_depth_exceeded boundary behavior (spec §8):
// one diagnostic for the whole parse, and the offending subtree is skipped
// and replaced by a single Err node rather than recursed into.
func (p *parser) parseOverflow() ast.ID {
	start := p.cur.Span
	if !p.depthWarned {
		p.diags.Addf(diag.MaxDepthExceeded, diag.Error, start, "max nesting depth %d exceeded", p.cfg.MaxDepth)
		p.depthWarned = true
	}
	end := p.skipSubtree()
	return p.arena.New(ast.Err, span.Cover(start, end))
}

// skipSubtree consumes tokens until the current bracket nesting returns to
// (or below) the depth the parser was at when it gave up, and returns the
// span of everything consumed. A closer carries the depth before its
// decrement, one more than its opener's, so the matching closer is the
// first closer at or below targetDepth+1. Used to resynchronize after
// max-depth overflow without actually building the skipped structure.
func (p *parser) skipSubtree() span.Span {
	targetDepth := p.cur.Depth
	sp := p.cur.Span
	if !p.isOpener(p.cur.Kind) {
		p.advance()
		return sp
	}
	p.advance()
	for p.curValid && !p.atEOF() {
		sp = span.Cover(sp, p.cur.Span)
		if p.isCloser(p.cur.Kind) && int(p.cur.Depth) <= int(targetDepth)+1 {
			p.advance()
			break
		}
		p.advance()
	}
	return sp
}

func (p *parser) isOpener(k token.Kind) bool {
	return k == token.ObjectStart || k == token.ArrayStart || k == token.StructStart
}

func (p *parser) isCloser(k token.Kind) bool {
	return k == token.ObjectEnd || k == token.ArrayEnd
}

func (p *parser) parseScalar(kind ast.Kind) ast.ID {
	tok := p.cur
	id := p.arena.New(kind, tok.Span)
	p.arena.Node(id).Value = p.scalarValue(kind, tok)
	p.advance()
	return id
}

func (p *parser) scalarValue(kind ast.Kind, tok token.Token) value.Value {
	switch kind {
	case ast.BooleanLit:
		return value.NewBool(tok.Kind == token.BooleanTrue)
	case ast.NullLit:
		return value.NewNull()
	case ast.StringLit, ast.NumberLit:
		return value.NewSpanRef(tok.Span)
	case ast.Identifier, ast.EnumLit:
		return value.NewAtom(p.atoms.Intern(string(tok.Span.Slice(p.src))))
	default:
		return value.NewNull()
	}
}

func (p *parser) curPos() uint32 {
	if p.curValid {
		return p.cur.Span.Start
	}
	return 0
}
