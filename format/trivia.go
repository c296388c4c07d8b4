package format

import (
	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/lexer"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/token"
	"github.com/opal-lang/stratacore/value"
)

// formatPreservingTrivia re-tokenizes req.Source with trivia enabled and
// re-emits every token's exact bytes in order. Spec §4.4 describes trivia
// as "retained in a side-channel attached to the AST"; this core attaches
// that side-channel as facts (HasLeadingTrivia/HasTrailingTrivia, see
// AttachTrivia) rather than new Arena fields, so the simplest correct
// preserve_trivia renderer is the token stream itself — the AST contributes
// nothing a straight re-tokenization doesn't already carry, since no edit
// has happened between the parse and this format call. An
// incremental.Coordinator that grafted a partial re-parse is exactly the
// case where the trivia facts (not this function) tell a caller which
// spans are still original.
func formatPreservingTrivia(req Request) ([]byte, error) {
	lx := lexer.New(req.Lang, req.Source, lexer.WithTrivia())
	var out []byte
	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		if tok.Kind == token.EOF || tok.Kind == token.ContinuationTok {
			continue
		}
		out = append(out, tok.Span.Slice(req.Source)...)
	}
	return out, nil
}

// AttachTrivia asserts HasLeadingTrivia/HasTrailingTrivia facts for every
// leaf (scalar or identifier) node in arena, by re-tokenizing source with
// trivia enabled and pairing each run of whitespace/comment tokens with
// the nearest surrounding leaf in source order. This is how trivia reaches
// the FactStore described in fact.Predicate's lexical category, which
// before this package had no writer.
func AttachTrivia(facts *fact.Store, a *ast.Arena, root ast.ID, lang lexer.Language, source []byte) {
	leaves := collectLeaves(a, root)
	if len(leaves) == 0 {
		return
	}

	lx := lexer.New(lang, source, lexer.WithTrivia())
	var trivia []token.Token
	leafIdx := 0
	flush := func(attachLeading bool) {
		if len(trivia) == 0 {
			return
		}
		start := trivia[0].Span.Start
		end := trivia[len(trivia)-1].Span.End
		sp := value.NewSpanRef(span.New(start, end))
		pred := fact.HasTrailingTrivia
		subject := root
		if attachLeading && leafIdx < len(leaves) {
			pred = fact.HasLeadingTrivia
			subject = leaves[leafIdx]
		} else if leafIdx > 0 {
			subject = leaves[leafIdx-1]
		}
		facts.Assert(fact.Assertion{
			Subject:    a.Node(subject).Span,
			Predicate:  pred,
			Confidence: fact.Certain,
			Object:     sp,
		})
		trivia = trivia[:0]
	}

	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		if tok.Kind == token.ContinuationTok {
			continue
		}
		if tok.Kind.IsTrivia() {
			trivia = append(trivia, tok)
			continue
		}
		if tok.Kind == token.EOF {
			flush(false)
			break
		}
		if leafIdx < len(leaves) && a.Node(leaves[leafIdx]).Span.Start == tok.Span.Start {
			flush(true)
			leafIdx++
		} else {
			flush(false)
		}
	}
}

func collectLeaves(a *ast.Arena, root ast.ID) []ast.ID {
	var leaves []ast.ID
	ast.Walk(a, root, func(id ast.ID, n *ast.Node, depth int) bool {
		switch n.Kind {
		case ast.StringLit, ast.NumberLit, ast.BooleanLit, ast.NullLit, ast.Identifier, ast.EnumLit:
			leaves = append(leaves, id)
		}
		return true
	})
	return leaves
}
