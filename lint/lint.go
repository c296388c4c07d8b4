// Package lint implements the semantic diagnostics layer of spec §7: rules
// that consume a finished AST and FactStore and produce additional
// diagnostics without ever mutating the tree, adapted from the teacher's
// core/types/validation.go (schema validation) and runtime/planner/
// planner.go (fuzzy name suggestions).
package lint

import (
	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/value"
)

// Context is the read-only view a Rule inspects. Rules never see a parser
// or lexer: by the time lint runs, the tree is final.
type Context struct {
	Arena  *ast.Arena
	Root   ast.ID
	Facts  *fact.Store
	Atoms  *value.AtomPool
	Source []byte
}

// Rule is one semantic check. A Rule must not mutate Arena or Facts beyond
// asserting new facts describing violations it finds (spec §7: "The linter
// and analyzer... never mutate the AST").
type Rule interface {
	Lint(ctx Context) []diag.Diagnostic
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(ctx Context) []diag.Diagnostic

func (f RuleFunc) Lint(ctx Context) []diag.Diagnostic { return f(ctx) }

// Run applies every rule to ctx and concatenates their diagnostics in rule
// order, matching lang.Lint's single-pass lint(ast, rules) -> diagnostics
// contract from spec §6.
func Run(ctx Context, rules []Rule) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, r := range rules {
		out = append(out, r.Lint(ctx)...)
	}
	return out
}
