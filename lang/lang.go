// Package lang implements the language-dispatch registry of SPEC_FULL.md
// §C: a small map from language identifier to the lexer/parser/lint entry
// points for that language, replacing the teacher's "module as namespace
// with dotted re-exports" pattern (spec §9) with one explicit component.
package lang

import (
	"fmt"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/lexer"
	"github.com/opal-lang/stratacore/lint"
	"github.com/opal-lang/stratacore/parser"
	"github.com/opal-lang/stratacore/value"
)

// Result is spec §6's ParseResult { ast, diagnostics, fact_store }, plus
// the atom pool and source buffer a caller needs to resolve span text or
// hand the result to lint.Context or an incremental.Coordinator.
type Result struct {
	Arena       *ast.Arena
	Root        ast.ID
	Diagnostics []diag.Diagnostic
	Atoms       *value.AtomPool
	Facts       *fact.Store
	Source      []byte
}

// HasErrors reports whether any diagnostic at error severity was produced
// by the parse (lint diagnostics are tracked separately, via Lint).
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Entry is one language's registration: how to lex and parse it, its
// default options, and its default lint rules.
type Entry struct {
	Lexer          lexer.Language
	DefaultOptions []parser.Opt
	Rules          []lint.Rule
}

// Registry maps a language identifier ("json", "zon") to its Entry.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty Registry. Use Default for the built-in
// json/zon registrations.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces the entry for id.
func (r *Registry) Register(id string, entry Entry) {
	r.entries[id] = entry
}

// Lookup returns the entry registered for id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Parse is the concrete realization of spec §6's parse(language, source,
// options): it looks up id's Entry, parses source with the entry's
// defaults overridden by opts, and extracts a FactStore from the
// resulting AST sharing the parser's atom pool.
func (r *Registry) Parse(id string, source []byte, opts ...parser.Opt) (Result, error) {
	entry, ok := r.entries[id]
	if !ok {
		return Result{}, fmt.Errorf("lang: unknown language %q", id)
	}
	merged := make([]parser.Opt, 0, len(entry.DefaultOptions)+len(opts))
	merged = append(merged, entry.DefaultOptions...)
	merged = append(merged, opts...)

	pr := parser.Parse(entry.Lexer, source, merged...)
	facts := fact.FromAST(pr.Arena, pr.Root, pr.Atoms, source)
	return Result{
		Arena:       pr.Arena,
		Root:        pr.Root,
		Diagnostics: pr.Diagnostics,
		Atoms:       pr.Atoms,
		Facts:       facts,
		Source:      source,
	}, nil
}

// Lint runs id's registered rules (plus any extra rules supplied by the
// caller) against a Result already produced by Parse.
func (r *Registry) Lint(id string, res Result, extra ...lint.Rule) ([]diag.Diagnostic, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("lang: unknown language %q", id)
	}
	ctx := lint.Context{Arena: res.Arena, Root: res.Root, Facts: res.Facts, Atoms: res.Atoms, Source: res.Source}
	rules := make([]lint.Rule, 0, len(entry.Rules)+len(extra))
	rules = append(rules, entry.Rules...)
	rules = append(rules, extra...)
	return lint.Run(ctx, rules), nil
}

// Default is the registry pre-populated with this core's two languages.
var Default = NewRegistry()

func init() {
	Default.Register("json", Entry{
		Lexer:          lexer.JSON,
		DefaultOptions: []parser.Opt{parser.WithTrailingCommas(false)},
		Rules:          []lint.Rule{lint.DuplicateKeyRule{}},
	})
	Default.Register("zon", Entry{
		Lexer:          lexer.ZON,
		DefaultOptions: []parser.Opt{parser.WithTrailingCommas(true)},
		Rules:          []lint.Rule{lint.DuplicateKeyRule{}, lint.ZonVersionRule{}},
	})
}

// Parse parses source under the registered language id using Default.
func Parse(id string, source []byte, opts ...parser.Opt) (Result, error) {
	return Default.Parse(id, source, opts...)
}

// Lint runs id's default rules against res using Default.
func Lint(id string, res Result, extra ...lint.Rule) ([]diag.Diagnostic, error) {
	return Default.Lint(id, res, extra...)
}
