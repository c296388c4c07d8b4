// Package format implements the formatter of spec §4.4/§6:
// format(ast, options) -> bytes, reproducing source text either
// trivia-preserving (byte-identical for regions an edit did not touch) or
// canonical (a fixed, idempotent pretty-print), matching spec §8 property
// 5. There is no single teacher file this is grounded on — the teacher
// compiles once and never re-emits source — so this package follows the
// functional-options and diag.Bag-refusal idioms already established by
// parser and lint rather than inventing a new style.
package format

import (
	"bytes"
	"fmt"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/lexer"
)

// Request is the input to Format: a finished AST plus the source it was
// parsed from and the diagnostics that parse produced, mirroring
// lang.Result / lint.Context's shape for the other read-only consumers of
// a finished parse.
type Request struct {
	Arena       *ast.Arena
	Root        ast.ID
	Source      []byte
	Diagnostics []diag.Diagnostic
	Lang        lexer.Language
}

// Options configures Format (spec §6's FormatOptions).
type Options struct {
	// PreserveTrivia reproduces original whitespace/comments exactly
	// (default false: canonical pretty-printing).
	PreserveTrivia bool
	// Indent is the per-depth indentation unit for canonical formatting;
	// defaults to two spaces when empty.
	Indent string
	// AllowLossy permits formatting despite an error-severity diagnostic
	// in Request.Diagnostics. Without it, Format refuses (spec §7:
	// "Formatters must refuse to overwrite when any error-severity
	// diagnostic is present unless the caller explicitly opts into lossy
	// formatting").
	AllowLossy bool
}

// Opt is a functional option over Options, following parser.Opt/lexer.Opt.
type Opt func(*Options)

// WithPreserveTrivia requests a byte-faithful reproduction of trivia.
func WithPreserveTrivia(preserve bool) Opt {
	return func(o *Options) { o.PreserveTrivia = preserve }
}

// WithIndent overrides the canonical indentation unit.
func WithIndent(indent string) Opt {
	return func(o *Options) { o.Indent = indent }
}

// WithAllowLossy permits formatting over error-severity diagnostics.
func WithAllowLossy(allow bool) Opt {
	return func(o *Options) { o.AllowLossy = allow }
}

// ErrLossyRefused is returned when Format refuses to overwrite because an
// error-severity diagnostic is present and AllowLossy was not set.
type ErrLossyRefused struct {
	ErrorCount int
}

func (e *ErrLossyRefused) Error() string {
	return fmt.Sprintf("format: refusing to format: %d error-severity diagnostics present (pass WithAllowLossy(true) to override)", e.ErrorCount)
}

// Format renders req's AST to bytes under opts.
func Format(req Request, opts ...Opt) ([]byte, error) {
	options := Options{Indent: "  "}
	for _, o := range opts {
		o(&options)
	}

	if !options.AllowLossy {
		if n := countErrors(req.Diagnostics); n > 0 {
			return nil, &ErrLossyRefused{ErrorCount: n}
		}
	}

	if options.PreserveTrivia {
		return formatPreservingTrivia(req)
	}

	var buf bytes.Buffer
	printCanonical(&buf, req.Arena, req.Root, req.Source, req.Lang, options.Indent, 0)
	return buf.Bytes(), nil
}

func countErrors(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.Error {
			n++
		}
	}
	return n
}
