// Package diag implements the structured diagnostic accumulated by every
// layer of the parsing core in place of a thrown error (spec §7). A
// Diagnostic is never fatal by itself: the lexer, parser, linter, and
// incremental coordinator all append to a list the caller inspects after
// the fact rather than unwinding on the first problem.
package diag

import (
	"fmt"

	"github.com/opal-lang/stratacore/span"
)

// Severity ranks a Diagnostic for display and for the formatter's
// overwrite-refusal check (spec §6: a formatter refuses to overwrite
// lossily when any error-severity diagnostic is present).
type Severity uint8

const (
	Hint Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Hint:
		return "hint"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic identifier (spec §7's error taxonomy table).
// Codes are part of the ABI: existing codes are never renamed, only added.
type Code string

const (
	// Lexical.
	UnterminatedString  Code = "unterminated_string"
	InvalidEscape       Code = "invalid_escape"
	InvalidNumber       Code = "invalid_number"
	UnknownChar         Code = "unknown_char"
	UnterminatedComment Code = "unterminated_comment"

	// Syntactic.
	UnexpectedToken  Code = "unexpected_token"
	ExpectedXGotY    Code = "expected_x_got_y"
	TrailingComma    Code = "trailing_comma"
	UnmatchedBracket Code = "unmatched_bracket"
	MissingSeparator Code = "missing_separator"

	// Structural.
	MaxDepthExceeded Code = "max_depth_exceeded"
	EmptyInput       Code = "empty_input"

	// Semantic (per schema).
	DuplicateKey         Code = "duplicate_key"
	UnknownField         Code = "unknown_field"
	MissingRequiredField Code = "missing_required_field"
	InvalidFieldType     Code = "invalid_field_type"
	InvalidIdentifier    Code = "invalid_identifier"
	LargeStructure       Code = "large_structure"
	DeepNesting          Code = "deep_nesting"

	// Internal.
	OutOfMemory           Code = "out_of_memory"
	FellBackToFullReparse Code = "fell_back_to_full_reparse"
)

// Diagnostic is a structured message produced by any core component; never
// fatal by itself (spec §6/§7/GLOSSARY).
type Diagnostic struct {
	Code     Code
	Message  string
	Span     span.Span
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s] %s", d.Severity, d.Code, d.Span, d.Message)
}

// New builds a Diagnostic with a formatted message, following the
// teacher's convention (runtime/parser/errors.go) of constructing
// diagnostics through a small set of named helpers rather than literal
// struct composition scattered across the parser.
func New(code Code, sev Severity, sp span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     sp,
		Severity: sev,
	}
}

// Bag accumulates diagnostics for a single parse, lint, or edit operation.
// It is the accumulation point referenced throughout spec §7: components
// append to a Bag rather than returning an error.
type Bag struct {
	items []Diagnostic
}

// Add appends d to the bag.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Addf builds and appends a Diagnostic in one call.
func (b *Bag) Addf(code Code, sev Severity, sp span.Span, format string, args ...interface{}) {
	b.Add(New(code, sev, sp, format, args...))
}

// All returns every diagnostic added so far, in insertion order.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether any diagnostic at Error severity was added —
// the check a formatter uses to refuse a lossy overwrite (spec §6).
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len reports how many diagnostics have been added.
func (b *Bag) Len() int { return len(b.items) }
