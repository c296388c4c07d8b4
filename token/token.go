// Package token defines the packed 16-byte Token shared by every lexer in
// the core (spec §3.2). Collapsing JSON's and ZON's token shapes into one
// discriminated Kind enum, rather than two enums behind a wrapper union,
// is the §9 redesign: the parser dispatches on Kind once tokens exist, and
// the language tag lives on the Lexer that produced them, not on the Token.
package token

import (
	"fmt"

	"github.com/opal-lang/stratacore/span"
)

// Kind is the closed set of token kinds across every language this core
// supports. JSON and ZON share the structural/literal kinds; ZON-only kinds
// (StructStart, FieldName, Identifier, Equals, Import, CharLiteral,
// EnumLiteral) are simply never produced by the JSON lexer.
type Kind uint8

const (
	Invalid Kind = iota

	ObjectStart
	ObjectEnd
	ArrayStart
	ArrayEnd
	Comma
	Colon
	StringValue
	NumberValue
	BooleanTrue
	BooleanFalse
	NullValue
	Comment
	Whitespace
	ContinuationTok
	Err
	EOF

	// ZON-only kinds.
	StructStart
	FieldName
	Identifier
	Equals
	Import
	CharLiteral
	EnumLiteral
)

var kindNames = map[Kind]string{
	Invalid:         "invalid",
	ObjectStart:     "object_start",
	ObjectEnd:       "object_end",
	ArrayStart:      "array_start",
	ArrayEnd:        "array_end",
	Comma:           "comma",
	Colon:           "colon",
	StringValue:     "string_value",
	NumberValue:     "number_value",
	BooleanTrue:     "boolean_true",
	BooleanFalse:    "boolean_false",
	NullValue:       "null_value",
	Comment:         "comment",
	Whitespace:      "whitespace",
	ContinuationTok: "continuation",
	Err:             "err",
	EOF:             "eof",
	StructStart:     "struct_start",
	FieldName:       "field_name",
	Identifier:      "identifier",
	Equals:          "equals",
	Import:          "import",
	CharLiteral:     "char_literal",
	EnumLiteral:     "enum_literal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsTrivia reports whether k is whitespace or a comment: spans that carry
// no semantic value but may be preserved for formatting (spec GLOSSARY).
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Comment
}

// Flags is an 8-bit set of per-token boolean properties (spec §3.2).
type Flags uint8

const (
	HasEscapes Flags = 1 << iota
	IsFloat
	IsNegative
	IsScientific
	IsContinuation
	PreserveTrivia
	IsInserted
	HasError
)

// Has reports whether all bits of want are set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Token is the packed 16-byte unit the lexer produces: an 8-byte Span, a
// 1-byte Kind, a 1-byte bracket Depth at token start, a 1-byte Flags set,
// and a 4-byte kind-dependent Data payload (small-int value, AtomID, or 0).
// This is the StreamToken of spec §3.2: one shape, the language tag carried
// by the Lexer that produced it rather than by the Token itself.
type Token struct {
	Span  span.Span
	Kind  Kind
	Depth uint8
	Flags Flags
	_pad  uint8
	Data  uint32
}

func (t Token) String() string {
	return fmt.Sprintf("%s[%d,%d)@d%d", t.Kind, t.Span.Start, t.Span.End, t.Depth)
}
