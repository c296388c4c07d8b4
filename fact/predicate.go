package fact

// Category groups predicates the way spec §3.3 requires: syntactic facts
// describe raw token shape, lexical facts describe trivia and literal
// formatting, structural facts describe tree shape (object/array/field
// membership), semantic facts describe cross-checked meaning (schema,
// duplicate keys). The grouping is baked into the high bits of Predicate
// itself so a consumer can filter a whole category without a lookup table.
type Category uint8

const (
	Syntactic Category = iota
	Lexical
	Structural
	Semantic
)

func (c Category) String() string {
	switch c {
	case Syntactic:
		return "syntactic"
	case Lexical:
		return "lexical"
	case Structural:
		return "structural"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Predicate is the 16-bit predicate id of spec §3.3. The top 4 bits encode
// Category, the low 12 encode an ordinal within that category, so adding a
// well-known predicate in a minor version (spec §9's ABI note) never
// collides across categories.
type Predicate uint16

const categoryShift = 12

func (p Predicate) Category() Category { return Category(p >> categoryShift) }

// Well-known structural predicates: facts about tree shape.
const (
	// IsObject asserts that subject spans a JSON object or ZON struct
	// literal. Object carries value.Null.
	IsObject Predicate = Predicate(uint16(Structural)<<categoryShift) + iota
	// IsArray asserts that subject spans an array literal.
	IsArray
	// IsScalar asserts that subject spans a single scalar value (string,
	// number, bool, null, identifier, or enum literal).
	IsScalar
	// ChildOf asserts that subject is a direct child value of the fact
	// referenced by Object (a value.FactRef).
	ChildOf
	// ElementIndex asserts subject is the array element at the index
	// carried in Object as a value.Uint.
	ElementIndex
)

// Well-known syntactic predicates: facts about a single value's token text.
const (
	// HasKey asserts that subject (the key node of a property or field) is
	// a key whose interned text is the value.Atom in Object.
	HasKey Predicate = Predicate(uint16(Syntactic)<<categoryShift) + iota
	// HasValue asserts subject's literal value, carried in Object as the
	// scalar node's own Value: a value.SpanRef to the literal's source span
	// for strings and numbers (no decoded string or parsed number is
	// stored), Bool, Null, or an Atom for identifiers and enum literals.
	HasValue
	// TokenText asserts subject's exact source text as a value.Atom,
	// independent of any parsed interpretation (used for strings and
	// numbers, whose raw text a formatter may need verbatim).
	TokenText
)

// Well-known lexical predicates: facts about trivia attached to a span.
const (
	// HasLeadingTrivia asserts subject has comment/whitespace trivia
	// immediately preceding it, referenced by Object as a value.SpanRef
	// covering the trivia run.
	HasLeadingTrivia Predicate = Predicate(uint16(Lexical)<<categoryShift) + iota
	// HasTrailingTrivia is the same for trivia immediately following.
	HasTrailingTrivia
)

// Well-known semantic predicates: facts produced by lint/schema checks.
const (
	// DuplicateKey asserts subject (a property/field key) repeats a key
	// already seen in the same object; Object is a value.FactRef to the
	// first occurrence's HasKey fact.
	DuplicateKey Predicate = Predicate(uint16(Semantic)<<categoryShift) + iota
	// SchemaViolation asserts subject fails a lint.SchemaRule; Object is
	// a value.Atom naming the violated schema keyword.
	SchemaViolation
	// UnknownField asserts subject's key has no matching schema property;
	// Object is a value.Atom holding a fuzzy-matched suggestion, or the
	// zero atom if none was found.
	UnknownField
	// MissingRequiredField asserts subject (the enclosing object) is
	// missing a schema-required property named by the value.Atom Object.
	MissingRequiredField
	// InvalidIdentifier asserts subject fails a language-specific
	// identifier rule (e.g. a ZON version field that is not valid semver).
	InvalidIdentifier
)

var predicateNames = map[Predicate]string{
	IsObject:             "is_object",
	IsArray:              "is_array",
	IsScalar:             "is_scalar",
	ChildOf:              "child_of",
	ElementIndex:         "element_index",
	HasKey:               "has_key",
	HasValue:             "has_value",
	TokenText:            "token_text",
	HasLeadingTrivia:     "has_leading_trivia",
	HasTrailingTrivia:    "has_trailing_trivia",
	DuplicateKey:         "duplicate_key",
	SchemaViolation:      "schema_violation",
	UnknownField:         "unknown_field",
	MissingRequiredField: "missing_required_field",
	InvalidIdentifier:    "invalid_identifier",
}

func (p Predicate) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	return "predicate(" + p.Category().String() + ")"
}
