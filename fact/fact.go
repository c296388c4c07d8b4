// Package fact implements the append-only Fact Stream of spec §3.3/§3.5/§4.3:
// a 24-byte Fact record, a generation-tracked FactStore with subject-span,
// predicate, and parent/child indices, a query cache invalidated by span,
// and a canonical digest over a store's live facts.
package fact

import (
	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

// ID identifies a Fact within one FactStore. Zero means "no fact"; real ids
// are assigned monotonically from 1 and never reused within a generation
// (Compact is the one operation allowed to renumber them).
type ID uint32

// Confidence is a 16-bit fixed-point value in [0, 1], spec §3.3's
// "confidence: u16 fixed-point". 0xFFFF represents certainty; a parser
// asserting a fact it derived directly from the grammar always uses Certain,
// reserving lower confidences for facts a lint rule infers heuristically
// (e.g. a fuzzy schema match).
type Confidence uint16

// Certain is the confidence of a fact asserted as definite fact rather than
// inferred.
const Certain Confidence = 0xFFFF

// FromFloat converts f (clamped to [0, 1]) to a Confidence.
func FromFloat(f float64) Confidence {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return Certain
	}
	return Confidence(f * float64(Certain))
}

// Float reports c as a float64 in [0, 1].
func (c Confidence) Float() float64 { return float64(c) / float64(Certain) }

// Fact is spec §3.3's 24-byte record: "(id: FactId u32, subject: PackedSpan
// u64, predicate: u16, confidence: u16 fixed-point, object: Value u64)". As
// with value.Value (see that package's doc comment), Go's Fact is larger
// than 24 bytes in practice because Value itself carries a separate Kind
// byte rather than packing tag and payload into one word; the field layout
// and semantics otherwise match the spec exactly.
type Fact struct {
	ID         ID
	Subject    span.Span
	Predicate  Predicate
	Confidence Confidence
	Object     value.Value
}

// Assertion is a pending Fact without an assigned ID, the shape a caller
// builds to hand to Store.Assert or as one element of a Delta's Assertions.
type Assertion struct {
	Subject    span.Span
	Predicate  Predicate
	Confidence Confidence
	Object     value.Value
}

func (a Assertion) toFact(id ID) Fact {
	invariant.Precondition(id != 0, "fact: assigned id must be nonzero")
	return Fact{
		ID:         id,
		Subject:    a.Subject,
		Predicate:  a.Predicate,
		Confidence: a.Confidence,
		Object:     a.Object,
	}
}
