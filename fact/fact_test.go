package fact_test

import (
	"testing"

	"github.com/opal-lang/stratacore/fact"
)

func TestConfidenceRoundTrip(t *testing.T) {
	if fact.FromFloat(1.5) != fact.Certain {
		t.Fatalf("FromFloat(1.5) should clamp to Certain")
	}
	if fact.FromFloat(-1) != 0 {
		t.Fatalf("FromFloat(-1) should clamp to 0")
	}
	half := fact.FromFloat(0.5)
	if half.Float() < 0.49 || half.Float() > 0.51 {
		t.Fatalf("FromFloat(0.5).Float() = %v, want ~0.5", half.Float())
	}
}

func TestPredicateCategoryRoundTrips(t *testing.T) {
	cases := []struct {
		p    fact.Predicate
		want fact.Category
	}{
		{fact.IsObject, fact.Structural},
		{fact.HasKey, fact.Syntactic},
		{fact.HasLeadingTrivia, fact.Lexical},
		{fact.DuplicateKey, fact.Semantic},
	}
	for _, c := range cases {
		if got := c.p.Category(); got != c.want {
			t.Errorf("%v.Category() = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestPredicateStringIsStable(t *testing.T) {
	if fact.IsObject.String() != "is_object" {
		t.Fatalf("IsObject.String() = %q", fact.IsObject.String())
	}
	if fact.DuplicateKey.String() != "duplicate_key" {
		t.Fatalf("DuplicateKey.String() = %q", fact.DuplicateKey.String())
	}
}
