package value_test

import (
	"testing"

	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

func TestRoundTrips(t *testing.T) {
	if got := value.NewNull().Kind(); got != value.Null {
		t.Fatalf("Null kind = %v", got)
	}
	if !value.NewBool(true).AsBool() {
		t.Fatal("expected true")
	}
	if value.NewBool(false).AsBool() {
		t.Fatal("expected false")
	}
	if got := value.NewUint(42).AsUint(); got != 42 {
		t.Fatalf("AsUint = %d, want 42", got)
	}
	if got := value.NewInt(-7).AsInt(); got != -7 {
		t.Fatalf("AsInt = %d, want -7", got)
	}
	if got := value.NewFloat(3.5).AsFloat(); got != 3.5 {
		t.Fatalf("AsFloat = %v, want 3.5", got)
	}
	s := span.New(4, 9)
	if got := value.NewSpanRef(s).AsSpanRef(); got != s {
		t.Fatalf("AsSpanRef = %v, want %v", got, s)
	}
	if got := value.NewFactRef(99).AsFactRef(); got != 99 {
		t.Fatalf("AsFactRef = %d, want 99", got)
	}
}

func TestWrongKindAccessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading a uint as a bool")
		}
	}()
	value.NewUint(1).AsBool()
}

func TestAtomPoolDedup(t *testing.T) {
	p := value.NewAtomPool()
	a := p.Intern("name")
	b := p.Intern("name")
	if a != b {
		t.Fatalf("expected same id for repeated interning, got %d and %d", a, b)
	}
	c := p.Intern("value")
	if c == a {
		t.Fatal("expected distinct ids for distinct strings")
	}
	if a == 0 {
		t.Fatal("id 0 is reserved for absent atoms")
	}

	s, ok := p.String(a)
	if !ok || s != "name" {
		t.Fatalf("String(%d) = %q, %v, want \"name\", true", a, s, ok)
	}
	if _, ok := p.String(value.AtomID(999)); ok {
		t.Fatal("expected lookup miss for unknown id")
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}
