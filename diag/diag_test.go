package diag_test

import (
	"testing"

	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/span"
)

func TestBagAccumulatesInOrder(t *testing.T) {
	var b diag.Bag
	b.Addf(diag.TrailingComma, diag.Error, span.New(8, 9), "trailing comma before %q", "]")
	b.Addf(diag.FellBackToFullReparse, diag.Info, span.Zero, "edit could not be applied incrementally")

	all := b.All()
	if len(all) != 2 {
		t.Fatalf("Len = %d, want 2", len(all))
	}
	if all[0].Code != diag.TrailingComma || all[0].Severity != diag.Error {
		t.Fatalf("first diagnostic = %+v", all[0])
	}
	if all[1].Code != diag.FellBackToFullReparse || all[1].Severity != diag.Info {
		t.Fatalf("second diagnostic = %+v", all[1])
	}
}

func TestHasErrors(t *testing.T) {
	var b diag.Bag
	if b.HasErrors() {
		t.Fatal("empty bag must not report errors")
	}
	b.Add(diag.New(diag.DuplicateKey, diag.Warning, span.Zero, "duplicate key %q", "name"))
	if b.HasErrors() {
		t.Fatal("warning-only bag must not report errors")
	}
	b.Add(diag.New(diag.UnexpectedToken, diag.Error, span.Zero, "unexpected token"))
	if !b.HasErrors() {
		t.Fatal("expected HasErrors to report true once an error is added")
	}
}
