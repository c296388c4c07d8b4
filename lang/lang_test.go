package lang_test

import (
	"testing"

	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/lang"
)

func TestParseJSONAssertsFactsAndNoErrors(t *testing.T) {
	res, err := lang.Parse("json", []byte(`{"a": 1, "b": [true, null]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if res.Facts == nil || res.Facts.Len() == 0 {
		t.Fatal("expected FromAST to have asserted at least one fact")
	}
	if objs := res.Facts.ByPredicate(fact.IsObject); len(objs) != 1 {
		t.Fatalf("expected exactly one is_object fact, got %d", len(objs))
	}
}

func TestParseZonAllowsTrailingCommasByDefault(t *testing.T) {
	res, err := lang.Parse("zon", []byte(`.{ .name = "zz", .version = "1.0.0", }`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics for trailing comma in zon: %v", res.Diagnostics)
	}
}

func TestParseUnknownLanguageErrors(t *testing.T) {
	if _, err := lang.Parse("yaml", []byte(`a: 1`)); err == nil {
		t.Fatal("expected an error for an unregistered language id")
	}
}

func TestLintFlagsDuplicateKeyAndBadVersion(t *testing.T) {
	res, err := lang.Parse("zon", []byte(`.{ .version = "not-a-version", .version = "1.0.0" }`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	diags, err := lang.Lint("zon", res)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	var sawDuplicate, sawBadVersion bool
	for _, d := range diags {
		switch d.Code {
		case diag.DuplicateKey:
			sawDuplicate = true
		case diag.InvalidFieldType:
			sawBadVersion = true
		}
	}
	if !sawDuplicate {
		t.Errorf("expected a duplicate_key diagnostic, got %v", diags)
	}
	if !sawBadVersion {
		t.Errorf("expected an invalid_field_type diagnostic for the bad version, got %v", diags)
	}
}
