package parser_test

import (
	"testing"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/lexer"
	"github.com/opal-lang/stratacore/parser"
)

func TestWellFormedJSONObject(t *testing.T) {
	res := parser.Parse(lexer.JSON, []byte(`{"name": "test", "value": 42}`))
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	root := res.Arena.Node(res.Root)
	if root.Kind != ast.Root {
		t.Fatalf("root kind = %v, want root", root.Kind)
	}
	children := res.Arena.Children(res.Root)
	if len(children) != 1 {
		t.Fatalf("root children = %d, want 1", len(children))
	}
	obj := res.Arena.Node(children[0])
	if obj.Kind != ast.Object {
		t.Fatalf("top value kind = %v, want object", obj.Kind)
	}
	props := res.Arena.Children(children[0])
	if len(props) != 2 {
		t.Fatalf("object has %d properties, want 2", len(props))
	}
	for _, p := range props {
		if res.Arena.Node(p).Kind != ast.Property {
			t.Fatalf("child kind = %v, want property", res.Arena.Node(p).Kind)
		}
	}
}

func TestTrailingCommaDisallowedByDefault(t *testing.T) {
	res := parser.Parse(lexer.JSON, []byte(`[1, 2, 3,]`))
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == diag.TrailingComma {
			found = true
			if d.Severity != diag.Error {
				t.Fatalf("severity = %v, want error", d.Severity)
			}
		}
	}
	if !found {
		t.Fatal("expected a trailing_comma diagnostic")
	}
	elems := res.Arena.Children(res.Arena.Children(res.Root)[0])
	if len(elems) != 3 {
		t.Fatalf("array has %d elements, want 3", len(elems))
	}
}

func TestTrailingCommaAllowedForZON(t *testing.T) {
	res := parser.Parse(lexer.ZON, []byte(`.{ .a = 1, .b = 2, }`))
	for _, d := range res.Diagnostics {
		if d.Code == diag.TrailingComma && d.Severity == diag.Error {
			t.Fatalf("ZON should not error on trailing comma: %v", d)
		}
	}
}

func TestMissingCloseBraceRecovers(t *testing.T) {
	res := parser.Parse(lexer.JSON, []byte(`{"a": 1`))
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == diag.ExpectedXGotY {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an expected_x_got_y diagnostic")
	}
	obj := res.Arena.Node(res.Arena.Children(res.Root)[0])
	if obj.Kind != ast.Object {
		t.Fatalf("kind = %v, want object", obj.Kind)
	}
	children := res.Arena.Children(res.Arena.Children(res.Root)[0])
	if len(children) != 2 {
		t.Fatalf("object has %d children, want 2 (one property, one err)", len(children))
	}
	if res.Arena.Node(children[1]).Kind != ast.Err {
		t.Fatalf("second child kind = %v, want err", res.Arena.Node(children[1]).Kind)
	}
}

func TestZonStructLiteral(t *testing.T) {
	res := parser.Parse(lexer.ZON, []byte(`.{ .name = "zz", .version = "1.0" }`))
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	top := res.Arena.Children(res.Root)[0]
	if res.Arena.Node(top).Kind != ast.Object {
		t.Fatalf("kind = %v, want object", res.Arena.Node(top).Kind)
	}
	fields := res.Arena.Children(top)
	if len(fields) != 2 {
		t.Fatalf("%d fields, want 2", len(fields))
	}
	for _, f := range fields {
		if res.Arena.Node(f).Kind != ast.Field {
			t.Fatalf("kind = %v, want field", res.Arena.Node(f).Kind)
		}
	}
}

func TestEmptyInputProducesWarningAndErrNode(t *testing.T) {
	res := parser.Parse(lexer.JSON, []byte(""))
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.EmptyInput {
		t.Fatalf("diagnostics = %v, want exactly one empty_input", res.Diagnostics)
	}
	children := res.Arena.Children(res.Root)
	if len(children) != 1 || res.Arena.Node(children[0]).Kind != ast.Err {
		t.Fatalf("root children = %v, want single err node", children)
	}
}

func TestMaxDepthExceededReplacesSubtreeWithErr(t *testing.T) {
	src := "["
	for i := 0; i < 5; i++ {
		src += "["
	}
	for i := 0; i < 6; i++ {
		src += "]"
	}
	res := parser.Parse(lexer.JSON, []byte(src), parser.WithMaxDepth(2))
	var found int
	for _, d := range res.Diagnostics {
		if d.Code == diag.MaxDepthExceeded {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("max_depth_exceeded diagnostics = %d, want exactly 1", found)
	}
}

func TestMismatchedBracketDiagnosed(t *testing.T) {
	res := parser.Parse(lexer.JSON, []byte(`{"a": [1,2}`))
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == diag.UnmatchedBracket {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unmatched_bracket diagnostic, got %v", res.Diagnostics)
	}
}

func TestDeterministicParse(t *testing.T) {
	src := []byte(`{"a": [1, 2, {"b": true}], "c": null}`)
	r1 := parser.Parse(lexer.JSON, src)
	r2 := parser.Parse(lexer.JSON, src)
	if r1.Arena.Len() != r2.Arena.Len() {
		t.Fatalf("arena size differs between identical parses: %d vs %d", r1.Arena.Len(), r2.Arena.Len())
	}
	var k1, k2 []ast.Kind
	ast.Walk(r1.Arena, r1.Root, func(id ast.ID, n *ast.Node, depth int) bool {
		k1 = append(k1, n.Kind)
		return true
	})
	ast.Walk(r2.Arena, r2.Root, func(id ast.ID, n *ast.Node, depth int) bool {
		k2 = append(k2, n.Kind)
		return true
	})
	if len(k1) != len(k2) {
		t.Fatalf("node count differs: %d vs %d", len(k1), len(k2))
	}
	for i := range k1 {
		if k1[i] != k2[i] {
			t.Fatalf("node kind at %d differs: %v vs %v", i, k1[i], k2[i])
		}
	}
}
