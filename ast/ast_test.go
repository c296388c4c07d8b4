package ast_test

import (
	"testing"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

func TestAppendChildOrdersSiblings(t *testing.T) {
	a := ast.NewArena(0)
	root := a.New(ast.Object, span.New(0, 10))
	first := a.New(ast.Property, span.New(1, 4))
	second := a.New(ast.Property, span.New(5, 9))
	a.AppendChild(root, first)
	a.AppendChild(root, second)

	children := a.Children(root)
	if len(children) != 2 || children[0] != first || children[1] != second {
		t.Fatalf("Children = %v, want [%d %d]", children, first, second)
	}
	if a.Node(first).Parent != root {
		t.Fatalf("Parent = %d, want %d", a.Node(first).Parent, root)
	}
}

func TestAppendChildTwiceToParentsPanics(t *testing.T) {
	a := ast.NewArena(0)
	root := a.New(ast.Object, span.New(0, 10))
	child := a.New(ast.StringLit, span.New(1, 4))
	a.AppendChild(root, child)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic re-attaching a node with a parent")
		}
	}()
	other := a.New(ast.Array, span.New(0, 10))
	a.AppendChild(other, child)
}

func TestWalkVisitsPreOrder(t *testing.T) {
	a := ast.NewArena(0)
	root := a.New(ast.Object, span.New(0, 20))
	prop := a.New(ast.Property, span.New(1, 15))
	key := a.New(ast.StringLit, span.New(1, 7))
	val := a.New(ast.NumberLit, span.New(9, 11))
	a.AppendChild(root, prop)
	a.AppendChild(prop, key)
	a.AppendChild(prop, val)

	var order []ast.Kind
	ast.Walk(a, root, func(id ast.ID, n *ast.Node, depth int) bool {
		order = append(order, n.Kind)
		return true
	})
	want := []ast.Kind{ast.Object, ast.Property, ast.StringLit, ast.NumberLit}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestWalkSkipChildrenStopsDescent(t *testing.T) {
	a := ast.NewArena(0)
	root := a.New(ast.Object, span.New(0, 20))
	prop := a.New(ast.Property, span.New(1, 15))
	key := a.New(ast.StringLit, span.New(1, 7))
	a.AppendChild(root, prop)
	a.AppendChild(prop, key)

	var seen []ast.Kind
	ast.Walk(a, root, func(id ast.ID, n *ast.Node, depth int) bool {
		seen = append(seen, n.Kind)
		return n.Kind != ast.Property
	})
	want := []ast.Kind{ast.Object, ast.Property}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v (children of Property should be skipped)", seen, want)
	}
}

func TestCollectReducesOverTree(t *testing.T) {
	a := ast.NewArena(0)
	root := a.New(ast.Array, span.New(0, 10))
	for i := 0; i < 3; i++ {
		a.AppendChild(root, a.New(ast.NumberLit, span.New(0, 1)))
	}
	count := ast.Collect(a, root, 0, func(acc int, id ast.ID, n *ast.Node, depth int) int {
		if n.Kind == ast.NumberLit {
			return acc + 1
		}
		return acc
	})
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestScalarNodeCarriesValue(t *testing.T) {
	a := ast.NewArena(0)
	id := a.New(ast.NumberLit, span.New(0, 2))
	a.Node(id).Value = value.NewInt(42)
	if got := a.Node(id).Value.AsInt(); got != 42 {
		t.Fatalf("Value.AsInt() = %d, want 42", got)
	}
}
