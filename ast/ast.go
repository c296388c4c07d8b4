// Package ast implements the arena-allocated AST described in spec §3.4.
// Every node lives in one Arena per parse; nodes reference children through
// a first-child/next-sibling linked list rather than a per-node slice, so
// the whole tree is a single contiguous allocation that is freed wholesale
// when the parse's Arena is dropped (spec §5's resource policy).
package ast

import (
	"fmt"

	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

// Kind is the closed set of AST node shapes shared by every language this
// core parses (spec §3.4): JSON and ZON both reduce to this one tree shape,
// with ZON's struct/field syntax folded into Object/Field/EnumLit.
type Kind uint8

const (
	Invalid Kind = iota
	Root
	Object
	Array
	Property  // key/value pair inside an Object (JSON)
	Field     // .name = value pair inside a ZON struct literal
	StringLit
	NumberLit
	BooleanLit
	NullLit
	Identifier
	EnumLit // ZON bare ".name" in value position
	Err
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Object:
		return "object"
	case Array:
		return "array"
	case Property:
		return "property"
	case Field:
		return "field"
	case StringLit:
		return "string"
	case NumberLit:
		return "number"
	case BooleanLit:
		return "boolean"
	case NullLit:
		return "null"
	case Identifier:
		return "identifier"
	case EnumLit:
		return "enum_literal"
	case Err:
		return "err"
	default:
		return "invalid"
	}
}

// ID identifies a node within a single Arena. The zero ID never refers to a
// real node: it is the "no child" / "no sibling" / "no parent" sentinel, so
// a zero-valued Node is always well-formed.
type ID uint32

// Node is one arena slot. Children are a singly-linked list threaded
// through FirstChild/NextSibling rather than owned slices, so appending a
// child never reallocates an existing node.
type Node struct {
	Kind  Kind
	Span  span.Span
	Value value.Value // scalar payload: SpanRef for strings and numbers (source span only; no decoded or parsed value), Bool, Null, or Atom for identifiers/enum literals

	Parent      ID
	FirstChild  ID
	LastChild   ID
	NextSibling ID
}

// Arena owns every node produced by a single parse. Arena is not safe for
// concurrent use; a parse is single-threaded (spec §5).
type Arena struct {
	nodes []Node
}

// NewArena returns an empty Arena. capacityHint sizes the initial backing
// slice; zero is a valid hint and simply defers the first growth.
func NewArena(capacityHint int) *Arena {
	nodes := make([]Node, 1, capacityHint+1) // slot 0 is the permanent zero/invalid node
	return &Arena{nodes: nodes}
}

// New allocates a fresh node and returns its ID. The node starts detached
// (no parent, no children); callers attach it with AppendChild.
func (a *Arena) New(kind Kind, sp span.Span) ID {
	id := ID(len(a.nodes))
	a.nodes = append(a.nodes, Node{Kind: kind, Span: sp})
	return id
}

// Node returns a pointer to the node identified by id, live within the
// arena's backing storage. Panics if id is out of range for this arena.
func (a *Arena) Node(id ID) *Node {
	invariant.Precondition(int(id) < len(a.nodes), "ast: id %d out of range for arena of size %d", id, len(a.nodes))
	return &a.nodes[id]
}

// AppendChild links child as the new last child of parent. Panics if
// parent already has child as a child (double-attach is a caller bug, not
// a recoverable parse condition).
func (a *Arena) AppendChild(parent, child ID) {
	invariant.Precondition(child != 0, "ast: cannot attach the zero node as a child")
	p := a.Node(parent)
	c := a.Node(child)
	invariant.Precondition(c.Parent == 0, "ast: node %d already has a parent", child)
	c.Parent = parent
	if p.FirstChild == 0 {
		p.FirstChild = child
	} else {
		a.Node(p.LastChild).NextSibling = child
	}
	p.LastChild = child
}

// Children returns the ids of parent's children in order. Allocates a
// slice; callers walking large trees should prefer Walk.
func (a *Arena) Children(parent ID) []ID {
	var out []ID
	for id := a.Node(parent).FirstChild; id != 0; id = a.Node(id).NextSibling {
		out = append(out, id)
	}
	return out
}

// Len reports how many nodes have been allocated, including the reserved
// zero slot.
func (a *Arena) Len() int { return len(a.nodes) }

func (a *Arena) String() string {
	return fmt.Sprintf("ast.Arena{%d nodes}", len(a.nodes)-1)
}
