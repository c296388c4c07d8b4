package ast

import "github.com/opal-lang/stratacore/span"

// Graft deep-copies the subtree rooted at srcRoot from src into a, shifting
// every copied node's span by offset, and returns the new subtree's root id
// in a. It never mutates src, so the caller's sub-parse arena (e.g. the
// result of re-parsing one edited object's text in isolation) can be
// discarded afterward.
//
// This is the incremental.Coordinator's mechanism for reusing everything
// outside an edit's structural boundary: the boundary's replacement subtree
// is grafted in, and Arena.ShiftSpans repositions the untouched nodes that
// follow it, instead of re-running the parser over the whole buffer.
func (a *Arena) Graft(src *Arena, srcRoot ID, offset int32) ID {
	if srcRoot == 0 {
		return 0
	}
	n := src.Node(srcRoot)
	newID := a.New(n.Kind, n.Span.Shift(offset))
	a.Node(newID).Value = n.Value
	for c := n.FirstChild; c != 0; c = src.Node(c).NextSibling {
		childID := a.Graft(src, c, offset)
		a.AppendChild(newID, childID)
	}
	return newID
}

// ReplaceChild detaches oldChild from parent's child list and splices
// newChild into the same position (same predecessor and successor
// sibling), reparenting newChild to parent. oldChild's own subtree is left
// untouched but becomes unreachable from parent. If parent is the zero ID,
// newChild is treated as a full replacement with no parent (the arena's new
// root) and no sibling surgery is performed.
func (a *Arena) ReplaceChild(parent, oldChild, newChild ID) {
	newNode := a.Node(newChild)
	newNode.Parent = parent
	if parent == 0 {
		return
	}
	p := a.Node(parent)
	if p.FirstChild == oldChild {
		p.FirstChild = newChild
	} else {
		prev := p.FirstChild
		for prev != 0 && a.Node(prev).NextSibling != oldChild {
			prev = a.Node(prev).NextSibling
		}
		if prev != 0 {
			a.Node(prev).NextSibling = newChild
		}
	}
	if p.LastChild == oldChild {
		p.LastChild = newChild
	}
	newNode.NextSibling = a.Node(oldChild).NextSibling
}

// ShiftSpans repositions every node's span after a splice that replaced the
// text in oldBoundary with a same-or-different-length replacement, skipping
// nodes with id >= graftedFrom (the newly grafted subtree, already absolute
// since Graft applied its own offset). A node wholly after the old
// boundary shifts by delta; a node that contained the old boundary (an
// ancestor of the spliced-in subtree) grows or shrinks by delta at its end;
// any other node is inside the discarded old subtree and is left alone,
// since nothing still reachable from root points at it.
func (a *Arena) ShiftSpans(graftedFrom ID, oldBoundary span.Span, delta int32) {
	for id := ID(1); id < graftedFrom; id++ {
		n := &a.nodes[id]
		switch {
		case n.Span.Start >= oldBoundary.End:
			n.Span = n.Span.Shift(delta)
		case n.Span.Start <= oldBoundary.Start && n.Span.End >= oldBoundary.End:
			n.Span.End = uint32(int64(n.Span.End) + int64(delta))
		}
	}
}
