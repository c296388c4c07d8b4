package ast

// Visit is called once per node in pre-order during Walk. Returning false
// skips the node's children but continues the walk with its next sibling,
// mirroring fs.WalkDir's SkipDir convention.
type Visit func(id ID, n *Node, depth int) bool

// Walk traverses the tree rooted at root in pre-order, calling visit for
// every reachable node including root itself. This is the core's one
// visitor walker (spec §3.4 supplement): every consumer that needs to
// traverse an Arena — the formatter, the linter, fact extraction — drives
// it through Walk instead of hand-rolling recursion over FirstChild/
// NextSibling.
func Walk(a *Arena, root ID, visit Visit) {
	walk(a, root, 0, visit)
}

func walk(a *Arena, id ID, depth int, visit Visit) {
	if id == 0 {
		return
	}
	n := a.Node(id)
	if !visit(id, n, depth) {
		return
	}
	for child := n.FirstChild; child != 0; child = a.Node(child).NextSibling {
		walk(a, child, depth+1, visit)
	}
}

// Collect runs a generic reducer over the tree rooted at root in pre-order,
// threading an accumulator through every visited node. It is a thin
// convenience over Walk for the common case of gathering a typed result
// (e.g. the fact extractor collecting Fact values) rather than driving the
// traversal by side effect alone.
func Collect[T any](a *Arena, root ID, init T, fn func(acc T, id ID, n *Node, depth int) T) T {
	acc := init
	Walk(a, root, func(id ID, n *Node, depth int) bool {
		acc = fn(acc, id, n, depth)
		return true
	})
	return acc
}
