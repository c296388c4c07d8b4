package fact

import (
	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

// FromAST builds a Store by walking arena in post-order from root, sharing
// atoms with the parse that produced the tree (see WithAtoms). Children are
// always asserted before the node that contains them, giving the
// deterministic, source-order-ascending fact ids spec §5's ordering
// guarantee requires of a post-order assertion walk. The whole walk is one
// generation transition: generation 1 is "facts for the initial parse",
// matching ApplyASTDelta's "one edit, one generation" contract below.
//
// The well-known predicates asserted here are the ones named in spec §8
// scenario (a): is_object/is_array describe a container's own span,
// has_key/has_value describe a property or field's key and scalar value,
// element_index/child_of describe array membership and, for object
// members, containment. is_scalar/token_text are asserted for every
// terminal node so a consumer that only has the FactStore (no AST) can
// still recover literal values and exact source text.
func FromAST(a *ast.Arena, root ast.ID, atoms *value.AtomPool, src []byte) *Store {
	s := NewStore(WithAtoms(atoms))
	assertSubtree(s, a, root, src)
	s.generation++
	return s
}

// ApplyASTDelta is the incremental.Coordinator's hook into fact extraction:
// it retracts the facts named in retractions and asserts fresh facts for
// the subtree rooted at root, as a single generation bump, rather than one
// bump per retraction/assertion. A post-order walk asserts a container's
// own fact (e.g. is_object) only after its members, which would otherwise
// need to reference a parent fact id that doesn't exist yet if assertions
// were pre-built as a Delta{} slice; asserting directly against the live
// store during the walk (as FromAST already does) sidesteps that forward
// reference, since each Assert call both happens and returns its id
// immediately, in walk order. It returns the span affected.
func (s *Store) ApplyASTDelta(retractions []ID, a *ast.Arena, root ast.ID, src []byte) span.Span {
	affected := span.Zero
	have := false
	cover := func(sp span.Span) {
		if !have {
			affected = sp
			have = true
			return
		}
		affected = span.Cover(affected, sp)
	}

	for _, id := range retractions {
		if s.isLive(id) {
			cover(s.facts[id].Subject)
		}
		s.retractNoBump(id)
	}

	before := len(s.facts)
	assertSubtree(s, a, root, src)
	for i := before; i < len(s.facts); i++ {
		cover(s.facts[i].Subject)
	}

	s.generation++
	if s.cache != nil && have {
		s.cache.Invalidate(affected)
	}
	return affected
}

func assertSubtree(s *Store, a *ast.Arena, id ast.ID, src []byte) {
	if id == 0 {
		return
	}
	n := a.Node(id)

	switch n.Kind {
	case ast.Root:
		for _, c := range a.Children(id) {
			assertSubtree(s, a, c, src)
		}

	case ast.Object:
		children := a.Children(id)
		for _, c := range children {
			assertSubtree(s, a, c, src)
		}
		objID := s.assertNoBump(Assertion{Subject: n.Span, Predicate: IsObject, Confidence: Certain, Object: value.NewNull()})
		for _, c := range children {
			cn := a.Node(c)
			s.assertNoBump(Assertion{Subject: cn.Span, Predicate: ChildOf, Confidence: Certain, Object: value.NewFactRef(uint32(objID))})
		}

	case ast.Array:
		children := a.Children(id)
		for _, c := range children {
			assertSubtree(s, a, c, src)
		}
		arrID := s.assertNoBump(Assertion{Subject: n.Span, Predicate: IsArray, Confidence: Certain, Object: value.NewNull()})
		for idx, c := range children {
			cn := a.Node(c)
			s.assertNoBump(Assertion{Subject: cn.Span, Predicate: ElementIndex, Confidence: Certain, Object: value.NewUint(uint64(idx))})
			s.assertNoBump(Assertion{Subject: cn.Span, Predicate: ChildOf, Confidence: Certain, Object: value.NewFactRef(uint32(arrID))})
		}

	case ast.Property, ast.Field:
		children := a.Children(id)
		if len(children) > 0 {
			assertSubtree(s, a, children[0], src)
			keyNode := a.Node(children[0])
			s.assertNoBump(Assertion{Subject: keyNode.Span, Predicate: HasKey, Confidence: Certain, Object: value.NewAtom(keyAtom(s, keyNode, src))})
		}
		if len(children) > 1 {
			assertSubtree(s, a, children[1], src)
			valNode := a.Node(children[1])
			if isScalarKind(valNode.Kind) {
				s.assertNoBump(Assertion{Subject: valNode.Span, Predicate: HasValue, Confidence: Certain, Object: valNode.Value})
			}
		}

	case ast.StringLit, ast.NumberLit, ast.BooleanLit, ast.NullLit, ast.Identifier, ast.EnumLit:
		s.assertNoBump(Assertion{Subject: n.Span, Predicate: IsScalar, Confidence: Certain, Object: value.NewNull()})
		s.assertNoBump(Assertion{Subject: n.Span, Predicate: TokenText, Confidence: Certain, Object: value.NewAtom(s.Atoms().Intern(string(n.Span.Slice(src))))})

	case ast.Err:
		// No fact describes an error node: it marks an absence, not a
		// property of the source.
	}
}

func isScalarKind(k ast.Kind) bool {
	switch k {
	case ast.StringLit, ast.NumberLit, ast.BooleanLit, ast.NullLit, ast.Identifier, ast.EnumLit:
		return true
	default:
		return false
	}
}

// keyAtom returns the interned text a HasKey fact should carry for a
// property or field key node: the decoded string content for a JSON string
// key (quotes and escapes stripped), or the atom the parser already
// interned for a ZON field-name identifier.
func keyAtom(s *Store, keyNode *ast.Node, src []byte) value.AtomID {
	if keyNode.Kind == ast.Identifier && keyNode.Value.Kind() == value.Atom {
		return keyNode.Value.AsAtom()
	}
	return s.Atoms().Intern(decodeJSONString(keyNode.Span.Slice(src)))
}

// decodeJSONString strips the surrounding quotes from a raw JSON string
// token and resolves its backslash escapes, per the escape set JSON
// defines (spec.md's ZON/JSON examples use only the common subset: \", \\,
// \/, \b, \f, \n, \r, \t, and \uXXXX).
func decodeJSONString(raw []byte) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if len(raw) == 0 {
		return ""
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			out = append(out, c)
			continue
		}
		i++
		switch raw[i] {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case '/':
			out = append(out, '/')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			if i+4 < len(raw) {
				r := decodeHex4(raw[i+1 : i+5])
				out = appendRune(out, r)
				i += 4
			}
		default:
			out = append(out, raw[i])
		}
	}
	return string(out)
}

func decodeHex4(h []byte) rune {
	var v rune
	for _, c := range h {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		}
	}
	return v
}

func appendRune(buf []byte, r rune) []byte {
	if r < 0x80 {
		return append(buf, byte(r))
	}
	return append(buf, []byte(string(r))...)
}
