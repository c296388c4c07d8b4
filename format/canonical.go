package format

import (
	"bytes"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/lexer"
)

// printCanonical renders the subtree at id with fixed indentation and
// spacing, ignoring any original trivia. Scalar and key text is always the
// node's raw source slice (quotes, escapes, and digits are reproduced
// verbatim); only surrounding whitespace, separators, and brackets are
// canonicalized, which is what makes repeated formatting idempotent (spec
// §8 property 5).
func printCanonical(buf *bytes.Buffer, a *ast.Arena, id ast.ID, src []byte, lang lexer.Language, indent string, depth int) {
	if id == 0 {
		return
	}
	n := a.Node(id)
	switch n.Kind {
	case ast.Root:
		children := a.Children(id)
		if len(children) > 0 {
			printCanonical(buf, a, children[0], src, lang, indent, depth)
		}

	case ast.Object:
		printObject(buf, a, id, src, lang, indent, depth)

	case ast.Array:
		printArray(buf, a, id, src, lang, indent, depth)

	case ast.Property:
		children := a.Children(id)
		if len(children) > 0 {
			buf.Write(a.Node(children[0]).Span.Slice(src))
		}
		buf.WriteString(": ")
		if len(children) > 1 {
			printCanonical(buf, a, children[1], src, lang, indent, depth)
		}

	case ast.Field:
		children := a.Children(id)
		if len(children) > 0 {
			buf.Write(a.Node(children[0]).Span.Slice(src))
		}
		buf.WriteString(" = ")
		if len(children) > 1 {
			printCanonical(buf, a, children[1], src, lang, indent, depth)
		}

	case ast.Err:
		// Nothing well-formed to print for a recovery placeholder.

	default: // StringLit, NumberLit, BooleanLit, NullLit, Identifier, EnumLit
		buf.Write(n.Span.Slice(src))
	}
}

func printObject(buf *bytes.Buffer, a *ast.Arena, id ast.ID, src []byte, lang lexer.Language, indent string, depth int) {
	children := a.Children(id)
	openBr, closeBr := objectBrackets(a, children, lang)
	if len(children) == 0 {
		buf.WriteString(openBr)
		buf.WriteString(closeBr)
		return
	}
	buf.WriteString(openBr)
	buf.WriteByte('\n')
	for i, c := range children {
		writeIndent(buf, indent, depth+1)
		printCanonical(buf, a, c, src, lang, indent, depth+1)
		if i < len(children)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent, depth)
	buf.WriteString(closeBr)
}

func printArray(buf *bytes.Buffer, a *ast.Arena, id ast.ID, src []byte, lang lexer.Language, indent string, depth int) {
	children := a.Children(id)
	if len(children) == 0 {
		buf.WriteString("[]")
		return
	}
	buf.WriteString("[\n")
	for i, c := range children {
		writeIndent(buf, indent, depth+1)
		printCanonical(buf, a, c, src, lang, indent, depth+1)
		if i < len(children)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, indent, depth)
	buf.WriteByte(']')
}

// objectBrackets picks ZON's ".{"/"}" or JSON's "{"/"}" by inspecting the
// object's own members: a Field child means ZON, a Property child means
// JSON, and an empty object falls back to the request's language.
func objectBrackets(a *ast.Arena, children []ast.ID, lang lexer.Language) (string, string) {
	if len(children) > 0 && a.Node(children[0]).Kind == ast.Field {
		return ".{", "}"
	}
	if len(children) > 0 {
		return "{", "}"
	}
	if lang == lexer.ZON {
		return ".{", "}"
	}
	return "{", "}"
}

func writeIndent(buf *bytes.Buffer, indent string, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}
