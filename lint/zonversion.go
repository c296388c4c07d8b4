package lint

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/value"
)

// ZonVersionRule validates ZON's flagship real-world field, a top-level
// ".version" string, against semver — grounded on core/types/validation.go's
// "semver" format validator, which already imports golang.org/x/mod/semver
// for exactly this check. semver.IsValid requires a "v" prefix; this rule
// accepts bare "1.2.3" the way the teacher's format validator does, by
// prepending "v" before checking.
type ZonVersionRule struct {
	// FieldName is the key this rule checks; defaults to "version" when
	// empty, matching build.zig.zon's ".version" field.
	FieldName string
}

func (r ZonVersionRule) Lint(ctx Context) []diag.Diagnostic {
	field := r.FieldName
	if field == "" {
		field = "version"
	}

	var out []diag.Diagnostic
	ast.Walk(ctx.Arena, ctx.Root, func(id ast.ID, n *ast.Node, depth int) bool {
		if n.Kind != ast.Field {
			return true
		}
		if ctx.Arena.Node(n.Parent).Parent != ctx.Root {
			return true
		}
		children := ctx.Arena.Children(id)
		if len(children) != 2 {
			return true
		}
		nameNode := ctx.Arena.Node(children[0])
		if nameNode.Value.Kind() != value.Atom {
			return true
		}
		name, _ := ctx.Atoms.String(nameNode.Value.AsAtom())
		// The field-name token's span includes its leading '.' (the lexer's
		// scanZonFieldOrEnum starts the span at the dot), so the interned
		// atom text is ".version", not "version".
		name = strings.TrimPrefix(name, ".")
		if name != field {
			return true
		}
		valNode := ctx.Arena.Node(children[1])
		if valNode.Kind != ast.StringLit {
			out = append(out, diag.New(diag.InvalidFieldType, diag.Error, valNode.Span,
				"field %q must be a string", field))
			return true
		}
		text := decodeQuoted(valNode.Span.Slice(ctx.Source))
		checked := text
		if checked != "" && checked[0] != 'v' {
			checked = "v" + checked
		}
		if !semver.IsValid(checked) {
			out = append(out, diag.New(diag.InvalidFieldType, diag.Error, valNode.Span,
				"field %q is not a valid semver version: %q", field, text))
			ctx.Facts.Assert(fact.Assertion{
				Subject:    valNode.Span,
				Predicate:  fact.InvalidIdentifier,
				Confidence: fact.Certain,
				Object:     value.NewAtom(ctx.Atoms.Intern(text)),
			})
		}
		return true
	})
	return out
}

func decodeQuoted(raw []byte) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return string(raw)
}
