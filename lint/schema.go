package lint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/span"
)

// Default guards against pathological schemas, matching the security
// rationale in core/types/validation.go's ValidationConfig.
const (
	DefaultMaxSchemaSize  = 1 << 20 // 1 MiB of compiled schema JSON
	DefaultMaxSchemaDepth = 32
)

// SchemaRule validates an AST subtree against a compiled JSON Schema,
// adapted from core/types/validation.go's Validator.ValidateParams: same
// MaxSchemaSize/MaxSchemaDepth guards against resource exhaustion, same
// santhosh-tekuri/jsonschema/v5 compiler, generalized from "validate a Go
// value" to "validate the interface{} view of one AST subtree" and from
// "return one error" to "produce one diag.Diagnostic per violation, each
// anchored at the AST span the violation's JSON Pointer names".
type SchemaRule struct {
	schema     *jsonschema.Schema
	properties []string // top-level property names, for unknown_field suggestions
}

// NewSchemaRule compiles schemaJSON (a JSON Schema document) with the same
// size/depth guards the teacher applies before compiling.
func NewSchemaRule(schemaJSON []byte) (*SchemaRule, error) {
	if len(schemaJSON) > DefaultMaxSchemaSize {
		return nil, fmt.Errorf("lint: schema too large: %d bytes (max %d)", len(schemaJSON), DefaultMaxSchemaSize)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(schemaJSON, &decoded); err != nil {
		return nil, fmt.Errorf("lint: decoding schema: %w", err)
	}
	if depth := schemaDepth(decoded, 0); depth > DefaultMaxSchemaDepth {
		return nil, fmt.Errorf("lint: schema too deep: %d levels (max %d)", depth, DefaultMaxSchemaDepth)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "schema://stratacore.json"
	if err := compiler.AddResource(url, strings.NewReader(string(schemaJSON))); err != nil {
		return nil, fmt.Errorf("lint: adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("lint: compiling schema: %w", err)
	}

	return &SchemaRule{schema: compiled, properties: topLevelProperties(decoded)}, nil
}

func (r *SchemaRule) Lint(ctx Context) []diag.Diagnostic {
	instance := astToInterface(ctx.Arena, ctx.Root, ctx.Source)
	err := r.schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []diag.Diagnostic{diag.New(diag.InvalidFieldType, diag.Error, span.Zero, "schema validation failed: %v", err)}
	}
	var out []diag.Diagnostic
	for _, leaf := range leafCauses(ve) {
		out = append(out, r.diagnosticFor(ctx, leaf))
	}
	return out
}

// diagnosticFor converts one leaf *jsonschema.ValidationError into a
// Diagnostic anchored at the AST span its InstanceLocation names.
func (r *SchemaRule) diagnosticFor(ctx Context, ve *jsonschema.ValidationError) diag.Diagnostic {
	sp, ok := resolvePointer(ctx.Arena, ctx.Root, ctx.Source, ve.InstanceLocation)
	if !ok {
		sp = span.Zero
	}

	code := diag.InvalidFieldType
	switch lastKeyword(ve.KeywordLocation) {
	case "required":
		code = diag.MissingRequiredField
	case "additionalProperties":
		code = diag.UnknownField
	}

	msg := ve.Message
	if code == diag.UnknownField {
		if name := quotedSubstring(msg); name != "" {
			if suggestion := r.suggest(name); suggestion != "" {
				msg = fmt.Sprintf("%s; did you mean %q?", msg, suggestion)
			}
		}
	}
	return diag.New(code, diag.Error, sp, "%s", msg)
}

func (r *SchemaRule) suggest(name string) string {
	ranked := fuzzy.RankFind(name, r.properties)
	if len(ranked) == 0 {
		return ""
	}
	best := ranked[0]
	for _, candidate := range ranked[1:] {
		if candidate.Distance < best.Distance {
			best = candidate
		}
	}
	return best.Target
}

// leafCauses flattens a ValidationError's cause tree to its leaves: the
// innermost, most specific violations, skipping the outer "doesn't match
// the schema" wrapper errors the library produces at each combinator.
func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafCauses(c)...)
	}
	return out
}

func lastKeyword(keywordLocation string) string {
	parts := strings.Split(strings.Trim(keywordLocation, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func quotedSubstring(s string) string {
	start := strings.IndexByte(s, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// resolvePointer walks a JSON Pointer (RFC 6901) against the AST, since the
// AST has no interface{} representation of its own to index into.
func resolvePointer(a *ast.Arena, root ast.ID, src []byte, pointer string) (span.Span, bool) {
	cur := root
	if n := a.Node(cur); n.Kind == ast.Root {
		children := a.Children(cur)
		if len(children) == 0 {
			return span.Zero, false
		}
		cur = children[0]
	}
	pointer = strings.Trim(pointer, "/")
	if pointer == "" {
		return a.Node(cur).Span, true
	}
	for _, raw := range strings.Split(pointer, "/") {
		seg := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		n := a.Node(cur)
		switch n.Kind {
		case ast.Object:
			next, ok := findMember(a, cur, seg, src)
			if !ok {
				return span.Zero, false
			}
			cur = next
		case ast.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return span.Zero, false
			}
			children := a.Children(cur)
			if idx < 0 || idx >= len(children) {
				return span.Zero, false
			}
			cur = children[idx]
		default:
			return span.Zero, false
		}
	}
	return a.Node(cur).Span, true
}

func findMember(a *ast.Arena, objID ast.ID, key string, src []byte) (ast.ID, bool) {
	for _, c := range a.Children(objID) {
		children := a.Children(c)
		if len(children) < 2 {
			continue
		}
		keyNode := a.Node(children[0])
		if memberKeyText(keyNode, src) == key {
			return children[1], true
		}
	}
	return 0, false
}

func memberKeyText(keyNode *ast.Node, src []byte) string {
	if keyNode.Kind == ast.StringLit {
		return jsonStringValue(keyNode.Span.Slice(src))
	}
	return string(keyNode.Span.Slice(src))
}

// astToInterface converts an AST subtree to the interface{} shape
// encoding/json would produce, the representation jsonschema.Schema.
// Validate expects.
func astToInterface(a *ast.Arena, id ast.ID, src []byte) interface{} {
	n := a.Node(id)
	switch n.Kind {
	case ast.Root:
		children := a.Children(id)
		if len(children) == 0 {
			return nil
		}
		return astToInterface(a, children[0], src)
	case ast.Object:
		m := make(map[string]interface{})
		for _, c := range a.Children(id) {
			children := a.Children(c)
			if len(children) < 2 {
				continue
			}
			key := memberKeyText(a.Node(children[0]), src)
			m[key] = astToInterface(a, children[1], src)
		}
		return m
	case ast.Array:
		out := make([]interface{}, 0, len(a.Children(id)))
		for _, c := range a.Children(id) {
			out = append(out, astToInterface(a, c, src))
		}
		return out
	case ast.StringLit:
		return jsonStringValue(n.Span.Slice(src))
	case ast.NumberLit:
		text := string(n.Span.Slice(src))
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		return f
	case ast.BooleanLit:
		return n.Value.AsBool()
	case ast.NullLit:
		return nil
	case ast.Identifier, ast.EnumLit:
		return string(n.Span.Slice(src))
	default:
		return nil
	}
}

func jsonStringValue(raw []byte) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	var out strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		default:
			out.WriteByte(raw[i])
		}
	}
	return out.String()
}

func topLevelProperties(schema map[string]interface{}) []string {
	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	return names
}

func schemaDepth(v interface{}, depth int) int {
	m, ok := v.(map[string]interface{})
	if !ok {
		return depth
	}
	max := depth
	if props, ok := m["properties"].(map[string]interface{}); ok {
		for _, sub := range props {
			if d := schemaDepth(sub, depth+1); d > max {
				max = d
			}
		}
	}
	if items, ok := m["items"]; ok {
		if d := schemaDepth(items, depth+1); d > max {
			max = d
		}
	}
	return max
}
