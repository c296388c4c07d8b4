// Package incremental implements the Incremental Coordinator of spec §4.4:
// it turns a source edit into the smallest coherent update across the
// lexer, parser, and FactStore instead of reparsing the whole buffer,
// falling back to a full reparse only when a partial update cannot be
// trusted. There is no teacher file this is grounded on directly — the
// teacher's runtime is a cold, one-shot compiler — so the coordinator is
// built from spec §4.4's own rescan/fallback policy, using the span, ast,
// fact, and lang packages' already-established idioms (functional options,
// diag.Bag accumulation, generation-bumped stores) rather than introducing
// a new style.
package incremental

import (
	"fmt"
	"sort"

	"github.com/opal-lang/stratacore/ast"
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/lang"
	"github.com/opal-lang/stratacore/parser"
	"github.com/opal-lang/stratacore/span"
)

// Edit is one source change: replace the bytes in Range with NewText.
type Edit struct {
	Range   span.Span
	NewText []byte
}

// Coordinator owns one document's current source buffer, AST, and
// FactStore, and applies Edit values to all three in place (spec §4.4).
type Coordinator struct {
	registry *lang.Registry
	langID   string
	opts     []parser.Opt

	source []byte
	arena  *ast.Arena
	root   ast.ID
	facts  *fact.Store

	diagnostics []diag.Diagnostic // most recent edit batch's diagnostics
}

// New parses source under langID with the registry's defaults (plus any
// caller opts) and returns a Coordinator ready to accept edits.
func New(registry *lang.Registry, langID string, source []byte, opts ...parser.Opt) (*Coordinator, error) {
	res, err := registry.Parse(langID, source, opts...)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		registry:    registry,
		langID:      langID,
		opts:        opts,
		source:      append([]byte(nil), source...),
		arena:       res.Arena,
		root:        res.Root,
		facts:       res.Facts,
		diagnostics: res.Diagnostics,
	}, nil
}

// Source returns the current buffer. The caller must not retain or mutate
// the returned slice across a subsequent Edit call.
func (c *Coordinator) Source() []byte { return c.source }

// Arena returns the current AST arena.
func (c *Coordinator) Arena() *ast.Arena { return c.arena }

// Root returns the current AST's root id.
func (c *Coordinator) Root() ast.ID { return c.root }

// Facts returns the live FactStore, incrementally maintained across edits.
func (c *Coordinator) Facts() *fact.Store { return c.facts }

// Diagnostics returns the diagnostics produced by the most recent Apply
// call (or the initial parse, before any edit), per spec §4.4/§7's
// fell_back_to_full_reparse surface and SPEC_FULL.md §C.
func (c *Coordinator) Diagnostics() []diag.Diagnostic { return c.diagnostics }

// Apply splices every edit into the buffer in descending start-order
// (spec §4.4: "applied in descending start-order to avoid position
// shifts"), updating the AST and FactStore after each one. An edit whose
// Range lies outside the current buffer is a contract violation, not a
// recoverable diagnostic (spec §7: only out_of_memory and contract
// violations are hard failures).
func (c *Coordinator) Apply(edits []Edit) {
	ordered := append([]Edit(nil), edits...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Range.Start > ordered[j].Range.Start })

	var diags []diag.Diagnostic
	for _, e := range ordered {
		diags = append(diags, c.applyOne(e)...)
	}
	c.diagnostics = diags
}

func (c *Coordinator) applyOne(e Edit) []diag.Diagnostic {
	invariant.Precondition(e.Range.End <= uint32(len(c.source)), "incremental: edit range %v outside buffer of length %d", e.Range, len(c.source))

	boundary := findBoundary(c.arena, c.root, e.Range)
	if c.arena.Node(boundary).Kind == ast.Root {
		return c.fullReparse(e, "edit affects the top-level value")
	}

	oldBoundarySpan := c.arena.Node(boundary).Span
	delta := int32(len(e.NewText)) - int32(e.Range.Len())

	newSource := splice(c.source, e.Range, e.NewText)
	newBoundaryEnd := uint32(int64(oldBoundarySpan.End) + int64(delta))
	if newBoundaryEnd < oldBoundarySpan.Start || int(newBoundaryEnd) > len(newSource) {
		return c.fullReparse(e, "edit delta shrinks boundary past its own start")
	}
	slice := newSource[oldBoundarySpan.Start:newBoundaryEnd]

	entry, _ := c.registry.Lookup(c.langID)
	subOpts := append(append([]parser.Opt(nil), entry.DefaultOptions...), parser.WithAtomPool(c.facts.Atoms()))
	subOpts = append(subOpts, c.opts...)
	subResult := parser.Parse(entry.Lexer, slice, subOpts...)

	if fellBack, reason := needsFallback(subResult, slice); fellBack {
		return c.fullReparse(e, reason)
	}

	graftRoot := subResult.Root
	if n := subResult.Arena.Node(graftRoot); n.Kind == ast.Root {
		children := subResult.Arena.Children(graftRoot)
		if len(children) != 1 {
			return c.fullReparse(e, "boundary re-parse did not produce exactly one value")
		}
		graftRoot = children[0]
	}

	c.source = newSource
	parentID := c.arena.Node(boundary).Parent
	graftedFrom := ast.ID(c.arena.Len())
	newBoundaryID := c.arena.Graft(subResult.Arena, graftRoot, int32(oldBoundarySpan.Start))
	c.arena.ReplaceChild(parentID, boundary, newBoundaryID)
	c.arena.ShiftSpans(graftedFrom, oldBoundarySpan, delta)
	if boundary == c.root {
		c.root = newBoundaryID
	}

	retractions := retractedIDs(c.facts, oldBoundarySpan)
	c.facts.ApplyASTDelta(retractions, c.arena, newBoundaryID, c.source)

	return subResult.Diagnostics
}

// fullReparse discards the incremental path entirely and reparses the
// whole (already-spliced) buffer, emitting spec §4.4/§7's
// fell_back_to_full_reparse diagnostic ahead of whatever the fresh parse
// itself reports. This is never incorrect, only slow.
func (c *Coordinator) fullReparse(e Edit, reason string) []diag.Diagnostic {
	newSource := splice(c.source, e.Range, e.NewText)
	res, err := c.registry.Parse(c.langID, newSource, c.opts...)
	fallback := diag.New(diag.FellBackToFullReparse, diag.Info, e.Range, "fell back to full reparse: %s", reason)
	if err != nil {
		return []diag.Diagnostic{fallback}
	}
	c.source = newSource
	c.arena = res.Arena
	c.root = res.Root
	c.facts = res.Facts
	return append([]diag.Diagnostic{fallback}, res.Diagnostics...)
}

func splice(source []byte, r span.Span, newText []byte) []byte {
	out := make([]byte, 0, len(source)-int(r.Len())+len(newText))
	out = append(out, source[:r.Start]...)
	out = append(out, newText...)
	out = append(out, source[r.End:]...)
	return out
}

// findBoundary returns the smallest Object/Array node that fully contains
// editRange, or root if no such node exists (spec §4.4: "the smallest
// enclosing boundary (object, array, or top-level) containing the
// affected token range").
func findBoundary(a *ast.Arena, root ast.ID, editRange span.Span) ast.ID {
	boundary := root
	cur := root
	for {
		next := ast.ID(0)
		for _, c := range a.Children(cur) {
			if a.Node(c).Span.Contains(editRange) {
				next = c
				break
			}
		}
		if next == 0 {
			return boundary
		}
		cur = next
		if k := a.Node(cur).Kind; k == ast.Object || k == ast.Array {
			boundary = cur
		}
	}
}

// needsFallback conservatively decides whether a boundary's isolated
// re-parse can be trusted, per §4.4's "if recovery cannot close brackets,
// the coordinator widens the boundary outward" — realized here as "widen
// all the way to a full reparse" rather than iteratively trying larger
// boundaries, trading some incremental-path coverage for a guarantee that
// a partial update is never applied when the slice parsed as anything
// other than one clean, fully-consumed value.
func needsFallback(res parser.Result, slice []byte) (bool, string) {
	if res.HasErrors() {
		return true, "boundary re-parse reported an error"
	}
	children := res.Arena.Children(res.Root)
	if len(children) != 1 {
		return true, "boundary re-parse did not produce exactly one value"
	}
	if res.Arena.Node(children[0]).Span.End != uint32(len(slice)) {
		return true, "boundary re-parse left unconsumed trailing bytes"
	}
	return false, ""
}

// retractedIDs returns every live fact whose subject lies fully within
// oldBoundary, the retraction half of §4.4's "two-phase diff between old
// and new AST over the affected boundary".
func retractedIDs(s *fact.Store, oldBoundary span.Span) []fact.ID {
	var out []fact.ID
	for _, f := range s.BySpan(oldBoundary) {
		if oldBoundary.Contains(f.Subject) {
			out = append(out, f.ID)
		}
	}
	return out
}

func (e Edit) String() string {
	return fmt.Sprintf("incremental.Edit{%s, %d bytes}", e.Range, len(e.NewText))
}
