package lint

import (
	"github.com/opal-lang/stratacore/diag"
	"github.com/opal-lang/stratacore/fact"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

// DuplicateKeyRule flags a second occurrence of the same key within one
// object or struct literal, per spec §8's boundary behavior: "Object with
// a duplicate key in ZON linter -> duplicate_key error at the second
// occurrence's span; first occurrence's span referenced in the message."
type DuplicateKeyRule struct{}

func (DuplicateKeyRule) Lint(ctx Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, obj := range ctx.Facts.ByPredicate(fact.IsObject) {
		seen := make(map[string]fact.Fact)
		for _, member := range ctx.Facts.ChildrenOf(obj.ID) {
			key, ok := firstHasKey(ctx.Facts, member.Subject)
			if !ok {
				continue
			}
			text, _ := ctx.Atoms.String(key.Object.AsAtom())
			if first, dup := seen[text]; dup {
				out = append(out, diag.New(diag.DuplicateKey, diag.Error, key.Subject,
					"duplicate key %q (first occurrence at %s)", text, first.Subject))
				ctx.Facts.Assert(fact.Assertion{
					Subject:    key.Subject,
					Predicate:  fact.DuplicateKey,
					Confidence: fact.Certain,
					Object:     value.NewFactRef(uint32(first.ID)),
				})
				continue
			}
			seen[text] = key
		}
	}
	return out
}

// firstHasKey returns the HasKey fact whose subject lies within a
// property/field node's span, if any.
func firstHasKey(s *fact.Store, within span.Span) (fact.Fact, bool) {
	for _, f := range s.BySpan(within) {
		if f.Predicate == fact.HasKey {
			return f, true
		}
	}
	return fact.Fact{}, false
}
