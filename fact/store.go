package fact

import (
	"sort"

	"github.com/opal-lang/stratacore/internal/invariant"
	"github.com/opal-lang/stratacore/span"
	"github.com/opal-lang/stratacore/value"
)

// Delta is the unit of change spec §4.3/§4.4 apply atomically: a batch of
// retractions and assertions that bump the store's generation exactly once.
type Delta struct {
	Retractions []ID
	Assertions  []Assertion
}

type spanEntry struct {
	start uint32
	id    ID
}

// Store is the FactStore of spec §3.5/§4.3: an append-only vector of facts
// plus a subject-span index (ordered by start), a predicate index, and a
// parent/child index, all kept consistent under a monotonic generation
// counter. A Store owns exactly one value.AtomPool (spec §3.6) so every
// atom referenced by a Value in this store is interned in the same pool.
type Store struct {
	facts []Fact // facts[0] unused; ids are 1-based
	tomb  []bool // tomb[id] true once retracted

	bySpan      []spanEntry      // sorted by start, ties broken by id ascending
	byPredicate map[Predicate][]ID
	byParent    map[ID][]ID

	generation uint32
	atoms      *value.AtomPool
	cache      *QueryCache
}

// StoreOpt configures a new Store.
type StoreOpt func(*Store)

// WithQueryCache attaches a span-invalidated LRU of the given capacity to
// the store, per spec §4.3's "separate structure caches recent (query,
// generation) -> result pairs".
func WithQueryCache(capacity int) StoreOpt {
	return func(s *Store) { s.cache = NewQueryCache(capacity) }
}

// WithAtoms attaches an existing atom pool instead of allocating a fresh
// one, so a store built from an already-parsed AST interns into the same
// pool the parser used for identifiers and field names — required for
// FromAST, whose asserted value.Atom payloads reference ids minted by the
// parser's pool.
func WithAtoms(atoms *value.AtomPool) StoreOpt {
	return func(s *Store) { s.atoms = atoms }
}

// NewStore returns an empty Store at generation 0.
func NewStore(opts ...StoreOpt) *Store {
	s := &Store{
		facts:       make([]Fact, 1),
		tomb:        make([]bool, 1),
		byPredicate: make(map[Predicate][]ID),
		byParent:    make(map[ID][]ID),
		atoms:       value.NewAtomPool(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Atoms returns the store's atom pool, shared with any parser.Result whose
// facts were asserted into this store.
func (s *Store) Atoms() *value.AtomPool { return s.atoms }

// Generation returns the current generation counter.
func (s *Store) Generation() uint32 { return s.generation }

// Len reports the number of facts ever asserted, including tombstoned ones.
func (s *Store) Len() int { return len(s.facts) - 1 }

// Assert appends a new fact, updates indices, and bumps the generation by
// exactly one.
func (s *Store) Assert(a Assertion) ID {
	id := s.assertNoBump(a)
	s.generation++
	if s.cache != nil {
		s.cache.Invalidate(a.Subject)
	}
	return id
}

func (s *Store) assertNoBump(a Assertion) ID {
	id := ID(len(s.facts))
	f := a.toFact(id)
	s.facts = append(s.facts, f)
	s.tomb = append(s.tomb, false)
	s.indexFact(f)
	return id
}

func (s *Store) indexFact(f Fact) {
	i := sort.Search(len(s.bySpan), func(i int) bool { return s.bySpan[i].start >= f.Subject.Start })
	s.bySpan = append(s.bySpan, spanEntry{})
	copy(s.bySpan[i+1:], s.bySpan[i:])
	s.bySpan[i] = spanEntry{start: f.Subject.Start, id: f.ID}

	s.byPredicate[f.Predicate] = append(s.byPredicate[f.Predicate], f.ID)

	if f.Object.Kind() == value.FactRef {
		parent := ID(f.Object.AsFactRef())
		s.byParent[parent] = append(s.byParent[parent], f.ID)
	}
}

// Retract marks id as tombstoned and bumps the generation. Retracting an
// already-tombstoned or unknown id is a no-op that still bumps the
// generation, matching "retract(id): mark tombstone; bump generation" with
// no precondition that id be live.
func (s *Store) Retract(id ID) {
	var subject span.Span
	haveSubject := false
	if id != 0 && int(id) < len(s.facts) {
		subject = s.facts[id].Subject
		haveSubject = true
	}
	s.retractNoBump(id)
	s.generation++
	if s.cache != nil && haveSubject {
		s.cache.Invalidate(subject)
	}
}

func (s *Store) retractNoBump(id ID) {
	if id == 0 || int(id) >= len(s.tomb) {
		return
	}
	s.tomb[id] = true
}

func (s *Store) isLive(id ID) bool {
	return id != 0 && int(id) < len(s.tomb) && !s.tomb[id]
}

// ApplyDelta atomically retracts d.Retractions and asserts d.Assertions,
// bumping the generation exactly once, then invalidates any attached query
// cache over the covering span of everything the delta touched. It returns
// the ids assigned to d.Assertions, in order, and the affected span.
func (s *Store) ApplyDelta(d Delta) ([]ID, span.Span) {
	affected := span.Zero
	haveAffected := false
	cover := func(sp span.Span) {
		if !haveAffected {
			affected = sp
			haveAffected = true
			return
		}
		affected = span.Cover(affected, sp)
	}

	for _, id := range d.Retractions {
		if s.isLive(id) {
			cover(s.facts[id].Subject)
		}
		s.retractNoBump(id)
	}

	ids := make([]ID, len(d.Assertions))
	for i, a := range d.Assertions {
		cover(a.Subject)
		ids[i] = s.assertNoBump(a)
	}

	s.generation++
	if s.cache != nil && haveAffected {
		s.cache.Invalidate(affected)
	}
	return ids, affected
}

// BySpan returns, in ascending subject-start order, every live fact whose
// subject intersects q.
func (s *Store) BySpan(q span.Span) []Fact {
	if s.cache != nil {
		key := queryKey{kind: queryBySpan, span: q}
		if cached, ok := s.cache.Get(key); ok {
			return cached
		}
		result := s.bySpanUncached(q)
		s.cache.Put(key, s.generation, q, result)
		return result
	}
	return s.bySpanUncached(q)
}

func (s *Store) bySpanUncached(q span.Span) []Fact {
	upper := sort.Search(len(s.bySpan), func(i int) bool { return s.bySpan[i].start >= q.End })
	var out []Fact
	for i := 0; i < upper; i++ {
		id := s.bySpan[i].id
		if !s.isLive(id) {
			continue
		}
		f := s.facts[id]
		if f.Subject.Intersects(q) {
			out = append(out, f)
		}
	}
	return out
}

// ByPredicate returns every live fact asserted with predicate p, in
// assertion order.
func (s *Store) ByPredicate(p Predicate) []Fact {
	if s.cache != nil {
		key := queryKey{kind: queryByPredicate, pred: p}
		if cached, ok := s.cache.Get(key); ok {
			return cached
		}
		result := s.byPredicateUncached(p)
		s.cache.Put(key, s.generation, span.Zero, result)
		return result
	}
	return s.byPredicateUncached(p)
}

func (s *Store) byPredicateUncached(p Predicate) []Fact {
	var out []Fact
	for _, id := range s.byPredicate[p] {
		if s.isLive(id) {
			out = append(out, s.facts[id])
		}
	}
	return out
}

// ChildrenOf returns every live fact whose Object is a value.FactRef to
// parent, in assertion order.
func (s *Store) ChildrenOf(parent ID) []Fact {
	if s.cache != nil {
		key := queryKey{kind: queryChildrenOf, id: parent}
		if cached, ok := s.cache.Get(key); ok {
			return cached
		}
		result := s.childrenOfUncached(parent)
		s.cache.Put(key, s.generation, span.Zero, result)
		return result
	}
	return s.childrenOfUncached(parent)
}

func (s *Store) childrenOfUncached(parent ID) []Fact {
	var out []Fact
	for _, id := range s.byParent[parent] {
		if s.isLive(id) {
			out = append(out, s.facts[id])
		}
	}
	return out
}

// Compact rewrites the store to drop tombstones and renumber ids from 1,
// invalidating every outstanding ID (spec §4.3). It returns the old-to-new
// id mapping so a caller holding stale ids (e.g. an incremental.Coordinator
// translating FactRefs) can remap them.
func (s *Store) Compact() map[ID]ID {
	remap := make(map[ID]ID, s.Len())
	live := make([]Fact, 0, s.Len())
	for id := ID(1); int(id) < len(s.facts); id++ {
		if !s.isLive(id) {
			continue
		}
		remap[id] = ID(len(live) + 1)
		live = append(live, s.facts[id])
	}
	// A second pass remaps FactRefs only once every surviving id's new
	// number is known: a post-order walk may assert a parent fact after
	// its children, so a single ascending pass could see a ChildOf fact
	// before its parent's new id was assigned.
	for i := range live {
		live[i].ID = ID(i + 1)
		if live[i].Object.Kind() != value.FactRef {
			continue
		}
		if mapped, ok := remap[ID(live[i].Object.AsFactRef())]; ok {
			live[i].Object = value.NewFactRef(uint32(mapped))
		}
	}

	s.facts = append(make([]Fact, 1), live...)
	s.tomb = make([]bool, len(s.facts))
	s.bySpan = s.bySpan[:0]
	s.byPredicate = make(map[Predicate][]ID)
	s.byParent = make(map[ID][]ID)
	for i := 1; i < len(s.facts); i++ {
		s.indexFact(s.facts[i])
	}
	invariant.Postcondition(len(s.facts)-1 == len(live), "fact: compact lost or gained facts")
	s.generation++
	if s.cache != nil {
		s.cache.Clear()
	}
	return remap
}
