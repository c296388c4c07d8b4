package value

// AtomPool is a deduplicated string/symbol table, interned at first sight.
// A FactStore normally owns exactly one AtomPool and frees it when the
// store is dropped (spec §3.6, §5); fact.FromAST and an
// incremental.Coordinator's boundary re-parses are the deliberate
// exception, sharing one pool across a parser.Result and the Store built
// from it so atom ids stay valid across both.
type AtomPool struct {
	byString map[string]AtomID
	byID     []string
}

// NewAtomPool returns an empty pool. ID 0 is never assigned to a real atom,
// mirroring FactId's reserved zero value, so a zero AtomID reliably means
// "absent" in callers that zero-initialize.
func NewAtomPool() *AtomPool {
	return &AtomPool{
		byString: make(map[string]AtomID),
		byID:     []string{""},
	}
}

// Intern returns the AtomID for s, assigning a new one if s has not been
// seen before by this pool.
func (p *AtomPool) Intern(s string) AtomID {
	if id, ok := p.byString[s]; ok {
		return id
	}
	id := AtomID(len(p.byID))
	p.byID = append(p.byID, s)
	p.byString[s] = id
	return id
}

// Lookup returns the AtomID previously assigned to s, if any.
func (p *AtomPool) Lookup(s string) (AtomID, bool) {
	id, ok := p.byString[s]
	return id, ok
}

// String returns the string an AtomID was interned from. Returns false for
// id 0 or any id this pool never assigned.
func (p *AtomPool) String(id AtomID) (string, bool) {
	if id == 0 || int(id) >= len(p.byID) {
		return "", false
	}
	return p.byID[id], true
}

// Len reports how many atoms have been interned.
func (p *AtomPool) Len() int { return len(p.byID) - 1 }
