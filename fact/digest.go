package fact

import (
	"fmt"
	"math"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/opal-lang/stratacore/value"
)

// canonicalFact is a Fact flattened to CBOR-friendly fields, with ID
// deliberately omitted: ids are store-assignment artifacts that Compact
// renumbers, so two stores holding the same live facts in different
// assignment order must still digest identically.
type canonicalFact struct {
	SubjectStart uint32
	SubjectEnd   uint32
	Predicate    uint16
	Confidence   uint16
	ObjectKind   uint8
	ObjectText   string // resolved atom text, not the pool-local AtomID
	ObjectBits   uint64 // raw payload for non-atom kinds
}

// Snapshot is a canonical, deterministic view of a Store's live facts at one
// generation, grounded on the teacher's core/planfmt CanonicalPlan: strip
// anything that varies with assertion order or process-local ids, sort what
// remains, and CBOR-encode in canonical mode so two equivalent stores
// produce byte-identical output (spec §4.3's generation/digest contract).
// Generation is recorded for the caller but left out of the encoding, so
// the digest depends on the live facts alone.
type Snapshot struct {
	Generation uint32 `cbor:"-"`
	Facts      []canonicalFact
}

// Snapshot captures the store's current live facts. Atom payloads are
// resolved to their interned text so the digest is independent of the
// order atoms were interned in.
func (s *Store) Snapshot() Snapshot {
	facts := make([]canonicalFact, 0, s.Len())
	for id := ID(1); int(id) < len(s.facts); id++ {
		if !s.isLive(id) {
			continue
		}
		f := s.facts[id]
		cf := canonicalFact{
			SubjectStart: f.Subject.Start,
			SubjectEnd:   f.Subject.End,
			Predicate:    uint16(f.Predicate),
			Confidence:   uint16(f.Confidence),
			ObjectKind:   uint8(f.Object.Kind()),
		}
		switch f.Object.Kind() {
		case value.Atom:
			if text, ok := s.atoms.String(f.Object.AsAtom()); ok {
				cf.ObjectText = text
			}
		case value.Bool:
			if f.Object.AsBool() {
				cf.ObjectBits = 1
			}
		case value.Uint:
			cf.ObjectBits = f.Object.AsUint()
		case value.Int:
			cf.ObjectBits = uint64(f.Object.AsInt())
		case value.Float:
			cf.ObjectBits = math.Float64bits(f.Object.AsFloat())
		case value.SpanRef:
			sp := f.Object.AsSpanRef()
			cf.ObjectBits = uint64(sp.Start)<<32 | uint64(sp.End)
		case value.FactRef:
			cf.ObjectBits = uint64(f.Object.AsFactRef())
		}
		facts = append(facts, cf)
	}

	sort.Slice(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.SubjectStart != b.SubjectStart {
			return a.SubjectStart < b.SubjectStart
		}
		if a.SubjectEnd != b.SubjectEnd {
			return a.SubjectEnd < b.SubjectEnd
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		if a.ObjectKind != b.ObjectKind {
			return a.ObjectKind < b.ObjectKind
		}
		if a.ObjectText != b.ObjectText {
			return a.ObjectText < b.ObjectText
		}
		return a.ObjectBits < b.ObjectBits
	})

	return Snapshot{Generation: s.generation, Facts: facts}
}

// MarshalBinary produces the deterministic CBOR encoding of the snapshot.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("fact: building canonical cbor encoder: %w", err)
	}
	// Alias the type so cbor's MarshalBinary detection does not recurse
	// back into this method, mirroring the teacher's CanonicalPlan.
	type snapshotAlias Snapshot
	data, err := encMode.Marshal((*snapshotAlias)(&s))
	if err != nil {
		return nil, fmt.Errorf("fact: cbor encoding snapshot: %w", err)
	}
	return data, nil
}

// Digest returns the SHA3-256 digest of the snapshot's canonical encoding.
func (s Snapshot) Digest() ([32]byte, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return sha3.Sum256(data), nil
}

// DeriveKey derives a 32-byte key scoped to this snapshot's digest via
// HKDF-SHA3-256, keyed with info so unrelated callers deriving from the
// same digest never collide. This lets a downstream consumer (e.g. a
// content-addressed cache) produce deterministic-per-snapshot keys without
// ever handing out the raw digest as a capability, the same shape as the
// teacher's idfactory.go derives per-plan DisplayID keys from a plan digest.
func (s Snapshot) DeriveKey(info string) ([32]byte, error) {
	digest, err := s.Digest()
	if err != nil {
		return [32]byte{}, err
	}
	kdf := hkdf.New(sha3.New256, digest[:], nil, []byte(info))
	var key [32]byte
	if _, err := kdf.Read(key[:]); err != nil {
		return [32]byte{}, fmt.Errorf("fact: deriving key: %w", err)
	}
	return key, nil
}
