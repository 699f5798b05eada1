package solver

import "github.com/cespare/xxhash/v2"

// Bound records which side of the negamax value an Entry pins down. A
// beta cutoff proves the node is at least as good as the cutoff value,
// a LowerBound; a node that was fully expanded without a cutoff has an
// UpperBound equal to the best value found. No "exact" flag is stored:
// an exact result is simply the case where two probes have narrowed the
// bounds down to the same value.
type Bound uint8

const (
	LowerBound Bound = iota
	UpperBound
)

// Entry is the bound on a state's negamax value previously established
// by a search. Entries are side-to-move-relative: the same Entry is
// valid no matter which path was taken to reach the state.
type Entry struct {
	Bound Bound
	Value int
}

// Table is the probe/store contract every transposition-table backend
// implements. The negamax core is written against this interface only
// and does not know (or care) whether it is talking to the unbounded
// single-threaded map or the concurrent, memory-bounded cache — the two
// backends are interchangeable strategies, selected once at Solver
// construction (see Option).
//
// Removing any entry from a Table must never change a solver's answer,
// only its speed: this is the invariant every implementation below
// relies on to evict or skip storage freely.
type Table[T any] interface {
	Probe(state T) (Entry, bool)
	Store(state T, e Entry)
}

// Hasher computes a fingerprint for a state, used as the transposition
// key in place of the state's own Go equality when a cheaper or
// incremental hash is available. A game with a Zobrist-style rolling
// hash supplies one directly; a game without one can satisfy Keyer and
// use XXHash.
type Hasher[T any] func(state T) uint64

// Keyer is satisfied by a state that can produce a canonical byte
// encoding of itself, suitable for hashing with XXHash.
type Keyer interface {
	Key() []byte
}

// XXHash is the default fast, non-cryptographic Hasher, applied to a
// Keyer's canonical byte encoding.
func XXHash[T Keyer](state T) uint64 {
	return xxhash.Sum64(state.Key())
}

// hashMapTable is the serial backend: a plain Go map keyed directly by
// the comparable state value. No locking (single-threaded only) and no
// eviction — the default backend for single-threaded use.
type hashMapTable[T comparable] struct {
	entries map[T]Entry
}

func newHashMapTable[T comparable]() *hashMapTable[T] {
	return &hashMapTable[T]{entries: make(map[T]Entry)}
}

func (h *hashMapTable[T]) Probe(state T) (Entry, bool) {
	e, ok := h.entries[state]
	return e, ok
}

func (h *hashMapTable[T]) Store(state T, e Entry) {
	h.entries[state] = e
}

// hashedTable is a single-threaded backend keyed by a Hasher-computed
// uint64 instead of the raw state. Selected by WithHasher without
// WithParallelism: useful when state equality/hashing via Go's built-in
// map machinery is more expensive than the game's own fingerprint.
type hashedTable[T any] struct {
	entries map[uint64]Entry
	hash    Hasher[T]
}

func newHashedTable[T any](hash Hasher[T]) *hashedTable[T] {
	return &hashedTable[T]{entries: make(map[uint64]Entry), hash: hash}
}

func (h *hashedTable[T]) Probe(state T) (Entry, bool) {
	e, ok := h.entries[h.hash(state)]
	return e, ok
}

func (h *hashedTable[T]) Store(state T, e Entry) {
	h.entries[h.hash(state)] = e
}
