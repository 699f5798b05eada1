package solver

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// entryCost approximates the memory an Entry occupies once accounted for
// ristretto's own per-item bookkeeping. It doesn't need to be exact: it
// only drives how generously the cache is sized, and an eviction is
// always correctness-neutral (see Table).
const entryCost = 48

// defaultCacheFraction is the share of system memory the concurrent
// table claims when the caller doesn't pick one explicitly.
const defaultCacheFraction = 0.25

// concurrentTable is the parallel-mode backend: a concurrent,
// memory-bounded cache keyed by a Hasher-computed uint64. It is backed
// by ristretto, whose own admission/eviction policy (an approximation
// of LFU, "TinyLFU") handles bounding memory without a hand-rolled
// sharded lock — ristretto's Get/Set are already safe for concurrent
// use from every worker goroutine.
type concurrentTable[T any] struct {
	cache *ristretto.Cache[uint64, Entry]
	hash  Hasher[T]
}

func newConcurrentTable[T any](hash Hasher[T], fraction float64) (*concurrentTable[T], error) {
	if fraction <= 0 || fraction > 1 {
		fraction = defaultCacheFraction
	}

	total := memory.TotalMemory()
	maxCost := int64(float64(total) * fraction)
	if maxCost <= 0 {
		maxCost = 1 << 20 // 1MB floor if the memory probe fails us
	}
	// ristretto recommends sizing NumCounters around 10x the number of
	// items the cache is expected to hold.
	numCounters := (maxCost / entryCost) * 10

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, Entry]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("solver: creating concurrent transposition cache: %w", err)
	}

	log.Info().
		Uint64("total-system-memory-bytes", total).
		Float64("fraction", fraction).
		Int64("max-cost-bytes", maxCost).
		Int64("num-counters", numCounters).
		Msg("transposition-cache-sized")

	return &concurrentTable[T]{cache: cache, hash: hash}, nil
}

func (c *concurrentTable[T]) Probe(state T) (Entry, bool) {
	return c.cache.Get(c.hash(state))
}

func (c *concurrentTable[T]) Store(state T, e Entry) {
	c.cache.Set(c.hash(state), e, entryCost)
}

// Close releases the cache's background goroutines. Safe to call on a
// table that was never used concurrently.
func (c *concurrentTable[T]) Close() {
	c.cache.Close()
}
