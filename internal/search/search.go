// Package search implements the two-phase query procedure against a built
// or loaded index: Case-A substitution probes ordered by posting length,
// then Case-B deletion probes, sharing a caller-owned generational
// visited-set.
//
// A process-wide mutable visited-set and generation counter would make
// concurrent search unsafe. This package instead lifts that state into an
// explicit Context owned by the caller, so multiple goroutines can each
// search the same immutable *index.Index concurrently as long as they use
// distinct Contexts.
package search

import (
	"github.com/dcidx/dcidx/internal/delindex"
	"github.com/dcidx/dcidx/internal/index"
	"github.com/dcidx/dcidx/internal/nibble"
	"github.com/dcidx/dcidx/internal/pairindex"
	"github.com/dcidx/dcidx/internal/swar"
)

// K is the maximum Levenshtein distance this engine is built around.
const K = 3

// Context holds the generational visited-set a single logical searcher uses
// across calls to Search. It is not safe for concurrent use by multiple
// goroutines; give each goroutine its own Context against the shared
// *index.Index.
type Context struct {
	visited []uint32
	gen     uint32
}

// NewContext returns a Context pre-sized for capacity keyword ids. A zero or
// small capacity is fine; Search grows the buffer on demand.
func NewContext(capacity int) *Context {
	if capacity < 0 {
		capacity = 0
	}
	return &Context{visited: make([]uint32, capacity)}
}

// ensureCapacity grows the visited buffer to at least n entries, resetting
// the generation counter to 1 on reallocation so stale marks from a
// differently-sized index can never leak through.
func (c *Context) ensureCapacity(n int) {
	if len(c.visited) < n {
		c.visited = make([]uint32, n)
		c.gen = 1
	}
}

// nextGeneration advances the generation counter, wrapping to a freshly
// zeroed buffer and generation 1 if it overflows uint32.
func (c *Context) nextGeneration() uint32 {
	c.gen++
	if c.gen == 0 {
		for i := range c.visited {
			c.visited[i] = 0
		}
		c.gen = 1
	}
	return c.gen
}

// probe is one Case-A candidate slot, annotated with its posting length so
// probes can be visited shortest-first.
type probe struct {
	pair   int
	slot   uint32
	length int
}

// orderProbes returns the 10 Case-A probes for word, sorted ascending by
// posting length with ties broken by ascending pair index. A selection sort
// is used deliberately: with a fixed 10-item input it is simpler and just
// as fast as a general sort.
func orderProbes(idx *index.Index, word []byte) [pairindex.P]probe {
	var probes [pairindex.P]probe
	for p := 0; p < pairindex.P; p++ {
		slot := pairindex.Slot(word, p)
		probes[p] = probe{pair: p, slot: slot, length: idx.Pair().SlotLen(p, slot)}
	}
	for i := 0; i < len(probes)-1; i++ {
		min := i
		for j := i + 1; j < len(probes); j++ {
			if probes[j].length < probes[min].length ||
				(probes[j].length == probes[min].length && probes[j].pair < probes[min].pair) {
				min = j
			}
		}
		probes[i], probes[min] = probes[min], probes[i]
	}
	return probes
}

// ProbeOrder returns the Case-A pair indices for query in the order Search
// would probe them, for tests and diagnostics that need to observe the
// posting-length-ordered scheduling without re-deriving it.
func ProbeOrder(idx *index.Index, query string) []int {
	var w [nibble.Len]byte
	copy(w[:], query)
	probes := orderProbes(idx, w[:])
	order := make([]int, len(probes))
	for i, pr := range probes {
		order[i] = pr.pair
	}
	return order
}

// Search reports whether some keyword in idx is within Levenshtein distance
// K of query. It is the only operation in this package that can fail, and
// the only failure is an invalid query length, surfaced as false.
func Search(ctx *Context, idx *index.Index, query string) bool {
	if len(query) != nibble.Len {
		return false
	}
	ctx.ensureCapacity(idx.N())

	var qWord [nibble.Len]byte
	copy(qWord[:], query)
	qCode := nibble.Encode(qWord)

	if searchCaseA(ctx, idx, qWord[:], qCode) {
		return true
	}
	return searchCaseB(ctx, idx, qWord[:], qCode)
}

// searchCaseA probes the 10 Case-A pair slots shortest-posting-first,
// marking every visited candidate unconditionally since its Hamming test is
// deterministic and independent of which pair found it.
func searchCaseA(ctx *Context, idx *index.Index, word []byte, qCode uint64) bool {
	gen := ctx.nextGeneration()
	probes := orderProbes(idx, word)

	for _, pr := range probes {
		if pr.length == 0 {
			continue
		}
		table := idx.Pair().Table(pr.pair)
		b, e := table.Range(pr.slot)
		for i := b; i < e; i++ {
			id := table.At(i)
			if ctx.visited[id] == gen {
				continue
			}
			ctx.visited[id] = gen
			if swar.HammingNib(qCode, idx.Code(id), nibble.Len) <= K {
				return true
			}
		}
	}
	return false
}

// searchCaseB probes the left-7/right-7 deletion slots for every deletion
// position. Unlike Phase A, a miss is not marked: a different (p, p_w) pair
// for the same keyword id may still be a hit, so marking on miss would
// introduce false negatives.
func searchCaseB(ctx *Context, idx *index.Index, word []byte, qCode uint64) bool {
	gen := ctx.nextGeneration()
	table := idx.Del().Table()

	for p := 0; p < nibble.Len; p++ {
		qdel := nibble.Delete(qCode, p)
		left, right := delindex.Slots(word, p)

		for _, slot := range [2]uint32{left, right} {
			b, e := table.Range(slot)
			for i := b; i < e; i++ {
				posting := table.At(i)
				j := posting.ID()
				if ctx.visited[j] == gen {
					continue
				}
				wdel := nibble.Delete(idx.Code(j), posting.DelPos())
				h := swar.HammingNib(qdel, wdel, nibble.Len-1)
				if 2+h <= K {
					ctx.visited[j] = gen
					return true
				}
			}
		}
	}
	return false
}
