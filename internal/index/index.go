// Package index ties the nibble codec, the Case-A pair index, and the
// Case-B deletion index into a single build/search artifact, and implements
// its byte-exact serialized form.
package index

import (
	"fmt"

	"github.com/dcidx/dcidx/internal/delindex"
	"github.com/dcidx/dcidx/internal/nibble"
	"github.com/dcidx/dcidx/internal/pairindex"
)

// MaxID is the largest keyword id the 20-bit id field can hold.
const MaxID = 1<<20 - 1

// state is the builder's two-state lifecycle: Collecting accepts inserts,
// Finalized is immutable.
type state int

const (
	collecting state = iota
	finalized
)

// rawWordLen is the on-disk width of one raw word: L symbol bytes plus a
// trailing NUL.
const rawWordLen = nibble.Len + 1

// Index is the top-level artifact: it owns the raw words, their nibble
// codes, and the two CSR sub-indices. It is immutable once Finalize or
// Deserialize has produced it.
type Index struct {
	state state
	raw   [][rawWordLen]byte
	codes []uint64
	pair  *pairindex.Index
	del   *delindex.Index
}

// Create returns a new index in the Collecting state with the given initial
// capacity, floored at 1024 and grown by the usual doubling append
// discipline as inserts accumulate.
func Create(capacity int) *Index {
	if capacity < 1024 {
		capacity = 1024
	}
	return &Index{
		raw:   make([][rawWordLen]byte, 0, capacity),
		codes: make([]uint64, 0, capacity),
	}
}

// Insert appends a word. Empty input is silently ignored; the caller (a
// line-oriented reader) is responsible for length filtering. Insert after
// Finalize is caller misuse: it is silently accepted and
// leaves the derived pair/deletion indices stale rather than rejected.
func (idx *Index) Insert(word string) {
	if len(word) == 0 {
		return
	}
	var raw [rawWordLen]byte
	copy(raw[:nibble.Len], word)
	var w [nibble.Len]byte
	copy(w[:], raw[:nibble.Len])
	idx.raw = append(idx.raw, raw)
	idx.codes = append(idx.codes, nibble.Encode(w))
}

// Finalize transitions the index to Finalized, building the pair index then
// the deletion index over the accumulated words.
func (idx *Index) Finalize() error {
	if len(idx.raw) > MaxID+1 {
		return fmt.Errorf("index: %d keywords exceeds max id space %d", len(idx.raw), MaxID+1)
	}
	words := make([][nibble.Len]byte, len(idx.raw))
	for i, r := range idx.raw {
		copy(words[i][:], r[:nibble.Len])
	}
	idx.pair = pairindex.Build(words)
	idx.del = delindex.Build(words)
	idx.state = finalized
	return nil
}

// N returns the number of keywords in the index.
func (idx *Index) N() int { return len(idx.raw) }

// Word returns the L-byte raw word for id, without its NUL terminator.
func (idx *Index) Word(id uint32) [nibble.Len]byte {
	var w [nibble.Len]byte
	copy(w[:], idx.raw[id][:nibble.Len])
	return w
}

// Code returns the nibble code for id.
func (idx *Index) Code(id uint32) uint64 { return idx.codes[id] }

// Pair returns the Case-A pair index. Valid once Finalized.
func (idx *Index) Pair() *pairindex.Index { return idx.pair }

// Del returns the Case-B deletion index. Valid once Finalized.
func (idx *Index) Del() *delindex.Index { return idx.del }
