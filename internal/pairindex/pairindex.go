// Package pairindex implements Case A of the dual-case engine: ten
// substitution-tolerant CSR tables keyed by unordered pairs of 3-character
// blocks. By pigeonhole, any word within Hamming distance k=3 of a query
// must agree with it on at least two of the five 3-char blocks, i.e. on both
// blocks of some pair, so probing all ten pair slots is complete for Case A.
package pairindex

import (
	"github.com/dcidx/dcidx/internal/csr"
	"github.com/dcidx/dcidx/internal/nibble"
)

const (
	// KA is the Case-A key space per pair table.
	KA = 1_000_000
	// P is the number of unordered block pairs, C(5,2).
	P = 10
	// blocks is the number of 3-char blocks the 15-char word is split into.
	blocks = 5
	// blockLen is the width of one block in characters.
	blockLen = 3
)

// PairTable holds the fixed (alpha, beta) block indices for pair p.
var PairTable = [P][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4},
	{1, 2}, {1, 3}, {1, 4},
	{2, 3}, {2, 4},
	{3, 4},
}

// Index is the ten-table Case-A pair index, built once and immutable after.
type Index struct {
	tables [P]*csr.Table[uint32]
}

// Slot computes the KA-space slot a word maps to for pair p, given the raw
// L-byte word.
func Slot(word []byte, p int) uint32 {
	alpha, beta := PairTable[p][0], PairTable[p][1]
	var key [2 * blockLen]byte
	copy(key[:blockLen], word[alpha*blockLen:alpha*blockLen+blockLen])
	copy(key[blockLen:], word[beta*blockLen:beta*blockLen+blockLen])
	return uint32(nibble.Base10(key[:]))
}

// Build materializes all ten CSR tables from the given words, keyed by
// insertion-order keyword id. Every word contributes exactly P postings.
func Build(words [][nibble.Len]byte) *Index {
	var idx Index
	for p := 0; p < P; p++ {
		entries := make([]csr.Entry[uint32], len(words))
		for id, w := range words {
			entries[id] = csr.Entry[uint32]{Slot: Slot(w[:], p), Payload: uint32(id)}
		}
		idx.tables[p] = csr.Build(KA, entries)
	}
	return &idx
}

// FromTables wraps ten already-built CSR tables (used by the deserializer,
// which rebuilds tables from stored counts/payload rather than re-inserting).
func FromTables(tables [P]*csr.Table[uint32]) *Index {
	return &Index{tables: tables}
}

// Table returns the CSR table for pair p.
func (idx *Index) Table(p int) *csr.Table[uint32] { return idx.tables[p] }

// SlotLen returns the posting count of the given slot in pair p's table,
// used by the search engine to order probes by posting length.
func (idx *Index) SlotLen(p int, slot uint32) int {
	return idx.tables[p].Len(slot)
}

// Candidates appends every keyword id posted under the given slot of pair p's table to dst.
func (idx *Index) Candidates(p int, slot uint32, dst []uint32) []uint32 {
	b, e := idx.tables[p].Range(slot)
	for i := b; i < e; i++ {
		dst = append(dst, idx.tables[p].At(i))
	}
	return dst
}
