// Package delindex implements Case B of the dual-case engine: a single
// CSR table keyed by 7-character halves of the 14-character strings obtained
// by deleting one character from each word. A single insertion-and-deletion
// edit reduces, after aligning the deletions, to a Hamming-1 comparison on
// the remaining 14 characters; since one 7-char half must be shared whenever
// that single differing position falls in the other half, probing both
// halves recovers the match.
package delindex

import (
	"github.com/dcidx/dcidx/internal/csr"
	"github.com/dcidx/dcidx/internal/nibble"
)

const (
	// KB is the Case-B key space: all possible 7-character blocks.
	KB = 10_000_000
	// halfLen is the width, in characters, of each half of the
	// (nibble.Len - 1)-character deleted word.
	halfLen = 7
	// idBits is the width of the keyword-id field in a packed posting.
	idBits = 20
	// posBits is the width of the deletion-position field.
	posBits = 4
	// posMask isolates del_pos from a packed posting.
	posMask = (1 << posBits) - 1
)

// Posting packs a keyword id (20 bits) and a deletion position (4 bits) into
// a single 24-bit value.
type Posting uint32

// Pack builds a Posting from a keyword id and a deletion position.
func Pack(id uint32, delPos int) Posting {
	return Posting((id << posBits) | uint32(delPos)&posMask)
}

// ID returns the packed keyword id.
func (p Posting) ID() uint32 { return uint32(p) >> posBits }

// DelPos returns the packed deletion position.
func (p Posting) DelPos() int { return int(uint32(p) & posMask) }

// Index is the single Case-B CSR table, immutable after Build.
type Index struct {
	table *csr.Table[Posting]
}

// halves splits the 14-char string obtained by deleting w[p] into its left
// and right 7-char keys, returning their KB-space slots.
func halves(w []byte, p int) (left, right uint32) {
	var u [nibble.Len - 1]byte
	copy(u[:p], w[:p])
	copy(u[p:], w[p+1:])
	left = uint32(nibble.Base10(u[:halfLen]))
	right = uint32(nibble.Base10(u[halfLen:]))
	return left, right
}

// Build materializes the Case-B CSR table. Every word contributes
// 2*nibble.Len postings: one into the left-7 slot and one into the right-7
// slot, for every deletion position p in [0, Len).
func Build(words [][nibble.Len]byte) *Index {
	entries := make([]csr.Entry[Posting], 0, len(words)*2*nibble.Len)
	for id, w := range words {
		for p := 0; p < nibble.Len; p++ {
			left, right := halves(w[:], p)
			posting := Pack(uint32(id), p)
			entries = append(entries, csr.Entry[Posting]{Slot: left, Payload: posting})
			entries = append(entries, csr.Entry[Posting]{Slot: right, Payload: posting})
		}
	}
	return &Index{table: csr.Build(KB, entries)}
}

// FromTable wraps an already-built CSR table (used by the deserializer).
func FromTable(table *csr.Table[Posting]) *Index {
	return &Index{table: table}
}

// Table exposes the underlying CSR table, e.g. for serialization.
func (idx *Index) Table() *csr.Table[Posting] { return idx.table }

// Slots returns the left-7 and right-7 KB-space slots for deleting character
// p from the raw word bytes w.
func Slots(w []byte, p int) (left, right uint32) { return halves(w, p) }

// Candidates appends every posting under slot to dst.
func (idx *Index) Candidates(slot uint32, dst []Posting) []Posting {
	b, e := idx.table.Range(slot)
	for i := b; i < e; i++ {
		dst = append(dst, idx.table.At(i))
	}
	return dst
}
