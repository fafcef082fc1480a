package pairindex

import (
	"testing"

	"github.com/dcidx/dcidx/internal/nibble"
)

func word(s string) [nibble.Len]byte {
	var w [nibble.Len]byte
	copy(w[:], s)
	return w
}

func TestBuildCoverageExactlyP(t *testing.T) {
	words := [][nibble.Len]byte{
		word("ABCDEFGHIJABCDE"),
		word("JJJJJJJJJJJJJJJ"),
	}
	idx := Build(words)

	for id := range words {
		count := 0
		for p := 0; p < P; p++ {
			slot := Slot(words[id][:], p)
			b, e := idx.Table(p).Range(slot)
			for i := b; i < e; i++ {
				if idx.Table(p).At(i) == uint32(id) {
					count++
				}
			}
		}
		if count != P {
			t.Fatalf("keyword %d: found in %d pair postings, want %d", id, count, P)
		}
	}
}

func TestSlotDeterministic(t *testing.T) {
	w := word("ABCDEFGHIJABCDE")
	if Slot(w[:], 0) != Slot(w[:], 0) {
		t.Fatalf("Slot must be deterministic")
	}
}

func TestPairTableCoversAllBlocksPairs(t *testing.T) {
	seen := map[[2]int]bool{}
	for _, pr := range PairTable {
		seen[pr] = true
	}
	if len(seen) != P {
		t.Fatalf("expected %d distinct pairs, got %d", P, len(seen))
	}
	for a := 0; a < blocks; a++ {
		for b := a + 1; b < blocks; b++ {
			if !seen[[2]int{a, b}] {
				t.Fatalf("missing pair (%d,%d)", a, b)
			}
		}
	}
}
