package delindex

import (
	"testing"

	"github.com/dcidx/dcidx/internal/nibble"
)

func word(s string) [nibble.Len]byte {
	var w [nibble.Len]byte
	copy(w[:], s)
	return w
}

func TestPostingPackUnpack(t *testing.T) {
	for _, id := range []uint32{0, 1, 5, 1<<20 - 1} {
		for p := 0; p < nibble.Len; p++ {
			post := Pack(id, p)
			if post.ID() != id {
				t.Fatalf("ID: got %d want %d", post.ID(), id)
			}
			if post.DelPos() != p {
				t.Fatalf("DelPos: got %d want %d", post.DelPos(), p)
			}
		}
	}
}

func TestBuildCoverageExactly2L(t *testing.T) {
	words := [][nibble.Len]byte{
		word("ABCDEFGHIJABCDE"),
		word("JJJJJJJJJJJJJJJ"),
	}
	idx := Build(words)

	for id := range words {
		count := 0
		positions := map[int]int{}
		for p := 0; p < nibble.Len; p++ {
			left, right := Slots(words[id][:], p)
			slots := []uint32{left}
			if right != left {
				// A word whose halves coincide has both postings in one slot.
				slots = append(slots, right)
			}
			for _, slot := range slots {
				b, e := idx.Table().Range(slot)
				for i := b; i < e; i++ {
					post := idx.Table().At(i)
					if post.ID() == uint32(id) && post.DelPos() == p {
						count++
						positions[p]++
					}
				}
			}
		}
		if count != 2*nibble.Len {
			t.Fatalf("keyword %d: found %d postings, want %d", id, count, 2*nibble.Len)
		}
		for p := 0; p < nibble.Len; p++ {
			if positions[p] != 2 {
				t.Fatalf("keyword %d, del_pos %d: found %d postings, want 2", id, p, positions[p])
			}
		}
	}
}

func TestSharedHalfRecoversExactMatch(t *testing.T) {
	// A single rotation (delete position 0, insert at end): deleting the last
	// position of q and position 0 of w leaves the same 14 characters, so the
	// right-7 halves are shared.
	w := word("ABCDEFGHIJABCDE")
	idx := Build([][nibble.Len]byte{w})

	q := []byte("BCDEFGHIJABCDEA") // rotation of w
	_, qRight := Slots(q, nibble.Len-1)
	_, wRight := Slots(w[:], 0)
	if qRight != wRight {
		t.Fatalf("expected shared right-7 slot, got q=%d w=%d", qRight, wRight)
	}

	b, e := idx.Table().Range(wRight)
	found := false
	for i := b; i < e; i++ {
		if idx.Table().At(i).ID() == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected keyword 0 posted under shared right-7 slot")
	}
}
