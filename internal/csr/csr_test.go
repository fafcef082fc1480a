package csr

import "testing"

func TestBuildRangeConsistency(t *testing.T) {
	entries := []Entry[int]{
		{Slot: 0, Payload: 10},
		{Slot: 2, Payload: 20},
		{Slot: 0, Payload: 11},
		{Slot: 1, Payload: 30},
		{Slot: 2, Payload: 21},
		{Slot: 2, Payload: 22},
	}
	tbl := Build(3, entries)

	if got := tbl.Offsets()[tbl.NSlots()]; int(got) != len(entries) {
		t.Fatalf("offsets[slots] = %d, want %d", got, len(entries))
	}

	wantLens := map[uint32]int{0: 2, 1: 1, 2: 3}
	for slot, want := range wantLens {
		if got := tbl.Len(slot); got != want {
			t.Fatalf("slot %d: len = %d want %d", slot, got, want)
		}
	}

	b, e := tbl.Range(0)
	seen := map[int]bool{}
	for i := b; i < e; i++ {
		seen[tbl.At(i)] = true
	}
	if !seen[10] || !seen[11] {
		t.Fatalf("slot 0 postings missing expected payloads: %v", seen)
	}
}

func TestBuildEmptySlotsHaveZeroRange(t *testing.T) {
	tbl := Build[int](5, nil)
	for s := uint32(0); s < 5; s++ {
		b, e := tbl.Range(s)
		if b != e {
			t.Fatalf("slot %d expected empty range, got [%d,%d)", s, b, e)
		}
	}
}

func TestFromCountsRoundTrip(t *testing.T) {
	entries := []Entry[int]{
		{Slot: 1, Payload: 1},
		{Slot: 1, Payload: 2},
		{Slot: 3, Payload: 3},
	}
	built := Build(4, entries)

	restored := FromCounts(built.Counts(), built.Payload())
	for s := uint32(0); s < 4; s++ {
		b1, e1 := built.Range(s)
		b2, e2 := restored.Range(s)
		if b1 != b2 || e1 != e2 {
			t.Fatalf("slot %d range mismatch: built=[%d,%d) restored=[%d,%d)", s, b1, e1, b2, e2)
		}
	}
}
