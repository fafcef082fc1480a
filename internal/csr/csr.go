// Package csr implements a generic compressed-sparse-row posting table: a
// dense offsets array delimiting runs of a payload array, keyed by a dense
// slot id. It is the storage primitive shared by the pair index and the
// deletion index.
package csr

// Entry is one (slot, payload) pair fed to Build.
type Entry[T any] struct {
	Slot    uint32
	Payload T
}

// Table is an immutable CSR posting table over nSlots slots.
//
// offsets has length nSlots+1; Range(s) returns offsets[s], offsets[s+1].
// counts is retained (not just offsets) so callers can later choose a 16- or
// 32-bit on-disk width for the count array without recomputing it.
type Table[T any] struct {
	nSlots  int
	offsets []uint32
	counts  []uint32
	payload []T
}

// Build constructs a Table from a two-pass count-then-scatter over entries:
// a cheap counting pass sizes a single bulk allocation, then a second pass
// scatters each entry directly into its final slot.
func Build[T any](nSlots int, entries []Entry[T]) *Table[T] {
	counts := make([]uint32, nSlots)
	for _, e := range entries {
		counts[e.Slot]++
	}

	offsets := make([]uint32, nSlots+1)
	for s := 0; s < nSlots; s++ {
		offsets[s+1] = offsets[s] + counts[s]
	}

	payload := make([]T, offsets[nSlots])
	cursor := make([]uint32, nSlots)
	copy(cursor, offsets[:nSlots])
	for _, e := range entries {
		payload[cursor[e.Slot]] = e.Payload
		cursor[e.Slot]++
	}

	return &Table[T]{
		nSlots:  nSlots,
		offsets: offsets,
		counts:  counts,
		payload: payload,
	}
}

// NSlots returns the number of slots the table was built over.
func (t *Table[T]) NSlots() int { return t.nSlots }

// Range returns the [begin, end) span of payload indices for slot s.
func (t *Table[T]) Range(slot uint32) (begin, end uint32) {
	return t.offsets[slot], t.offsets[slot+1]
}

// Len returns the posting count for slot s, i.e. end-begin.
func (t *Table[T]) Len(slot uint32) int {
	b, e := t.Range(slot)
	return int(e - b)
}

// At returns the i'th payload entry in [begin, end).
func (t *Table[T]) At(i uint32) T { return t.payload[i] }

// Payload exposes the full backing payload slice, used by the serializer.
func (t *Table[T]) Payload() []T { return t.payload }

// Counts exposes the per-slot counts, used by the serializer to pick a
// 16-/32-bit on-disk width.
func (t *Table[T]) Counts() []uint32 { return t.counts }

// Offsets exposes the prefix-summed offsets, used by the serializer's total
// payload length cross-check.
func (t *Table[T]) Offsets() []uint32 { return t.offsets }

// FromCounts reconstructs a Table purely from a counts array and a payload
// slice already in scattered order (the on-disk format stores counts and a
// flat payload, not offsets; offsets are cheap to rebuild by prefix sum).
func FromCounts[T any](counts []uint32, payload []T) *Table[T] {
	nSlots := len(counts)
	offsets := make([]uint32, nSlots+1)
	for s := 0; s < nSlots; s++ {
		offsets[s+1] = offsets[s] + counts[s]
	}
	return &Table[T]{
		nSlots:  nSlots,
		offsets: offsets,
		counts:  counts,
		payload: payload,
	}
}
