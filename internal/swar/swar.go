// Package swar computes Hamming distance between nibble codes using a
// collapse-then-popcount bit trick (SIMD-within-a-register).
package swar

import "math/bits"

// allNibblesMask returns a mask with the low n nibbles' bit 0 set, used to
// isolate one collapsed difference bit per nibble.
func allNibblesMask(n uint) uint64 {
	var m uint64
	for i := uint(0); i < n; i++ {
		m |= uint64(1) << (4 * i)
	}
	return m
}

// HammingNib returns the per-nibble Hamming distance between a and b over the
// low `nibbles` 4-bit groups (15 for 60-bit word codes, 14 for 56-bit
// single-deletion codes). Upper nibbles beyond `nibbles` are assumed zero by
// construction, so a mask covering exactly `nibbles` low groups is sufficient.
func HammingNib(a, b uint64, nibbles uint) int {
	x := a ^ b
	x |= x >> 1
	x |= x >> 2
	x &= allNibblesMask(nibbles)
	return bits.OnesCount64(x)
}
