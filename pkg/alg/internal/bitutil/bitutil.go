// Package bitutil provides arbitrary-width bit helpers shared by the hash
// types (Bloom filter, Simhash, Geohash).
//
// Values wider than 64 bits are carried as [big.Int]. All helpers treat their
// inputs as unsigned and never mutate them.
package bitutil

import (
	"math/big"
	"math/bits"
)

// Mask returns 2^width - 1. A non-positive width yields zero.
func Mask(width int) *big.Int {
	if width <= 0 {
		return new(big.Int)
	}

	m := new(big.Int).Lsh(big.NewInt(1), uint(width))

	return m.Sub(m, big.NewInt(1))
}

// PopCount returns the number of set bits in x. Negative values are counted
// by absolute value.
func PopCount(x *big.Int) int {
	total := 0
	for _, w := range x.Bits() {
		total += bits.OnesCount(uint(w))
	}

	return total
}

// XorPopCount returns the number of differing bits within the low width bits
// of a and b.
func XorPopCount(a, b *big.Int, width int) int {
	x := new(big.Int).Xor(a, b)

	return PopCount(x.And(x, Mask(width)))
}

// Extract returns bits [lo, hi) of v shifted down to bit 0.
func Extract(v *big.Int, lo, hi int) *big.Int {
	out := new(big.Int).Rsh(v, uint(lo))

	return out.And(out, Mask(hi-lo))
}

// Boundaries splits width bits into n contiguous ranges of near-equal size.
// The returned slice has n+1 entries; range i is [b[i], b[i+1]). The final
// boundary is always width so the last range absorbs any remainder.
func Boundaries(width, n int) []int {
	b := make([]int, n+1)
	for i := range n {
		b[i] = width * i / n
	}

	b[n] = width

	return b
}

// FromLittleEndian interprets buf as a little-endian bit vector, where bit p
// lives in byte p/8 at position p%8, and returns its integer value.
func FromLittleEndian(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}

	return new(big.Int).SetBytes(be)
}
