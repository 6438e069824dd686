package geohash

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
)

// base32Alphabet is the geohash digit set; it skips a, i, l and o.
const base32Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// base32Index maps a character to its digit, or -1 outside the alphabet.
var base32Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}

	for i := range len(base32Alphabet) {
		idx[base32Alphabet[i]] = int8(i)
	}

	return idx
}()

// spread moves bit i of a 3-bit value to bit 2i.
var spread = [8]int{0, 1, 4, 5, 16, 17, 20, 21}

// interleave packs the two fixed-point coordinates five bits per character,
// most significant character first. The coordinate with more bits supplies
// three bits of the final character; the two then alternate.
func interleave(lat, lon *big.Int, latBits, lonBits int) string {
	chars := (latBits + lonBits) / bitsPerChar

	a, b := new(big.Int).Set(lat), new(big.Int).Set(lon)
	if latBits < lonBits {
		a, b = b, a
	}

	out := make([]byte, chars)

	for i := chars - 1; i >= 0; i-- {
		digit := (spread[lowBits(a, 3)] + spread[lowBits(b, 2)]<<1) & 0x1f
		out[i] = base32Alphabet[digit]

		a, b = b.Rsh(b, 2), a.Rsh(a, 3)
	}

	return string(out)
}

// lowBits returns the low n bits of x.
func lowBits(x *big.Int, n int) int {
	v := 0
	for i := range n {
		v |= int(x.Bit(i)) << i
	}

	return v
}

// deinterleave reverses interleave, returning the fixed-point coordinates and
// their bit lengths.
func deinterleave(hash string) (lat, lon *big.Int, latBits, lonBits int, err error) {
	lat, lon = new(big.Int), new(big.Int)

	for i := range len(hash) {
		digit := base32Index[hash[i]]
		if digit < 0 {
			return nil, nil, 0, 0, fmt.Errorf("%w: geohash: character %q at %d", hashtype.ErrDecode, hash[i], i)
		}

		// Even characters give longitude three bits, odd ones give latitude three.
		if i&1 == 1 {
			takeBits(lat, lon, int(digit))
			latBits += 3
			lonBits += 2
		} else {
			takeBits(lon, lat, int(digit))
			lonBits += 3
			latBits += 2
		}
	}

	return lat, lon, latBits, lonBits, nil
}

// takeBits appends bits 4, 2 and 0 of t to x and bits 3 and 1 to y.
func takeBits(x, y *big.Int, t int) {
	x.Lsh(x, 3)
	y.Lsh(y, 2)

	bitsX := (t>>2)&4 | (t>>1)&2 | t&1
	bitsY := (t>>2)&2 | (t>>1)&1

	x.Or(x, big.NewInt(int64(bitsX)))
	y.Or(y, big.NewInt(int64(bitsY)))
}

// decodeCorner returns the exact south-west corner of the cell named by hash,
// in degrees.
func decodeCorner(hash string) (latitude, longitude decimal.Decimal, err error) {
	lat, lon, latBits, lonBits, err := deinterleave(hash)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}

	return toDegrees(lat, latBits, halfTurn), toDegrees(lon, lonBits, fullTurn), nil
}

// toDegrees recenters the fixed-point value v around zero and scales it to
// degrees: turn * (2v - 2^bits) / 2^(bits+1).
func toDegrees(v *big.Int, bits int, turn decimal.Decimal) decimal.Decimal {
	bits++

	num := new(big.Int).Lsh(v, 1)
	num.Sub(num, new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
	num.Mul(num, turn.Coefficient())

	// x / 2^n == x * 5^n / 10^n.
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(bits)), nil)

	return decimal.NewFromBigInt(num.Mul(num, five), turn.Exponent()-int32(bits))
}
