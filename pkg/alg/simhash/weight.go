package simhash

import (
	"math/big"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/internal/bitutil"
)

const (
	// weightMultiplier is the rolling multiplier applied per character.
	weightMultiplier = 1000003

	// weightSeedShift is the left shift applied to the first character.
	weightSeedShift = 7

	// wordBits is the widest fingerprint handled with machine words.
	wordBits = 64
)

var bigMultiplier = big.NewInt(weightMultiplier)

// StringWeight returns the rolling hash of token masked to width bits:
//
//	x = token[0] << 7
//	x = ((x * 1000003) ^ c) & mask   for every character c
//	x ^= len(token)
//
// A result equal to the mask is remapped to mask - 1. The empty token weighs 0.
func StringWeight(token string, width int) *big.Int {
	if token == "" {
		return new(big.Int)
	}

	first, _ := utf8.DecodeRuneInString(token)
	mask := bitutil.Mask(width)
	x := new(big.Int).Lsh(big.NewInt(int64(first)), weightSeedShift)
	c := new(big.Int)

	for _, r := range token {
		x.Mul(x, bigMultiplier)
		x.Xor(x, c.SetInt64(int64(r)))
		x.And(x, mask)
	}

	x.Xor(x, c.SetInt64(int64(utf8.RuneCountInString(token))))

	if x.Cmp(mask) == 0 {
		x.Sub(x, big.NewInt(1))
	}

	return x
}

// weight64 is StringWeight for widths up to 64 bits. Multiplication wraps
// modulo 2^64, which agrees with the masked result for any narrower width.
func weight64(token string, width int) uint64 {
	if token == "" {
		return 0
	}

	mask := ^uint64(0)
	if width < wordBits {
		mask = 1<<width - 1
	}

	first, _ := utf8.DecodeRuneInString(token)
	x := uint64(first) << weightSeedShift

	for _, r := range token {
		x = (x*weightMultiplier ^ uint64(r)) & mask
	}

	x ^= uint64(utf8.RuneCountInString(token))

	if x == mask {
		x--
	}

	return x
}
