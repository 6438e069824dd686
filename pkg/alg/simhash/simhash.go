// Package simhash provides Charikar similarity hashes and a block index for
// near-duplicate lookup.
//
// A fingerprint is built from per-token weights: for every bit position the
// tokens whose weight has that bit set vote +1 and the rest vote -1. The
// fingerprint bit is set when the vote is non-negative. Documents that share
// most of their tokens end up a small hamming distance apart.
package simhash

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
)

const (
	// DefaultBitWidth is the fingerprint width used when none is configured.
	DefaultBitWidth = 64

	// MaxBitWidth is the widest fingerprint the token weights can fill.
	MaxBitWidth = 2048
)

// ErrInvalidWidth is returned when the requested bit width is outside [1, MaxBitWidth].
var ErrInvalidWidth = fmt.Errorf("%w: simhash: bit width must be in [1, %d]", hashtype.ErrInvalidParameter, MaxBitWidth)

// Simhash is an immutable similarity fingerprint.
type Simhash struct {
	hashtype.Fixed
}

// New fingerprints text split on whitespace.
func New(text string, width int) (*Simhash, error) {
	return NewFromTokens(strings.Fields(text), width)
}

// NewFromTokens fingerprints pre-split tokens. An empty token list yields the
// all-ones fingerprint, since every bit ties at zero.
func NewFromTokens(tokens []string, width int) (*Simhash, error) {
	if width <= 0 || width > MaxBitWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	votes := make([]int, width)

	if width <= wordBits {
		for _, tok := range tokens {
			w := weight64(tok, width)
			for i := range votes {
				votes[i] += vote(w&(1<<i) != 0)
			}
		}
	} else {
		for _, tok := range tokens {
			w := StringWeight(tok, width)
			for i := range votes {
				votes[i] += vote(w.Bit(i) == 1)
			}
		}
	}

	value := new(big.Int)

	for i, v := range votes {
		if v >= 0 {
			value.SetBit(value, i, 1)
		}
	}

	return fromValue(value, width)
}

// FromValue wraps an existing fingerprint value.
func FromValue(value *big.Int, width int) (*Simhash, error) {
	if width <= 0 || width > MaxBitWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	return fromValue(value, width)
}

func fromValue(value *big.Int, width int) (*Simhash, error) {
	f, err := hashtype.NewFixed(hashtype.KindSimhash, width, value)
	if err != nil {
		return nil, err
	}

	return &Simhash{Fixed: f}, nil
}

// Similarity returns the fraction of matching bits. other must be a Simhash of
// the same width.
func (s *Simhash) Similarity(other hashtype.Hash) (float64, error) {
	return hashtype.Similarity(s, other)
}

// Sort orders fingerprints by ascending value. Equal values keep their
// relative order.
func Sort(hashes []*Simhash) {
	slices.SortStableFunc(hashes, func(a, b *Simhash) int {
		return a.Value().Cmp(b.Value())
	})
}

func vote(set bool) int {
	if set {
		return 1
	}

	return -1
}
