// Package hashtype provides the fixed-width hash value shared by every hash
// kind in this module.
//
// A hash is an unsigned integer of a declared bit width tagged with its kind.
// Hashes of the same kind and width can be compared by hamming distance and
// similarity; any two hashes can be ordered by value.
package hashtype

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/internal/bitutil"
)

// Kind identifies the concrete hash type behind a [Hash].
type Kind int

// Hash kinds.
const (
	KindUnknown Kind = iota
	KindSimhash
	KindBloom
	KindGeohash
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSimhash:
		return "simhash"
	case KindBloom:
		return "bloom"
	case KindGeohash:
		return "geohash"
	case KindUnknown:
		return "unknown"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	// ErrInvalidParameter is returned when a constructor receives an out-of-range
	// capacity, rate, width, precision or coordinate.
	ErrInvalidParameter = errors.New("hashtype: invalid parameter")

	// ErrTypeMismatch is returned when comparing hashes of different kinds.
	ErrTypeMismatch = errors.New("hashtype: hashes must be of the same kind")

	// ErrSizeMismatch is returned when comparing hashes of different bit widths.
	ErrSizeMismatch = errors.New("hashtype: hashes must be of equal bit width")

	// ErrDecode is returned when an encoded hash contains characters outside
	// its alphabet.
	ErrDecode = errors.New("hashtype: malformed hash")
)

// Hash is implemented by every hash kind.
type Hash interface {
	Kind() Kind
	BitWidth() int
	// Value returns the hash as an unsigned integer. Callers must not mutate it.
	Value() *big.Int
}

// HammingDistance counts the differing bits within the low a.BitWidth() bits
// of a and b.
func HammingDistance(a, b Hash) int {
	return bitutil.XorPopCount(a.Value(), b.Value(), a.BitWidth())
}

// Similarity returns (width - hamming) / width in [0, 1]. It fails with
// [ErrTypeMismatch] when the kinds differ and [ErrSizeMismatch] when the widths
// differ.
func Similarity(a, b Hash) (float64, error) {
	if a.Kind() != b.Kind() {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, a.Kind(), b.Kind())
	}

	if a.BitWidth() != b.BitWidth() {
		return 0, fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, a.BitWidth(), b.BitWidth())
	}

	width := a.BitWidth()
	if width == 0 {
		return 1, nil
	}

	return float64(width-HammingDistance(a, b)) / float64(width), nil
}

// Compare orders hashes by value. It returns -1, 0 or +1.
func Compare(a, b Hash) int {
	return a.Value().Cmp(b.Value())
}

// Equal reports whether a and b carry the same value. Width and kind are not
// considered, so a 32-bit and a 64-bit hash of value 7 are equal.
func Equal(a, b Hash) bool {
	return Compare(a, b) == 0
}

// Hex returns the value as lowercase hexadecimal with a 0x prefix.
func Hex(h Hash) string {
	return "0x" + h.Value().Text(16)
}

// Fixed is an immutable fixed-width hash value. Concrete hash types embed it
// to inherit comparison and formatting.
type Fixed struct {
	kind  Kind
	width int
	value *big.Int
}

// NewFixed validates that value fits in width bits and returns the hash.
func NewFixed(kind Kind, width int, value *big.Int) (Fixed, error) {
	if width <= 0 {
		return Fixed{}, fmt.Errorf("%w: bit width must be positive, got %d", ErrInvalidParameter, width)
	}

	if value.Sign() < 0 || value.BitLen() > width {
		return Fixed{}, fmt.Errorf("%w: value does not fit in %d bits", ErrInvalidParameter, width)
	}

	return Fixed{kind: kind, width: width, value: new(big.Int).Set(value)}, nil
}

// Kind returns the hash kind.
func (f Fixed) Kind() Kind { return f.kind }

// BitWidth returns the declared width in bits.
func (f Fixed) BitWidth() int { return f.width }

// Value returns the hash value.
func (f Fixed) Value() *big.Int {
	if f.value == nil {
		return new(big.Int)
	}

	return f.value
}

// HammingDistance counts the bits that differ from other within this hash's width.
func (f Fixed) HammingDistance(other Hash) int { return HammingDistance(f, other) }

// Similarity compares against another hash of the same kind and width.
func (f Fixed) Similarity(other Hash) (float64, error) { return Similarity(f, other) }

// Compare orders by value.
func (f Fixed) Compare(other Hash) int { return Compare(f, other) }

// Equal reports value equality.
func (f Fixed) Equal(other Hash) bool { return Equal(f, other) }

// Hex returns the 0x-prefixed hexadecimal value.
func (f Fixed) Hex() string { return Hex(f) }

// Uint64 returns the low 64 bits of the value.
func (f Fixed) Uint64() uint64 { return f.Value().Uint64() }

// String returns the value in decimal.
func (f Fixed) String() string { return f.Value().String() }
