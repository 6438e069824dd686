// Package bloom provides a space-efficient probabilistic set membership filter.
//
// A Bloom filter answers "definitely not in set" or "possibly in set" with a
// tunable false-positive rate. Items can be added but never removed.
//
// Bit positions are taken from the SHA-1 digest of the item: the hex digest is
// chopped into 20-bit slices (five hex digits) and each slice is reduced modulo
// the filter width. Every 160-bit digest yields eight slices; when more are
// needed the running digest is extended with the counters "0", "1", ... and
// the new digests are appended.
package bloom

import (
	"crypto/sha1" //nolint:gosec // Positions only need spread, not collision resistance.
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"sync"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/internal/bitutil"
)

const (
	// bitsPerByte is the number of bits in each byte of the bit array.
	bitsPerByte = 8

	// sliceHexDigits is the number of hex digits (20 bits) per hash slice.
	sliceHexDigits = 5

	// slicesPerDigest is the number of slices one SHA-1 hex digest provides.
	slicesPerDigest = 8
)

const (
	// DefaultCapacity is the expected number of items when none is configured.
	DefaultCapacity = 3000

	// DefaultFalsePositiveRate is the target false-positive rate when none is configured.
	DefaultFalsePositiveRate = 0.01

	// MaxBits caps the bit array at 2 GiB.
	MaxBits = 1 << 34
)

var (
	// ErrInvalidCapacity is returned when capacity is not positive.
	ErrInvalidCapacity = fmt.Errorf("%w: bloom: capacity must be positive", hashtype.ErrInvalidParameter)

	// ErrInvalidFP is returned when fp is not in the open interval (0, 1).
	ErrInvalidFP = fmt.Errorf("%w: bloom: fp must be in the open interval (0, 1)", hashtype.ErrInvalidParameter)

	// ErrTooLarge is returned when capacity and fp call for more than MaxBits bits.
	ErrTooLarge = fmt.Errorf("%w: bloom: filter would exceed %d bits", hashtype.ErrInvalidParameter, MaxBits)
)

// Filter is a thread-safe Bloom filter.
type Filter struct {
	mu    sync.RWMutex
	bits  []byte
	m     int // Total bits.
	k     int // Number of hash functions.
	count int // Number of Add calls.
}

// OptimalParameters returns the bit width m and hash function count k for a
// filter expecting capacity items at false-positive rate fp:
//
//	m = ceil(capacity * ln(fp) / ln(1 / 2^ln2))
//	k = ceil(ln2 * m / capacity)
func OptimalParameters(capacity int, fp float64) (m, k int, err error) {
	if capacity <= 0 {
		return 0, 0, ErrInvalidCapacity
	}

	// Written as a negated range check so NaN is rejected too.
	if !(fp > 0 && fp < 1) {
		return 0, 0, ErrInvalidFP
	}

	numerator := float64(capacity) * math.Log(fp)
	mf := math.Ceil(numerator / math.Log(1/math.Pow(2, math.Ln2)))

	// Checked in float64 so an out-of-range m never reaches the int conversion.
	if !(mf >= 1 && mf <= MaxBits) {
		return 0, 0, fmt.Errorf("%w: capacity %d at fp %g needs %g bits", ErrTooLarge, capacity, fp, mf)
	}

	m = int(mf)
	k = int(math.Ceil(math.Ln2 * mf / float64(capacity)))

	return m, max(k, 1), nil
}

// NewWithEstimates creates a Bloom filter sized for capacity expected items at
// a false-positive rate of fp, then adds each seed item in order.
func NewWithEstimates(capacity int, fp float64, seed ...string) (*Filter, error) {
	m, k, err := OptimalParameters(capacity, fp)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		bits: make([]byte, (m+bitsPerByte-1)/bitsPerByte),
		m:    m,
		k:    k,
	}

	f.AddBulk(seed)

	return f, nil
}

// BitCount returns the size of the bit array in bits.
func (f *Filter) BitCount() int {
	return f.m
}

// HashCount returns the number of hash functions used by the filter.
func (f *Filter) HashCount() int {
	return f.k
}

// SizeBytes returns the memory held by the bit array.
func (f *Filter) SizeBytes() int {
	return len(f.bits)
}

// Add inserts item into the filter.
func (f *Filter) Add(item string) {
	pos := positions(item, f.m, f.k)

	f.mu.Lock()
	setBits(f.bits, pos)

	f.count++
	f.mu.Unlock()
}

// Test reports whether item is possibly in the filter. A return value of false
// guarantees the item was never added.
func (f *Filter) Test(item string) bool {
	pos := positions(item, f.m, f.k)

	f.mu.RLock()
	defer f.mu.RUnlock()

	return testBits(f.bits, pos)
}

// TestAndAdd tests for membership and then adds the item. It returns true if
// the item was possibly already present before this call.
func (f *Filter) TestAndAdd(item string) bool {
	pos := positions(item, f.m, f.k)

	f.mu.Lock()
	defer f.mu.Unlock()

	present := testBits(f.bits, pos)
	setBits(f.bits, pos)

	f.count++

	return present
}

// AddBulk inserts multiple items into the filter.
func (f *Filter) AddBulk(items []string) {
	if len(items) == 0 {
		return
	}

	f.mu.Lock()
	for _, item := range items {
		setBits(f.bits, positions(item, f.m, f.k))

		f.count++
	}
	f.mu.Unlock()
}

// TestBulk tests multiple items for membership. Returns a bool slice of the
// same length as items, where each entry indicates possible presence.
func (f *Filter) TestBulk(items []string) []bool {
	if len(items) == 0 {
		return nil
	}

	results := make([]bool, len(items))

	f.mu.RLock()

	for idx, item := range items {
		results[idx] = testBits(f.bits, positions(item, f.m, f.k))
	}

	f.mu.RUnlock()

	return results
}

// EstimatedCount returns the number of add operations performed. Repeated
// items are counted every time.
func (f *Filter) EstimatedCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.count
}

// FillRatio returns the fraction of bits that are set, in the range [0, 1].
func (f *Filter) FillRatio() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	total := 0
	for _, b := range f.bits {
		total += bits.OnesCount8(b)
	}

	return float64(total) / float64(f.m)
}

// Kind implements [hashtype.Hash].
func (f *Filter) Kind() hashtype.Kind { return hashtype.KindBloom }

// BitWidth implements [hashtype.Hash]; it equals [Filter.BitCount].
func (f *Filter) BitWidth() int { return f.m }

// Value returns a snapshot of the bit array as an integer, bit p of the
// integer being bit position p of the filter.
func (f *Filter) Value() *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return bitutil.FromLittleEndian(f.bits)
}

// Hex returns the bit array as 0x-prefixed lowercase hexadecimal.
func (f *Filter) Hex() string { return hashtype.Hex(f) }

// String returns the bit array value in decimal.
func (f *Filter) String() string { return f.Value().String() }

// Similarity compares two filters of the same width by the fraction of
// matching bits.
func (f *Filter) Similarity(other hashtype.Hash) (float64, error) {
	return hashtype.Similarity(f, other)
}

// setBits sets the given bit positions in the array.
func setBits(arr []byte, pos []int) {
	for _, p := range pos {
		arr[p/bitsPerByte] |= 1 << (p % bitsPerByte)
	}
}

// testBits returns true if all given bit positions are set.
func testBits(arr []byte, pos []int) bool {
	for _, p := range pos {
		if arr[p/bitsPerByte]&(1<<(p%bitsPerByte)) == 0 {
			return false
		}
	}

	return true
}

// positions derives k bit positions in [0, m) from the SHA-1 hex digest of item.
func positions(item string, m, k int) []int {
	h := sha1.New() //nolint:gosec // See import.
	_, _ = h.Write([]byte(item))

	digits := make([]byte, 0, (k/slicesPerDigest+1)*hex.EncodedLen(sha1.Size))
	digits = hex.AppendEncode(digits, h.Sum(nil))

	for i := range k / slicesPerDigest {
		_, _ = h.Write([]byte(strconv.Itoa(i)))
		digits = hex.AppendEncode(digits, h.Sum(nil))
	}

	out := make([]int, k)

	for i := range out {
		slice, _ := strconv.ParseUint(string(digits[i*sliceHexDigits:(i+1)*sliceHexDigits]), 16, 32)
		out[i] = int(slice % uint64(m))
	}

	return out
}
