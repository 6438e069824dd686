package simhash

import (
	"fmt"
	"iter"
	"math/big"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/internal/bitutil"
)

const (
	// DefaultMaxDistance is the default hamming distance threshold.
	DefaultMaxDistance = 2

	// DefaultBlockCount is the default number of blocks per fingerprint.
	DefaultBlockCount = 6
)

var (
	// ErrEmptyIndex is returned when an index is built from no fingerprints.
	ErrEmptyIndex = fmt.Errorf("%w: simhash: index needs at least one fingerprint", hashtype.ErrInvalidParameter)

	// ErrInvalidBlocks is returned when the block count and distance threshold
	// do not satisfy maxDistance < blockCount <= width/2.
	ErrInvalidBlocks = fmt.Errorf("%w: simhash: invalid block configuration", hashtype.ErrInvalidParameter)
)

// Index buckets fingerprints by the value of each of their blocks. Two
// fingerprints within maxDistance bits of each other differ in at most
// maxDistance blocks, so with more blocks than that they share at least one
// bucket.
//
// Index is safe for concurrent use. Sequences returned by FindDupes and
// FindAllDupes work on a snapshot taken when iteration starts.
type Index struct {
	mu          sync.RWMutex
	members     []*Simhash
	buckets     map[string][]*Simhash
	bounds      []int
	width       int
	maxDistance int
}

// NewIndex builds an index over hashes. All hashes must share one width.
// blockCount must exceed maxDistance and must not exceed half the width.
func NewIndex(hashes []*Simhash, maxDistance, blockCount int) (*Index, error) {
	if len(hashes) == 0 {
		return nil, ErrEmptyIndex
	}

	width := hashes[0].BitWidth()

	if maxDistance < 0 || blockCount <= maxDistance || blockCount > width/2 {
		return nil, fmt.Errorf("%w: max distance %d, %d blocks, width %d",
			ErrInvalidBlocks, maxDistance, blockCount, width)
	}

	idx := &Index{
		members:     make([]*Simhash, 0, len(hashes)),
		buckets:     make(map[string][]*Simhash),
		bounds:      bitutil.Boundaries(width, blockCount),
		width:       width,
		maxDistance: maxDistance,
	}

	for _, h := range hashes {
		err := idx.Add(h)
		if err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Add inserts a fingerprint into the bucket of each of its blocks.
func (idx *Index) Add(h *Simhash) error {
	if h.BitWidth() != idx.width {
		return fmt.Errorf("%w: index width %d, fingerprint width %d",
			hashtype.ErrSizeMismatch, idx.width, h.BitWidth())
	}

	keys := idx.keys(h)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.members = append(idx.members, h)

	for _, key := range keys {
		bucket := idx.buckets[key]
		if slices.ContainsFunc(bucket, func(m *Simhash) bool { return m.Equal(h) }) {
			continue
		}

		idx.buckets[key] = append(bucket, h)
	}

	return nil
}

// Len returns the number of fingerprints added.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.members)
}

// BucketCount returns the number of distinct block keys.
func (idx *Index) BucketCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.buckets)
}

// BitWidth returns the fingerprint width shared by all members.
func (idx *Index) BitWidth() int { return idx.width }

// MaxDistance returns the hamming distance threshold.
func (idx *Index) MaxDistance() int { return idx.maxDistance }

// BlockCount returns the number of blocks each fingerprint is split into.
func (idx *Index) BlockCount() int { return len(idx.bounds) - 1 }

// Members returns a copy of the fingerprints in insertion order.
func (idx *Index) Members() []*Simhash {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return slices.Clone(idx.members)
}

// Keys returns the bucket keys of h, one per block, formatted as
// "<block value in hex>:<block index in hex>". Block 0 holds the least
// significant bits.
func (idx *Index) Keys(h *Simhash) []string {
	return idx.keys(h)
}

func (idx *Index) keys(h *Simhash) []string {
	v := h.Value()
	keys := make([]string, len(idx.bounds)-1)

	for i := range keys {
		keys[i] = fmt.Sprintf("%x:%x", bitutil.Extract(v, idx.bounds[i], idx.bounds[i+1]), i)
	}

	return keys
}

// FindDupes yields every member within MaxDistance bits of q, scanning the
// bucket of each of q's blocks in block order. A member sharing several blocks
// with q is yielded once per shared block. A query of a different width
// matches nothing.
func (idx *Index) FindDupes(q *Simhash) iter.Seq[*Simhash] {
	return func(yield func(*Simhash) bool) {
		if q.BitWidth() != idx.width {
			return
		}

		keys := idx.keys(q)
		candidates := make([][]*Simhash, len(keys))

		idx.mu.RLock()
		for i, key := range keys {
			candidates[i] = slices.Clone(idx.buckets[key])
		}
		idx.mu.RUnlock()

		for _, bucket := range candidates {
			for _, m := range bucket {
				if hashtype.HammingDistance(q, m) > idx.maxDistance {
					continue
				}

				if !yield(m) {
					return
				}
			}
		}
	}
}

// FindAllDupes yields every pair of members within MaxDistance bits of each
// other, the smaller value first. Each pair of members is yielded once.
//
// For every choice of blockCount-maxDistance pivot blocks the members are
// sorted by their value with the pivot blocks moved to the top. Only members
// in the same run of equal pivot bits are compared, which keeps the scan far
// below quadratic for well-spread fingerprints.
func (idx *Index) FindAllDupes() iter.Seq2[*Simhash, *Simhash] {
	return func(yield func(*Simhash, *Simhash) bool) {
		members := idx.Members()
		if len(members) < 2 {
			return
		}

		blocks := len(idx.bounds) - 1
		seen := make(map[[2]int]struct{})
		table := make([]permutedMember, len(members))

		combinations(blocks, blocks-idx.maxDistance, func(pivots []int) bool {
			p := newPermuter(idx.bounds, pivots)

			for i, m := range members {
				permuted := p.permute(m.Value())
				table[i] = permutedMember{pos: i, permuted: permuted, prefix: p.prefix(permuted)}
			}

			slices.SortStableFunc(table, func(a, b permutedMember) int {
				return a.permuted.Cmp(b.permuted)
			})

			for start := 0; start < len(table); {
				end := start + 1
				for end < len(table) && table[end].prefix.Cmp(table[start].prefix) == 0 {
					end++
				}

				if !idx.yieldRun(members, table[start:end], seen, yield) {
					return false
				}

				start = end
			}

			return true
		})
	}
}

// permutedMember is one row of the sorted table built for a pivot choice.
type permutedMember struct {
	pos      int
	permuted *big.Int
	prefix   *big.Int
}

// yieldRun compares every pair in a run of members sharing their pivot bits.
// Pairs already reported for an earlier pivot choice are skipped.
func (idx *Index) yieldRun(
	members []*Simhash, run []permutedMember, seen map[[2]int]struct{}, yield func(*Simhash, *Simhash) bool,
) bool {
	for i, a := range run {
		for _, b := range run[i+1:] {
			lo, hi := a.pos, b.pos
			if lo > hi {
				lo, hi = hi, lo
			}

			if _, dup := seen[[2]int{lo, hi}]; dup {
				continue
			}

			first, second := members[lo], members[hi]
			if hashtype.HammingDistance(first, second) > idx.maxDistance {
				continue
			}

			seen[[2]int{lo, hi}] = struct{}{}

			if first.Compare(second) > 0 {
				first, second = second, first
			}

			if !yield(first, second) {
				return false
			}
		}
	}

	return true
}
