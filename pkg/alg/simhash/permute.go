package simhash

import (
	"math/big"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/internal/bitutil"
)

// permuter rearranges fingerprint blocks so that a chosen set of pivot blocks
// occupies the most significant bits, followed by the remaining blocks. Within
// each group blocks keep their original relative order.
type permuter struct {
	width  int
	order  []int // Block indices, most significant first.
	bounds []int // Block boundaries of the unpermuted fingerprint.

	// pivotWidth is the number of leading bits covered by the pivot blocks.
	pivotWidth int
}

func newPermuter(bounds []int, pivots []int) *permuter {
	blocks := len(bounds) - 1
	order := make([]int, 0, blocks)
	order = append(order, pivots...)

	isPivot := make([]bool, blocks)
	for _, p := range pivots {
		isPivot[p] = true
	}

	for i := range blocks {
		if !isPivot[i] {
			order = append(order, i)
		}
	}

	pivotWidth := 0
	for _, p := range pivots {
		pivotWidth += bounds[p+1] - bounds[p]
	}

	return &permuter{
		width:      bounds[blocks],
		order:      order,
		bounds:     bounds,
		pivotWidth: pivotWidth,
	}
}

// permute returns the rearranged value.
func (p *permuter) permute(v *big.Int) *big.Int {
	out := new(big.Int)

	for _, b := range p.order {
		lo, hi := p.bounds[b], p.bounds[b+1]
		out.Lsh(out, uint(hi-lo))
		out.Or(out, bitutil.Extract(v, lo, hi))
	}

	return out
}

// prefix returns the pivot bits of an already permuted value. Two fingerprints
// share a prefix exactly when they agree on every pivot block.
func (p *permuter) prefix(permuted *big.Int) *big.Int {
	return new(big.Int).Rsh(permuted, uint(p.width-p.pivotWidth))
}

// combinations calls fn with every ascending k-subset of [0, n). The slice
// passed to fn is reused between calls. Iteration stops when fn returns false.
func combinations(n, k int, fn func([]int) bool) {
	if k < 0 || k > n {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		if !fn(idx) {
			return
		}

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}

		if i < 0 {
			return
		}

		idx[i]++

		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
