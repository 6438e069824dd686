package simhash_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
)

const (
	benchDocWords = 200
	benchMembers  = 5000
)

func benchDocument(words int) string {
	buf := make([]byte, 0, words*8)
	for i := range words {
		buf = strconv.AppendInt(buf, int64(i*7919%1013), 36)
		buf = append(buf, ' ')
	}

	return string(buf)
}

// BenchmarkNew64 measures fingerprinting a document at the default width.
func BenchmarkNew64(b *testing.B) {
	doc := benchDocument(benchDocWords)

	b.ResetTimer()

	for range b.N {
		if _, err := simhash.New(doc, simhash.DefaultBitWidth); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNew256 measures fingerprinting through the arbitrary-width path.
func BenchmarkNew256(b *testing.B) {
	doc := benchDocument(benchDocWords)

	b.ResetTimer()

	for range b.N {
		if _, err := simhash.New(doc, 256); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindAllDupes measures the permuted-table scan over random fingerprints.
func BenchmarkFindAllDupes(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	hashes := make([]*simhash.Simhash, benchMembers)

	for i := range hashes {
		h, err := simhash.NewFromTokens([]string{strconv.FormatUint(rng.Uint64(), 16)}, simhash.DefaultBitWidth)
		if err != nil {
			b.Fatal(err)
		}

		hashes[i] = h
	}

	idx, err := simhash.NewIndex(hashes, simhash.DefaultMaxDistance, simhash.DefaultBlockCount)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for range b.N {
		for range idx.FindAllDupes() {
		}
	}
}
