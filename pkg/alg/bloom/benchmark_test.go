package bloom_test

import (
	"fmt"
	"testing"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/bloom"
)

const benchWords = 10_000

// benchSizes covers the CLI default filter and one sized for a large word list.
var benchSizes = []struct {
	name     string
	capacity int
	fp       float64
}{
	{name: "default", capacity: bloom.DefaultCapacity, fp: bloom.DefaultFalsePositiveRate},
	{name: "1M_0.01pct", capacity: largeN, fp: tightFP},
}

func benchVocabulary() []string {
	words := make([]string, benchWords)
	for i := range words {
		words[i] = fmt.Sprintf("word-%05d", i)
	}

	return words
}

func filterFor(b *testing.B, capacity int, fp float64, seed []string) *bloom.Filter {
	b.Helper()

	f, err := bloom.NewWithEstimates(capacity, fp, seed...)
	if err != nil {
		b.Fatal(err)
	}

	return f
}

func BenchmarkAdd(b *testing.B) {
	words := benchVocabulary()

	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			f := filterFor(b, size.capacity, size.fp, nil)

			i := 0
			for b.Loop() {
				f.Add(words[i%benchWords])
				i++
			}
		})
	}
}

// Half the lookups hit seeded words and half miss.
func BenchmarkTest(b *testing.B) {
	words := benchVocabulary()
	seeded := words[:benchWords/2]

	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			f := filterFor(b, size.capacity, size.fp, seeded)

			i := 0
			for b.Loop() {
				f.Test(words[i%benchWords])
				i++
			}
		})
	}
}

func BenchmarkTestBulk(b *testing.B) {
	words := benchVocabulary()
	f := filterFor(b, bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate, words[:bloom.DefaultCapacity])

	b.ReportAllocs()

	for b.Loop() {
		_ = f.TestBulk(words)
	}
}

// Hex renders the whole bit array, which dominates JSON output for big filters.
func BenchmarkHex(b *testing.B) {
	words := benchVocabulary()

	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			f := filterFor(b, size.capacity, size.fp, words)

			b.ReportAllocs()

			for b.Loop() {
				_ = f.Hex()
			}
		})
	}
}
