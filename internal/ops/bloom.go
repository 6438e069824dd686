package ops

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/bloom"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

// BloomRequest builds a filter from Items and tests each of Queries.
type BloomRequest struct {
	Items             []string
	Queries           []string
	Capacity          int
	FalsePositiveRate float64
}

// Membership is the verdict for one query.
type Membership struct {
	Item            string `json:"item"             yaml:"item"`
	PossiblyPresent bool   `json:"possibly_present" yaml:"possibly_present"`
}

// BloomResult describes the filter and the query verdicts.
type BloomResult struct {
	Capacity          int          `json:"capacity"            yaml:"capacity"`
	FalsePositiveRate float64      `json:"false_positive_rate" yaml:"false_positive_rate"`
	Bits              int          `json:"bits"                yaml:"bits"`
	Hashes            int          `json:"hashes"              yaml:"hashes"`
	SizeBytes         int          `json:"size_bytes"          yaml:"size_bytes"`
	Added             int          `json:"added"               yaml:"added"`
	FillRatio         float64      `json:"fill_ratio"          yaml:"fill_ratio"`
	Results           []Membership `json:"results"             yaml:"results"`
}

// BloomCheck sizes a filter for the request, adds the items, and tests the
// queries. Zero capacity or rate take the filter defaults.
func BloomCheck(ctx context.Context, req BloomRequest) (*BloomResult, error) {
	if len(req.Items) == 0 && len(req.Queries) == 0 {
		return nil, ErrNoInput
	}

	err := checkSize(req.Items, req.Queries)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = bloom.DefaultCapacity
	}

	fp := req.FalsePositiveRate
	if fp == 0 {
		fp = bloom.DefaultFalsePositiveRate
	}

	f, err := bloom.NewWithEstimates(capacity, fp)
	if err != nil {
		return nil, fmt.Errorf("bloom: %w", err)
	}

	f.AddBulk(req.Items)

	annotate(ctx,
		attribute.Int("bloom.bits", f.BitCount()),
		attribute.Int("bloom.hashes", f.HashCount()),
		attribute.Int("bloom.items", len(req.Items)),
	)

	res := &BloomResult{
		Capacity:          capacity,
		FalsePositiveRate: fp,
		Bits:              f.BitCount(),
		Hashes:            f.HashCount(),
		SizeBytes:         f.SizeBytes(),
		Added:             f.EstimatedCount(),
		FillRatio:         f.FillRatio(),
		Results:           make([]Membership, len(req.Queries)),
	}

	for i, present := range f.TestBulk(req.Queries) {
		res.Results[i] = Membership{Item: req.Queries[i], PossiblyPresent: present}
	}

	return res, nil
}

// Table implements [render.Tabular].
func (r *BloomResult) Table() render.Table {
	t := render.Table{
		Title: "Bloom filter",
		Summary: []render.Field{
			{Name: "capacity", Value: render.Count(r.Capacity)},
			{Name: "false positive rate", Value: r.FalsePositiveRate},
			{Name: "bits (m)", Value: render.Count(r.Bits)},
			{Name: "hashes (k)", Value: r.Hashes},
			{Name: "memory", Value: render.Bytes(r.SizeBytes)},
			{Name: "items added", Value: render.Count(r.Added)},
			{Name: "fill ratio", Value: render.Percent(r.FillRatio)},
		},
	}

	if len(r.Results) == 0 {
		return t
	}

	t.Header = []string{"query", "member"}
	for _, m := range r.Results {
		t.Rows = append(t.Rows, []any{m.Item, render.Verdict{OK: m.PossiblyPresent, Yes: "possibly", No: "no"}})
	}

	return t
}
