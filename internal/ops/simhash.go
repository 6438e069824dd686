package ops

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

// Simhash input modes.
const (
	// ModeText splits plain text on whitespace.
	ModeText = "text"
	// ModeHTML fingerprints the visible text of an HTML document.
	ModeHTML = "html"
	// ModeTags fingerprints the tag structure of an HTML document.
	ModeTags = "tags"
)

// SimhashRequest fingerprints Documents. Zero BitWidth takes the default.
type SimhashRequest struct {
	Documents []string
	Mode      string
	BitWidth  int
}

// DupesRequest indexes Documents and reports near-duplicate pairs.
type DupesRequest struct {
	SimhashRequest

	MaxDistance int
	BlockCount  int
}

// Fingerprint is the simhash of one document.
type Fingerprint struct {
	Document int    `json:"document" yaml:"document"`
	Value    string `json:"value"    yaml:"value"`
	Hex      string `json:"hex"      yaml:"hex"`
}

// Pair relates two documents by the distance between their fingerprints.
type Pair struct {
	First      int     `json:"first"      yaml:"first"`
	Second     int     `json:"second"     yaml:"second"`
	Distance   int     `json:"distance"   yaml:"distance"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// SimhashResult holds fingerprints and every pairwise comparison.
type SimhashResult struct {
	BitWidth     int           `json:"bit_width"    yaml:"bit_width"`
	Fingerprints []Fingerprint `json:"fingerprints" yaml:"fingerprints"`
	Pairs        []Pair        `json:"pairs"        yaml:"pairs"`
}

// DupesResult holds the near-duplicate pairs found by an index scan.
type DupesResult struct {
	BitWidth     int           `json:"bit_width"    yaml:"bit_width"`
	MaxDistance  int           `json:"max_distance" yaml:"max_distance"`
	BlockCount   int           `json:"block_count"  yaml:"block_count"`
	Buckets      int           `json:"buckets"      yaml:"buckets"`
	Fingerprints []Fingerprint `json:"fingerprints" yaml:"fingerprints"`
	Duplicates   []Pair        `json:"duplicates"   yaml:"duplicates"`
}

func fingerprints(req SimhashRequest) ([]*simhash.Simhash, int, error) {
	if len(req.Documents) == 0 {
		return nil, 0, ErrNoInput
	}

	err := checkSize(req.Documents)
	if err != nil {
		return nil, 0, err
	}

	width := req.BitWidth
	if width == 0 {
		width = simhash.DefaultBitWidth
	}

	if width < 0 || width > simhash.MaxBitWidth {
		return nil, 0, fmt.Errorf("simhash: %w: %d", simhash.ErrInvalidWidth, width)
	}

	build, err := fingerprinter(req.Mode)
	if err != nil {
		return nil, 0, err
	}

	hashes := make([]*simhash.Simhash, len(req.Documents))

	for i, doc := range req.Documents {
		hashes[i], err = build(doc, width)
		if err != nil {
			return nil, 0, fmt.Errorf("simhash: document %d: %w", i, err)
		}
	}

	return hashes, width, nil
}

func fingerprinter(mode string) (func(string, int) (*simhash.Simhash, error), error) {
	switch mode {
	case ModeText, "":
		return simhash.New, nil
	case ModeHTML:
		return simhash.FromHTMLText, nil
	case ModeTags:
		return simhash.FromDOM, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func describe(hashes []*simhash.Simhash) []Fingerprint {
	out := make([]Fingerprint, len(hashes))
	for i, h := range hashes {
		out[i] = Fingerprint{Document: i, Value: h.String(), Hex: h.Hex()}
	}

	return out
}

func comparePair(first, second int, a, b *simhash.Simhash) (Pair, error) {
	sim, err := a.Similarity(b)
	if err != nil {
		return Pair{}, fmt.Errorf("simhash: %w", err)
	}

	return Pair{First: first, Second: second, Distance: a.HammingDistance(b), Similarity: sim}, nil
}

// SimhashCompare fingerprints every document and compares each pair.
func SimhashCompare(ctx context.Context, req SimhashRequest) (*SimhashResult, error) {
	hashes, width, err := fingerprints(req)
	if err != nil {
		return nil, err
	}

	annotate(ctx, attribute.Int("simhash.width", width), attribute.Int("simhash.documents", len(hashes)))

	res := &SimhashResult{BitWidth: width, Fingerprints: describe(hashes)}

	for i := range hashes {
		for j := i + 1; j < len(hashes); j++ {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			pair, err := comparePair(i, j, hashes[i], hashes[j])
			if err != nil {
				return nil, err
			}

			res.Pairs = append(res.Pairs, pair)
		}
	}

	return res, nil
}

// SimhashDupes builds an index over the documents' fingerprints and reports
// every pair within MaxDistance bits. Zero BlockCount takes the default;
// MaxDistance is used as given.
func SimhashDupes(ctx context.Context, req DupesRequest) (*DupesResult, error) {
	hashes, width, err := fingerprints(req.SimhashRequest)
	if err != nil {
		return nil, err
	}

	blocks := req.BlockCount
	if blocks == 0 {
		blocks = simhash.DefaultBlockCount
	}

	idx, err := simhash.NewIndex(hashes, req.MaxDistance, blocks)
	if err != nil {
		return nil, fmt.Errorf("simhash: %w", err)
	}

	annotate(ctx,
		attribute.Int("simhash.width", width),
		attribute.Int("simhash.documents", len(hashes)),
		attribute.Int("simhash.buckets", idx.BucketCount()),
	)

	position := make(map[*simhash.Simhash]int, len(hashes))
	for i, h := range hashes {
		position[h] = i
	}

	res := &DupesResult{
		BitWidth:     width,
		MaxDistance:  idx.MaxDistance(),
		BlockCount:   idx.BlockCount(),
		Buckets:      idx.BucketCount(),
		Fingerprints: describe(hashes),
		Duplicates:   []Pair{},
	}

	for a, b := range idx.FindAllDupes() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		pair, err := comparePair(position[a], position[b], a, b)
		if err != nil {
			return nil, err
		}

		res.Duplicates = append(res.Duplicates, pair)
	}

	return res, nil
}

func fingerprintRows(fps []Fingerprint) [][]any {
	rows := make([][]any, len(fps))
	for i, fp := range fps {
		rows[i] = []any{fp.Document, fp.Value, fp.Hex}
	}

	return rows
}

// Table implements [render.Tabular].
func (r *SimhashResult) Table() render.Table {
	t := render.Table{
		Title:   fmt.Sprintf("Simhash (%d bits)", r.BitWidth),
		Summary: pairSummary(r.Pairs),
		Header:  []string{"document", "value", "hex"},
		Rows:    fingerprintRows(r.Fingerprints),
	}

	return t
}

// Table implements [render.Tabular].
func (r *DupesResult) Table() render.Table {
	t := render.Table{
		Title: fmt.Sprintf("Near duplicates (%d bits, distance <= %d, %d blocks)",
			r.BitWidth, r.MaxDistance, r.BlockCount),
		Summary: []render.Field{
			{Name: "documents", Value: render.Count(len(r.Fingerprints))},
			{Name: "buckets", Value: render.Count(r.Buckets)},
			{Name: "pairs", Value: render.Count(len(r.Duplicates))},
		},
		Header: []string{"first", "second", "distance", "similarity"},
	}

	for _, p := range r.Duplicates {
		t.Rows = append(t.Rows, []any{p.First, p.Second, p.Distance, render.Percent(p.Similarity)})
	}

	return t
}

func pairSummary(pairs []Pair) []render.Field {
	fields := make([]render.Field, len(pairs))
	for i, p := range pairs {
		fields[i] = render.Field{
			Name:  fmt.Sprintf("%d ~ %d", p.First, p.Second),
			Value: fmt.Sprintf("distance %d, similarity %s", p.Distance, render.Percent(p.Similarity)),
		}
	}

	return fields
}
