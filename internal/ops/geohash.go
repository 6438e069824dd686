package ops

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/geohash"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

// Distance units.
const (
	UnitKm    = "km"
	UnitMiles = "mi"
)

// Point is a coordinate pair as decimal strings. Trailing zeros count: they
// set how long a hash the point supports.
type Point struct {
	Latitude  string `json:"latitude"  yaml:"latitude"`
	Longitude string `json:"longitude" yaml:"longitude"`
}

// GeohashResult describes an encoded point.
type GeohashResult struct {
	Point `yaml:",inline"`

	Hash         string `json:"hash"          yaml:"hash"`
	Precision    int    `json:"precision"     yaml:"precision"`
	MaxPrecision int    `json:"max_precision" yaml:"max_precision"`
	// Decoded is the point rounded to the hash precision.
	Decoded Point `json:"decoded" yaml:"decoded"`
}

// DecodeResult is the south-west corner of a hash cell.
type DecodeResult struct {
	Hash  string `json:"hash" yaml:"hash"`
	Point `yaml:",inline"`
}

// DistanceResult is the great-circle distance between two points.
type DistanceResult struct {
	From      GeohashResult `json:"from"      yaml:"from"`
	To        GeohashResult `json:"to"        yaml:"to"`
	Unit      string        `json:"unit"      yaml:"unit"`
	Distance  string        `json:"distance"  yaml:"distance"`
	Radians   float64       `json:"radians"   yaml:"radians"`
	Precision int           `json:"precision" yaml:"precision"`
}

func point(lat, lon decimal.Decimal) Point {
	return Point{Latitude: geohash.Format(lat), Longitude: geohash.Format(lon)}
}

func encodePoint(p Point, precision int) (*geohash.Geohash, error) {
	g, err := geohash.NewFromStrings(p.Latitude, p.Longitude, precision)
	if err != nil {
		return nil, fmt.Errorf("geohash: %w", err)
	}

	return g, nil
}

func describePoint(p Point, g *geohash.Geohash) GeohashResult {
	return GeohashResult{
		Point:        p,
		Hash:         g.Hash(),
		Precision:    g.Precision(),
		MaxPrecision: g.MaxPrecision(),
		Decoded:      point(g.Decode()),
	}
}

// GeohashEncode encodes p at precision, clamped to what p's latitude digits
// support. Zero precision takes the default.
func GeohashEncode(ctx context.Context, p Point, precision int) (*GeohashResult, error) {
	if precision == 0 {
		precision = geohash.DefaultPrecision
	}

	g, err := encodePoint(p, precision)
	if err != nil {
		return nil, err
	}

	annotate(ctx, attribute.Int("geohash.precision", g.Precision()))

	res := describePoint(p, g)

	return &res, nil
}

// GeohashDecode decodes hash on its own.
func GeohashDecode(ctx context.Context, hash string) (*DecodeResult, error) {
	if hash == "" {
		return nil, ErrEmptyHash
	}

	lat, lon, err := geohash.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("geohash: %w", err)
	}

	annotate(ctx, attribute.Int("geohash.precision", len(hash)))

	return &DecodeResult{Hash: hash, Point: point(lat, lon)}, nil
}

// GeohashDistance measures from one point to another in unit. The result
// is rounded according to the shorter of from's precision and to's maximum
// precision.
func GeohashDistance(ctx context.Context, from, to Point, precision int, unit string) (*DistanceResult, error) {
	if unit == "" {
		unit = UnitKm
	}

	if unit != UnitKm && unit != UnitMiles {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}

	if precision == 0 {
		precision = geohash.DefaultPrecision
	}

	a, err := encodePoint(from, precision)
	if err != nil {
		return nil, err
	}

	b, err := encodePoint(to, precision)
	if err != nil {
		return nil, err
	}

	dist := a.DistanceInKm(b)
	if unit == UnitMiles {
		dist = a.DistanceInMiles(b)
	}

	annotate(ctx, attribute.Int("geohash.precision", a.DistancePrecision(b)))

	return &DistanceResult{
		From:      describePoint(from, a),
		To:        describePoint(to, b),
		Unit:      unit,
		Distance:  geohash.Format(dist),
		Radians:   a.Distance(b),
		Precision: a.DistancePrecision(b),
	}, nil
}

// Table implements [render.Tabular].
func (r *GeohashResult) Table() render.Table {
	return render.Table{
		Title: "Geohash " + r.Hash,
		Summary: []render.Field{
			{Name: "latitude", Value: r.Latitude},
			{Name: "longitude", Value: r.Longitude},
			{Name: "precision", Value: fmt.Sprintf("%d (max %d)", r.Precision, r.MaxPrecision)},
			{Name: "decoded", Value: r.Decoded.Latitude + ", " + r.Decoded.Longitude},
		},
	}
}

// Table implements [render.Tabular].
func (r *DecodeResult) Table() render.Table {
	return render.Table{
		Title: "Geohash " + r.Hash,
		Summary: []render.Field{
			{Name: "latitude", Value: r.Latitude},
			{Name: "longitude", Value: r.Longitude},
		},
	}
}

// Table implements [render.Tabular].
func (r *DistanceResult) Table() render.Table {
	return render.Table{
		Title: fmt.Sprintf("Distance %s %s", r.Distance, r.Unit),
		Summary: []render.Field{
			{Name: "radians", Value: r.Radians},
			{Name: "precision", Value: r.Precision},
		},
		Header: []string{"point", "latitude", "longitude", "hash"},
		Rows: [][]any{
			{"from", r.From.Latitude, r.From.Longitude, r.From.Hash},
			{"to", r.To.Latitude, r.To.Longitude, r.To.Hash},
		},
	}
}
