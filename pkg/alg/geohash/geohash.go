// Package geohash encodes latitude/longitude pairs as geohash strings while
// tracking the decimal precision of the inputs.
//
// Coordinates are kept as exact decimals. The number of fractional digits in
// the latitude bounds the hash length: a hash can be at most two characters
// shorter than the latitude has fractional digits. Decoded coordinates are
// rounded to two more places than the hash length, never more than the input
// carried, so no precision is manufactured.
//
// A Geohash is not safe for concurrent use while Encode is running.
package geohash

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
)

const (
	// DefaultPrecision is the hash length used when none is configured.
	DefaultPrecision = 8

	// latLonPrecisionOffset is how many more fractional digits the inputs must
	// carry than the hash has characters, and how many more places decoded
	// coordinates get.
	latLonPrecisionOffset = 2

	// bitsPerChar is the number of bits encoded by one base-32 character.
	bitsPerChar = 5
)

var (
	// ErrInvalidLatitude is returned when the latitude is outside [-90, 90).
	ErrInvalidLatitude = fmt.Errorf("%w: geohash: latitude must be in [-90, 90)", hashtype.ErrInvalidParameter)

	// ErrInvalidPrecision is returned when a negative precision is requested.
	ErrInvalidPrecision = fmt.Errorf("%w: geohash: precision must not be negative", hashtype.ErrInvalidParameter)

	// ErrInvalidCoordinate is returned when a coordinate cannot be parsed or is not finite.
	ErrInvalidCoordinate = fmt.Errorf("%w: geohash: invalid coordinate", hashtype.ErrInvalidParameter)
)

var (
	ninety      = decimal.NewFromInt(90)
	minusNinety = decimal.NewFromInt(-90)
	halfTurn    = decimal.NewFromInt(180)
	fullTurn    = decimal.NewFromInt(360)
)

// Geohash is an encoded coordinate pair.
type Geohash struct {
	latitude  decimal.Decimal
	longitude decimal.Decimal

	// normLongitude is longitude folded into [-180, 180).
	normLongitude decimal.Decimal

	latPlaces    int
	lonPlaces    int
	maxPrecision int
	precision    int
	hash         string
}

// New encodes the coordinate at the requested precision, clamped to the
// maximum the latitude's fractional digits allow.
func New(latitude, longitude decimal.Decimal, precision int) (*Geohash, error) {
	if latitude.GreaterThanOrEqual(ninety) || latitude.LessThan(minusNinety) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidLatitude, Format(latitude))
	}

	if precision < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPrecision, precision)
	}

	g := &Geohash{
		latitude:      latitude,
		longitude:     longitude,
		normLongitude: wrapLongitude(longitude),
		latPlaces:     places(latitude),
		lonPlaces:     places(longitude),
	}

	g.maxPrecision = max(g.latPlaces-latLonPrecisionOffset, 0)
	g.precision = min(precision, g.maxPrecision)
	g.hash = g.encode()

	return g, nil
}

// NewFromStrings parses decimal coordinates, keeping the fractional digits as
// written: "33.050500000000" carries twelve places.
func NewFromStrings(latitude, longitude string, precision int) (*Geohash, error) {
	lat, err := decimal.NewFromString(latitude)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q: %w", ErrInvalidCoordinate, latitude, err)
	}

	lon, err := decimal.NewFromString(longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q: %w", ErrInvalidCoordinate, longitude, err)
	}

	return New(lat, lon, precision)
}

// NewFromFloat uses the exact binary value of each float, which carries far
// more fractional digits than its shortest decimal form.
func NewFromFloat(latitude, longitude float64, precision int) (*Geohash, error) {
	for _, f := range []float64{latitude, longitude} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinate, f)
		}
	}

	return New(ExactDecimal(latitude), ExactDecimal(longitude), precision)
}

// Latitude returns the latitude as given.
func (g *Geohash) Latitude() decimal.Decimal { return g.latitude }

// Longitude returns the longitude as given, before normalization.
func (g *Geohash) Longitude() decimal.Decimal { return g.longitude }

// Precision returns the current hash length.
func (g *Geohash) Precision() int { return g.precision }

// MaxPrecision returns the longest hash the latitude's digits support.
func (g *Geohash) MaxPrecision() int { return g.maxPrecision }

// Hash returns the base-32 hash string.
func (g *Geohash) Hash() string { return g.hash }

// Encode re-encodes at a new precision, clamped to MaxPrecision. Zero keeps
// the current precision.
func (g *Geohash) Encode(precision int) error {
	if precision < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPrecision, precision)
	}

	if precision == 0 {
		precision = g.precision
	}

	g.precision = min(precision, g.maxPrecision)
	g.hash = g.encode()

	return nil
}

// Decode returns the stored coordinates rounded to the current precision.
// It does not re-derive them from the hash, which would lose digits.
func (g *Geohash) Decode() (latitude, longitude decimal.Decimal) {
	return g.quantize(g.latitude, g.longitude)
}

// DecodeHash decodes an arbitrary hash string, rounding the south-west corner
// of its cell to this geohash's current precision. An empty string behaves like Decode.
func (g *Geohash) DecodeHash(hash string) (latitude, longitude decimal.Decimal, err error) {
	if hash == "" {
		lat, lon := g.Decode()

		return lat, lon, nil
	}

	lat, lon, err := decodeCorner(hash)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}

	latitude, longitude = g.quantize(lat, lon)

	return latitude, longitude, nil
}

// DecodeString decodes hash without a reference coordinate, rounding the
// south-west corner of its cell to two more places than the hash has
// characters.
func DecodeString(hash string) (latitude, longitude decimal.Decimal, err error) {
	if hash == "" {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: geohash: empty hash", hashtype.ErrDecode)
	}

	lat, lon, err := decodeCorner(hash)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}

	places := int32(len(hash) + latLonPrecisionOffset)

	return lat.RoundBank(places), lon.RoundBank(places), nil
}

func (g *Geohash) quantize(lat, lon decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	want := g.precision + latLonPrecisionOffset

	return lat.RoundBank(int32(min(want, g.latPlaces))), lon.RoundBank(int32(min(want, g.lonPlaces)))
}

// encode computes the hash of the stored coordinate at the current precision.
func (g *Geohash) encode() string {
	if g.precision == 0 {
		return ""
	}

	latBits := g.precision * bitsPerChar / 2
	lonBits := latBits + g.precision&1

	lat := fixedPoint(g.latitude, halfTurn, latBits)
	lon := fixedPoint(g.normLongitude, fullTurn, lonBits)

	return interleave(lat, lon, latBits, lonBits)
}

// fixedPoint maps v/turn, a fraction in [-0.5, 0.5), onto [0, 2^bits) so
// that the sign selects the upper or lower half.
func fixedPoint(v, turn decimal.Decimal, bits int) *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	scaled := scaledTrunc(v.Abs(), turn, bits)

	if v.Sign() > 0 {
		return scaled.Add(scaled, half)
	}

	return half.Sub(half, scaled)
}

// scaledTrunc returns trunc(v * 2^bits / turn) computed exactly.
func scaledTrunc(v, turn decimal.Decimal, bits int) *big.Int {
	num := v.Coefficient()
	den := turn.Coefficient()

	exp := int64(v.Exponent()) - int64(turn.Exponent())
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(absInt64(exp)), nil)

	if exp >= 0 {
		num.Mul(num, pow)
	} else {
		den.Mul(den, pow)
	}

	num.Lsh(num, uint(bits))

	return num.Quo(num, den)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

// Kind implements [hashtype.Hash].
func (g *Geohash) Kind() hashtype.Kind { return hashtype.KindGeohash }

// BitWidth is five bits per hash character.
func (g *Geohash) BitWidth() int { return len(g.hash) * bitsPerChar }

// Value reads the hash characters as base-32 digits, so hashes of equal
// length order like their strings.
func (g *Geohash) Value() *big.Int {
	v := new(big.Int)

	for i := range len(g.hash) {
		v.Lsh(v, bitsPerChar)
		v.Or(v, big.NewInt(int64(base32Index[g.hash[i]])))
	}

	return v
}

// Hex returns the hash value in hexadecimal.
func (g *Geohash) Hex() string { return hashtype.Hex(g) }

// String returns the hash string.
func (g *Geohash) String() string { return g.hash }

// Similarity compares two hashes of the same length bit by bit.
func (g *Geohash) Similarity(other hashtype.Hash) (float64, error) {
	return hashtype.Similarity(g, other)
}
