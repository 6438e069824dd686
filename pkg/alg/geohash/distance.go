package geohash

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// EarthRadiusKm is the mean Earth radius used for kilometre distances.
	EarthRadiusKm = 6373

	// EarthRadiusMiles is the mean Earth radius used for mile distances.
	EarthRadiusMiles = 3960

	// kmPrecisionOffset and miPrecisionOffset are the extra places reported
	// beyond the distance precision.
	kmPrecisionOffset = 2
	miPrecisionOffset = 1
)

var degreesToRadians = div(ExactDecimal(math.Pi), halfTurn)

// Distance returns the central angle between the two coordinates in radians,
// using the spherical law of cosines on colatitude and longitude. Angles are
// converted to radians with 28 significant digits before the trigonometry.
func (g *Geohash) Distance(other *Geohash) float64 {
	phi1 := mul(sub(ninety, g.latitude), degreesToRadians)
	phi2 := mul(sub(ninety, other.latitude), degreesToRadians)
	theta1 := mul(g.longitude, degreesToRadians)
	theta2 := mul(other.longitude, degreesToRadians)

	p1, p2 := phi1.InexactFloat64(), phi2.InexactFloat64()
	dtheta := sub(theta1, theta2).InexactFloat64()

	cos := math.Sin(p1)*math.Sin(p2)*math.Cos(dtheta) + math.Cos(p1)*math.Cos(p2)

	return math.Acos(max(-1, min(1, cos)))
}

// DistancePrecision is the hash length the distance to other is reported at:
// the lesser of this hash's precision and other's maximum precision.
func (g *Geohash) DistancePrecision(other *Geohash) int {
	return min(g.precision, other.maxPrecision)
}

// DistanceInKm returns the great-circle distance in kilometres, rounded to
// DistancePrecision+2 places.
func (g *Geohash) DistanceInKm(other *Geohash) decimal.Decimal {
	return g.scaledDistance(other, EarthRadiusKm, kmPrecisionOffset)
}

// DistanceInMiles returns the great-circle distance in miles, rounded to
// DistancePrecision+1 places.
func (g *Geohash) DistanceInMiles(other *Geohash) decimal.Decimal {
	return g.scaledDistance(other, EarthRadiusMiles, miPrecisionOffset)
}

func (g *Geohash) scaledDistance(other *Geohash, radius int64, offset int) decimal.Decimal {
	d := mul(ExactDecimal(g.Distance(other)), decimal.NewFromInt(radius))

	return d.RoundBank(int32(g.DistancePrecision(other) + offset))
}
