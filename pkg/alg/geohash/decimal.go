package geohash

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// contextDigits is the number of significant digits kept by intermediate
	// decimal arithmetic in distance calculations.
	contextDigits = 28

	// guardPlaces is the number of extra places carried by divisions before
	// they are rounded to contextDigits.
	guardPlaces = 12

	// float64MantissaBits is the mantissa width used to expand a float exactly.
	float64MantissaBits = 53
)

// wrapLongitude folds lon into [-180, 180).
func wrapLongitude(lon decimal.Decimal) decimal.Decimal {
	var r decimal.Decimal

	if exp := lon.Exponent(); exp > 0 {
		// Reduce the power of ten modulo 360 so 1e15 never expands.
		turn := fullTurn.BigInt()
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), turn)
		v := new(big.Int).Mul(lon.Coefficient(), scale)
		r = decimal.NewFromBigInt(v.Rem(v, turn), 0)
	} else {
		r = lon.Mod(fullTurn)
	}

	switch {
	case r.GreaterThanOrEqual(halfTurn):
		return r.Sub(fullTurn)
	case r.LessThan(halfTurn.Neg()):
		return r.Add(fullTurn)
	default:
		return r
	}
}

// ExactDecimal returns the exact decimal expansion of f, so 0.1 becomes
// 0.1000000000000000055511151231257827021181583404541015625. Integral values
// carry no fractional digits.
func ExactDecimal(f float64) decimal.Decimal {
	if f == 0 {
		return decimal.Zero
	}

	frac, exp := math.Frexp(math.Abs(f))
	mant := uint64(math.Ldexp(frac, float64MantissaBits))
	exp -= float64MantissaBits

	for exp < 0 && mant&1 == 0 {
		mant >>= 1
		exp++
	}

	coef := new(big.Int).SetUint64(mant)

	var d decimal.Decimal

	if exp >= 0 {
		d = decimal.NewFromBigInt(coef.Lsh(coef, uint(exp)), 0)
	} else {
		// m / 2^k == m * 5^k / 10^k.
		k := int64(-exp)
		five := new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)
		d = decimal.NewFromBigInt(coef.Mul(coef, five), int32(exp))
	}

	if f < 0 {
		return d.Neg()
	}

	return d
}

// places returns the number of fractional digits d was written with.
func places(d decimal.Decimal) int {
	return max(0, -int(d.Exponent()))
}

// Format renders d with exactly the fractional digits it carries, keeping
// trailing zeros.
func Format(d decimal.Decimal) string {
	return d.StringFixed(int32(places(d)))
}

// roundSig rounds d half-to-even to n significant digits.
func roundSig(d decimal.Decimal, n int) decimal.Decimal {
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	if digits <= n {
		return d
	}

	return d.RoundBank(-d.Exponent() - int32(digits-n))
}

// sub, mul and div mirror decimal arithmetic in a 28-digit context.
func sub(a, b decimal.Decimal) decimal.Decimal { return roundSig(a.Sub(b), contextDigits) }

func mul(a, b decimal.Decimal) decimal.Decimal { return roundSig(a.Mul(b), contextDigits) }

func div(a, b decimal.Decimal) decimal.Decimal {
	return roundSig(a.DivRound(b, contextDigits+guardPlaces), contextDigits)
}
