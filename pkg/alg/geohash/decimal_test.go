package geohash

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: 2, want: "2"},
		{in: 1 << 60, want: "1152921504606846976"},
		{in: -1.5, want: "-1.5"},
		{in: 0.5, want: "0.5"},
		{in: 0.1, want: "0.1000000000000000055511151231257827021181583404541015625"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(ExactDecimal(tt.in)), "%v", tt.in)
	}

	assert.Equal(t, 44, places(ExactDecimal(33.0505)))
	assert.InDelta(t, math.Pi, ExactDecimal(math.Pi).InexactFloat64(), 0)
}

func TestWrapLongitude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "0"},
		{in: "179.999", want: "179.999"},
		{in: "180", want: "-180"},
		{in: "-180", want: "-180"},
		{in: "-180.5", want: "179.5"},
		{in: "200.5", want: "-159.5"},
		{in: "-519.5", want: "-159.5"},
		{in: "720", want: "0"},
		{in: "1e15", want: "-80"},
		{in: "-1e15", want: "80"},
		{in: "3.6e1000000", want: "0"},
		{in: "1234567890123.25", want: "123.25"},
		{in: "-1234567890123.25", want: "-123.25"},
	}

	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		require.NoError(t, err)

		got := wrapLongitude(d)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s: got %s", tt.in, got)
	}
}

func TestFormat_KeepsTrailingZeros(t *testing.T) {
	t.Parallel()

	d, err := decimal.NewFromString("33.050500000000")
	require.NoError(t, err)

	assert.Equal(t, 12, places(d))
	assert.Equal(t, "33.050500000000", Format(d))
	assert.Equal(t, "90", Format(decimal.NewFromInt(90)))
}

func TestRoundSig(t *testing.T) {
	t.Parallel()

	d, err := decimal.NewFromString("123.456789")
	require.NoError(t, err)

	assert.Equal(t, "123.46", Format(roundSig(d, 5)))
	assert.Equal(t, "123.456789", Format(roundSig(d, 28)))

	// Ties go to the even neighbour.
	tie, err := decimal.NewFromString("0.125")
	require.NoError(t, err)
	assert.Equal(t, "0.12", Format(roundSig(tie, 2)))
}

func TestDegreesToRadians(t *testing.T) {
	t.Parallel()

	// 28 significant digits of float(pi) / 180.
	assert.Equal(t, "0.01745329251994329508887757483", Format(degreesToRadians))
}
