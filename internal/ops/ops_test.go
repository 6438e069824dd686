package ops_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/changanya/internal/ops"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/bloom"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/hashtype"
	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
)

const (
	textOne = "This is a test string one."
	textTwo = "This is a test string TWO."

	textOneValue = "11537571312501063112"
	textOneHex   = "0xa01daffae45cfdc8"
	textTwoValue = "11537571196679550920"

	hereLat  = "33.050500000000"
	hereLon  = "-1.024"
	thereLat = "34.5000000000"
	thereLon = "-2.500"
)

var greetings = []string{
	"How are you? I Am fine. blar blar blar blar blar Thanks.",
	"How are you i am fine. blar blar blar blar blar than",
	"This is simhash test.",
}

func TestBloomCheck(t *testing.T) {
	t.Parallel()

	items := append([]string{"test", "test string"}, strings.Fields("these are some tokens to add to the filter")...)

	res, err := ops.BloomCheck(context.Background(), ops.BloomRequest{
		Items:   items,
		Queries: []string{"test string", "holy diver", "these"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, res.Capacity)
	assert.Equal(t, 28756, res.Bits)
	assert.Equal(t, 7, res.Hashes)
	assert.Equal(t, 3595, res.SizeBytes)
	assert.Equal(t, 11, res.Added)
	assert.InDelta(t, 70.0/28756.0, res.FillRatio, 1e-12)
	assert.Equal(t, []ops.Membership{
		{Item: "test string", PossiblyPresent: true},
		{Item: "holy diver", PossiblyPresent: false},
		{Item: "these", PossiblyPresent: true},
	}, res.Results)

	table := res.Table()
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"query", "member"}, table.Header)
}

func TestBloomCheck_Sizing(t *testing.T) {
	t.Parallel()

	res, err := ops.BloomCheck(context.Background(), ops.BloomRequest{
		Items:             []string{"a"},
		Capacity:          1000000,
		FalsePositiveRate: 0.0001,
	})
	require.NoError(t, err)

	assert.Equal(t, 19170117, res.Bits)
	assert.Equal(t, 14, res.Hashes)
	assert.Empty(t, res.Results)
	assert.Empty(t, res.Table().Header)
}

func TestBloomCheck_Errors(t *testing.T) {
	t.Parallel()

	_, err := ops.BloomCheck(context.Background(), ops.BloomRequest{})
	require.ErrorIs(t, err, ops.ErrNoInput)

	_, err = ops.BloomCheck(context.Background(), ops.BloomRequest{Items: []string{"a"}, FalsePositiveRate: 2})
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)

	_, err = ops.BloomCheck(context.Background(), ops.BloomRequest{
		Items: []string{strings.Repeat("x", ops.MaxInputBytes+1)},
	})
	require.ErrorIs(t, err, ops.ErrInputTooLarge)
}

func TestBloomCheck_OversizedCapacity(t *testing.T) {
	t.Parallel()

	var (
		res *ops.BloomResult
		err error
	)

	require.NotPanics(t, func() {
		res, err = ops.BloomCheck(context.Background(), ops.BloomRequest{
			Queries:           []string{"x"},
			Capacity:          1 << 62,
			FalsePositiveRate: 0.5,
		})
	})
	require.ErrorIs(t, err, bloom.ErrTooLarge)
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)
	assert.Nil(t, res)
}

func TestSimhashCompare(t *testing.T) {
	t.Parallel()

	res, err := ops.SimhashCompare(context.Background(), ops.SimhashRequest{
		Documents: []string{textOne, textTwo},
	})
	require.NoError(t, err)

	assert.Equal(t, 64, res.BitWidth)
	require.Len(t, res.Fingerprints, 2)
	assert.Equal(t, ops.Fingerprint{Document: 0, Value: textOneValue, Hex: textOneHex}, res.Fingerprints[0])
	assert.Equal(t, textTwoValue, res.Fingerprints[1].Value)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, ops.Pair{First: 0, Second: 1, Distance: 7, Similarity: 0.890625}, res.Pairs[0])

	table := res.Table()
	assert.Equal(t, "Simhash (64 bits)", table.Title)
	assert.Len(t, table.Summary, 1)
	assert.Len(t, table.Rows, 2)
}

func TestSimhashCompare_Width(t *testing.T) {
	t.Parallel()

	res, err := ops.SimhashCompare(context.Background(), ops.SimhashRequest{
		Documents: []string{"this is yet another test"},
		BitWidth:  8,
	})
	require.NoError(t, err)

	assert.Equal(t, "0x18", res.Fingerprints[0].Hex)
	assert.Empty(t, res.Pairs)
}

func TestSimhashCompare_HTMLMode(t *testing.T) {
	t.Parallel()

	res, err := ops.SimhashCompare(context.Background(), ops.SimhashRequest{
		Documents: []string{"<html><body><p>" + textOne + "</p><script>var x;</script></body></html>"},
		Mode:      ops.ModeHTML,
	})
	require.NoError(t, err)

	assert.Equal(t, textOneValue, res.Fingerprints[0].Value)
}

func TestSimhashCompare_TagsMode(t *testing.T) {
	t.Parallel()

	page := "<html><body><div><p>a</p><p>b</p></div></body></html>"

	res, err := ops.SimhashCompare(context.Background(), ops.SimhashRequest{
		Documents: []string{page, strings.ReplaceAll(page, ">a<", ">other text<")},
		Mode:      ops.ModeTags,
	})
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, 0, res.Pairs[0].Distance)
}

func TestSimhashCompare_Errors(t *testing.T) {
	t.Parallel()

	_, err := ops.SimhashCompare(context.Background(), ops.SimhashRequest{})
	require.ErrorIs(t, err, ops.ErrNoInput)

	_, err = ops.SimhashCompare(context.Background(), ops.SimhashRequest{Documents: []string{"a"}, Mode: "pdf"})
	require.ErrorIs(t, err, ops.ErrUnknownMode)

	_, err = ops.SimhashCompare(context.Background(), ops.SimhashRequest{Documents: []string{"a"}, BitWidth: -1})
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)

	_, err = ops.SimhashCompare(context.Background(), ops.SimhashRequest{Documents: []string{"a"}, BitWidth: 1 << 40})
	require.ErrorIs(t, err, simhash.ErrInvalidWidth)

	_, err = ops.SimhashDupes(context.Background(), ops.DupesRequest{
		SimhashRequest: ops.SimhashRequest{Documents: []string{"a"}, BitWidth: 1 << 40},
	})
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)
}

func TestSimhashCompare_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ops.SimhashCompare(ctx, ops.SimhashRequest{Documents: []string{textOne, textTwo}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimhashDupes(t *testing.T) {
	t.Parallel()

	res, err := ops.SimhashDupes(context.Background(), ops.DupesRequest{
		SimhashRequest: ops.SimhashRequest{Documents: greetings},
		MaxDistance:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, res.BlockCount)
	assert.Equal(t, 2, res.MaxDistance)
	assert.Equal(t, 13, res.Buckets)
	assert.Equal(t, []ops.Pair{{First: 1, Second: 0, Distance: 1, Similarity: 0.984375}}, res.Duplicates)

	table := res.Table()
	assert.Len(t, table.Rows, 1)
	assert.Contains(t, table.Title, "distance <= 2")
}

func TestSimhashDupes_NoneWithinZero(t *testing.T) {
	t.Parallel()

	res, err := ops.SimhashDupes(context.Background(), ops.DupesRequest{
		SimhashRequest: ops.SimhashRequest{Documents: greetings},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Duplicates)
	assert.NotNil(t, res.Duplicates)
}

func TestSimhashDupes_InvalidBlocks(t *testing.T) {
	t.Parallel()

	_, err := ops.SimhashDupes(context.Background(), ops.DupesRequest{
		SimhashRequest: ops.SimhashRequest{Documents: greetings},
		MaxDistance:    3,
		BlockCount:     3,
	})
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)
}

func TestGeohashEncode(t *testing.T) {
	t.Parallel()

	res, err := ops.GeohashEncode(context.Background(), ops.Point{Latitude: hereLat, Longitude: hereLon}, 4)
	require.NoError(t, err)

	assert.Equal(t, "evzs", res.Hash)
	assert.Equal(t, 4, res.Precision)
	assert.Equal(t, 10, res.MaxPrecision)
	assert.Equal(t, ops.Point{Latitude: "33.050500", Longitude: "-1.024"}, res.Decoded)

	res, err = ops.GeohashEncode(context.Background(), ops.Point{Latitude: hereLat, Longitude: hereLon}, 0)
	require.NoError(t, err)
	assert.Equal(t, "evzk08wt", res.Hash)
	assert.Equal(t, "Geohash evzk08wt", res.Table().Title)
}

func TestGeohashEncode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ops.GeohashEncode(context.Background(), ops.Point{Latitude: "90", Longitude: "0"}, 4)
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)

	_, err = ops.GeohashEncode(context.Background(), ops.Point{Latitude: "north", Longitude: "0"}, 4)
	require.ErrorIs(t, err, hashtype.ErrInvalidParameter)
}

func TestGeohashDecode(t *testing.T) {
	t.Parallel()

	res, err := ops.GeohashDecode(context.Background(), "evzk08wt")
	require.NoError(t, err)
	assert.Equal(t, ops.Point{Latitude: "33.0504798889", Longitude: "-1.0237884521"}, res.Point)

	_, err = ops.GeohashDecode(context.Background(), "")
	require.ErrorIs(t, err, ops.ErrEmptyHash)

	_, err = ops.GeohashDecode(context.Background(), "evza")
	require.ErrorIs(t, err, hashtype.ErrDecode)
}

func TestGeohashDistance(t *testing.T) {
	t.Parallel()

	here := ops.Point{Latitude: hereLat, Longitude: hereLon}
	there := ops.Point{Latitude: thereLat, Longitude: thereLon}

	res, err := ops.GeohashDistance(context.Background(), here, there, 4, ops.UnitMiles)
	require.NoError(t, err)
	assert.Equal(t, "131.24743", res.Distance)
	assert.Equal(t, 4, res.Precision)
	assert.Equal(t, "evzs", res.From.Hash)
	assert.Equal(t, "eynk", res.To.Hash)
	assert.InDelta(t, 0.03314329147740038, res.Radians, 1e-15)

	res, err = ops.GeohashDistance(context.Background(), here, there, 4, "")
	require.NoError(t, err)
	assert.Equal(t, "211.222197", res.Distance)
	assert.Equal(t, ops.UnitKm, res.Unit)
	assert.Len(t, res.Table().Rows, 2)

	_, err = ops.GeohashDistance(context.Background(), here, there, 4, "parsec")
	require.ErrorIs(t, err, ops.ErrUnknownUnit)
}
