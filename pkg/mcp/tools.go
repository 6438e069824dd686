package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/changanya/internal/ops"
)

// Tool names.
const (
	ToolNameBloomCheck      = "bloom_check"
	ToolNameSimhashCompare  = "simhash_compare"
	ToolNameSimhashDupes    = "simhash_dupes"
	ToolNameGeohashEncode   = "geohash_encode"
	ToolNameGeohashDecode   = "geohash_decode"
	ToolNameGeohashDistance = "geohash_distance"
)

const (
	bloomCheckDescription = "Build a Bloom filter from items and test queries for membership. " +
		"A false verdict is definite; a true verdict may be a false positive."

	simhashCompareDescription = "Compute simhash fingerprints of documents and the hamming distance " +
		"and similarity of every pair. Mode is text, html (visible text) or tags (DOM structure)."

	simhashDupesDescription = "Index simhash fingerprints of documents and list every pair of documents " +
		"whose fingerprints differ in at most max_distance bits."

	geohashEncodeDescription = "Encode a latitude/longitude pair as a geohash. Coordinates are decimal " +
		"strings; trailing zeros count toward the precision the hash may have."

	geohashDecodeDescription = "Decode a geohash to the south-west corner of its cell."

	geohashDistanceDescription = "Great-circle distance between two coordinates in km or mi, " +
		"rounded according to their geohash precision."
)

// BloomCheckInput is the input schema for bloom_check.
type BloomCheckInput struct {
	Items             []string `json:"items,omitempty"               jsonschema:"items to add to the filter"`
	Queries           []string `json:"queries"                       jsonschema:"items to test for membership"`
	Capacity          int      `json:"capacity,omitempty"            jsonschema:"expected number of items"`
	FalsePositiveRate float64  `json:"false_positive_rate,omitempty" jsonschema:"target false positive rate in (0, 1)"`
}

// SimhashCompareInput is the input schema for simhash_compare.
type SimhashCompareInput struct {
	Documents []string `json:"documents"           jsonschema:"documents to fingerprint"`
	Mode      string   `json:"mode,omitempty"      jsonschema:"text, html or tags (default text)"`
	BitWidth  int      `json:"bit_width,omitempty" jsonschema:"fingerprint width in bits"`
}

// SimhashDupesInput is the input schema for simhash_dupes.
type SimhashDupesInput struct {
	Documents   []string `json:"documents"              jsonschema:"documents to index"`
	Mode        string   `json:"mode,omitempty"         jsonschema:"text, html or tags (default text)"`
	BitWidth    int      `json:"bit_width,omitempty"    jsonschema:"fingerprint width in bits"`
	MaxDistance *int     `json:"max_distance,omitempty" jsonschema:"largest hamming distance reported"`
	BlockCount  int      `json:"block_count,omitempty"  jsonschema:"blocks per fingerprint, more than max_distance"`
}

// GeohashEncodeInput is the input schema for geohash_encode.
type GeohashEncodeInput struct {
	Latitude  string `json:"latitude"            jsonschema:"latitude in degrees as a decimal string"`
	Longitude string `json:"longitude"           jsonschema:"longitude in degrees as a decimal string"`
	Precision int    `json:"precision,omitempty" jsonschema:"hash length"`
}

// GeohashDecodeInput is the input schema for geohash_decode.
type GeohashDecodeInput struct {
	Hash string `json:"hash" jsonschema:"geohash to decode"`
}

// GeohashDistanceInput is the input schema for geohash_distance.
type GeohashDistanceInput struct {
	FromLatitude  string `json:"from_latitude"       jsonschema:"latitude of the first point"`
	FromLongitude string `json:"from_longitude"      jsonschema:"longitude of the first point"`
	ToLatitude    string `json:"to_latitude"         jsonschema:"latitude of the second point"`
	ToLongitude   string `json:"to_longitude"        jsonschema:"longitude of the second point"`
	Precision     int    `json:"precision,omitempty" jsonschema:"geohash precision bounding the result"`
	Unit          string `json:"unit,omitempty"      jsonschema:"km or mi (default km)"`
}

// ToolOutput wraps tool results as structured output.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}

// respond turns an operation's outcome into a tool result.
func respond[T any](value T, err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(value)
}

func (s *Server) handleBloomCheck(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in BloomCheckInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	req := ops.BloomRequest{
		Items:             in.Items,
		Queries:           in.Queries,
		Capacity:          in.Capacity,
		FalsePositiveRate: in.FalsePositiveRate,
	}

	if req.Capacity == 0 {
		req.Capacity = s.cfg.Bloom.Capacity
	}

	if req.FalsePositiveRate == 0 {
		req.FalsePositiveRate = s.cfg.Bloom.FalsePositiveRate
	}

	return respond(ops.BloomCheck(ctx, req))
}

func (s *Server) simhashRequest(docs []string, mode string, width int) ops.SimhashRequest {
	if width == 0 {
		width = s.cfg.Simhash.BitWidth
	}

	return ops.SimhashRequest{Documents: docs, Mode: mode, BitWidth: width}
}

func (s *Server) handleSimhashCompare(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in SimhashCompareInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return respond(ops.SimhashCompare(ctx, s.simhashRequest(in.Documents, in.Mode, in.BitWidth)))
}

func (s *Server) handleSimhashDupes(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in SimhashDupesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	req := ops.DupesRequest{
		SimhashRequest: s.simhashRequest(in.Documents, in.Mode, in.BitWidth),
		MaxDistance:    s.cfg.Simhash.MaxDistance,
		BlockCount:     in.BlockCount,
	}

	if in.MaxDistance != nil {
		req.MaxDistance = *in.MaxDistance
	}

	if req.BlockCount == 0 {
		req.BlockCount = s.cfg.Simhash.BlockCount
	}

	return respond(ops.SimhashDupes(ctx, req))
}

func (s *Server) precision(p int) int {
	if p == 0 {
		return s.cfg.Geohash.Precision
	}

	return p
}

func (s *Server) handleGeohashEncode(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in GeohashEncodeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	p := ops.Point{Latitude: in.Latitude, Longitude: in.Longitude}

	return respond(ops.GeohashEncode(ctx, p, s.precision(in.Precision)))
}

func handleGeohashDecode(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in GeohashDecodeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return respond(ops.GeohashDecode(ctx, in.Hash))
}

func (s *Server) handleGeohashDistance(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in GeohashDistanceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	from := ops.Point{Latitude: in.FromLatitude, Longitude: in.FromLongitude}
	to := ops.Point{Latitude: in.ToLatitude, Longitude: in.ToLongitude}

	return respond(ops.GeohashDistance(ctx, from, to, s.precision(in.Precision), in.Unit))
}
