// Package mcp implements a Model Context Protocol server exposing the
// changanya hashes as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/changanya/pkg/config"
	"github.com/Sumatoshi-tech/changanya/pkg/observability"
	"github.com/Sumatoshi-tech/changanya/pkg/version"
)

const (
	serverName = "changanya"
	toolCount  = 6

	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies for the MCP server. Zero-value
// fields use defaults.
type ServerDeps struct {
	Logger *slog.Logger

	// Metrics records per-tool RED metrics when set.
	Metrics *observability.REDMetrics

	// Tracer creates a span per tool call when set.
	Tracer trace.Tracer

	// Config supplies defaults for omitted tool parameters.
	Config *config.Config
}

// Server wraps the MCP SDK server with the changanya tools.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	cfg     *config.Config
}

// NewServer creates an MCP server with every tool registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	srv := &Server{
		inner:   mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version.Version}, opts),
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		cfg:     cfg,
	}

	addTool(srv, ToolNameBloomCheck, bloomCheckDescription, srv.handleBloomCheck)
	addTool(srv, ToolNameSimhashCompare, simhashCompareDescription, srv.handleSimhashCompare)
	addTool(srv, ToolNameSimhashDupes, simhashDupesDescription, srv.handleSimhashDupes)
	addTool(srv, ToolNameGeohashEncode, geohashEncodeDescription, srv.handleGeohashEncode)
	addTool(srv, ToolNameGeohashDecode, geohashDecodeDescription, handleGeohashDecode)
	addTool(srv, ToolNameGeohashDistance, geohashDistanceDescription, srv.handleGeohashDistance)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

type toolHandler[In any] = func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error)

func addTool[In any](s *Server, name, description string, handler toolHandler[In]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description},
		withMetrics(s.metrics, name, withTracing(s.tracer, name, handler)))

	s.mu.Lock()
	s.tools = append(s.tools, name)
	s.mu.Unlock()
}

// withTracing opens a span per call and appends the trace id to the
// result content when the span is sampled.
func withTracing[In any](tracer trace.Tracer, toolName string, handler toolHandler[In]) toolHandler[In] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: traceIDMetaKey + "=" + sc.TraceID().String()})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per call. Error results count as errors.
func withMetrics[In any](metrics *observability.REDMetrics, toolName string, handler toolHandler[In]) toolHandler[In] {
	if metrics == nil {
		return handler
	}

	op := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		done := metrics.TrackInflight(ctx, op)
		defer done()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}
