// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the changanya CLI and MCP server.
package observability

import (
	"log/slog"
	"os"
	"strconv"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is one-shot command execution.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "changanya"
	defaultShutdownTimeoutSec = 5
)

// Standard OTLP exporter environment variables.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment, if any.
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// export and Init returns no-op providers.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// Prometheus adds a pull reader to the meter provider and exposes it
	// as Providers.MetricsHandler.
	Prometheus bool

	// DebugTrace samples every span.
	DebugTrace bool

	// SampleRatio is the root sampling ratio when DebugTrace is off.
	// Zero keeps parent-based always-on.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// WithEnv fills the OTLP exporter settings from the standard OTel
// environment variables.
func (c Config) WithEnv() Config {
	c.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
	c.OTLPHeaders = ParseOTLPHeaders(os.Getenv(envOTLPHeaders))

	insecure, err := strconv.ParseBool(os.Getenv(envOTLPInsecure))
	c.OTLPInsecure = err == nil && insecure

	return c
}
