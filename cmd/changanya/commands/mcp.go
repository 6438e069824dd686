package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/changanya/pkg/config"
	"github.com/Sumatoshi-tech/changanya/pkg/mcp"
	"github.com/Sumatoshi-tech/changanya/pkg/observability"
	"github.com/Sumatoshi-tech/changanya/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug           bool
		diagnosticsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the changanya operations as tools:
  - bloom_check: Bloom filter membership tests
  - simhash_compare: Fingerprint documents and compare them pairwise
  - simhash_dupes: Find near-duplicate documents
  - geohash_encode, geohash_decode, geohash_distance: Geohash operations

Omitted tool parameters take their defaults from the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			configPath, err := cobraCmd.Flags().GetString(flagConfig)
			if err != nil {
				configPath = ""
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			providers, err := initMCPObservability(debug, diagnosticsAddr != "")
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			deps := mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
				Config:  cfg,
			}

			srv := mcp.NewServer(deps)

			if diagnosticsAddr != "" {
				serving := func(context.Context) error { return cobraCmd.Context().Err() }

				diag, diagErr := observability.NewDiagnosticsServer(diagnosticsAddr,
					providers.MetricsHandler, providers.Logger, serving)
				if diagErr != nil {
					return diagErr
				}

				defer func() { _ = diag.Close(context.Background()) }()

				providers.Logger.Info("diagnostics listening", slog.String("addr", diag.Addr()))
			}

			providers.Logger.Debug("mcp server starting", slog.Any("tools", srv.ListToolNames()))

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&diagnosticsAddr, "diagnostics-addr", "",
		"serve /healthz, /readyz and Prometheus /metrics on this address")

	return cmd
}

func initMCPObservability(debug, prometheus bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig().WithEnv()
	cfg.ServiceVersion = version.Version
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true
	cfg.Prometheus = prometheus

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}
