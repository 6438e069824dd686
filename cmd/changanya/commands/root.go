// Package commands implements the changanya CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/changanya/pkg/config"
	"github.com/Sumatoshi-tech/changanya/pkg/observability"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
	"github.com/Sumatoshi-tech/changanya/pkg/version"
)

const (
	flagConfig  = "config"
	flagOutput  = "output"
	flagVerbose = "verbose"
	flagNoColor = "no-color"

	opPrefix = "cli."
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	output     string
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the changanya command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "changanya",
		Short: "Probabilistic hashes: Bloom filters, simhash and geohash",
		Long: `Changanya builds and queries probabilistic hashes.

Commands:
  bloom     Test set membership with a Bloom filter
  simhash   Fingerprint documents and find near-duplicates
  geohash   Encode, decode and measure between coordinates
  mcp       Serve the same operations to AI agents over MCP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, flagConfig, "c", "", "config file (default: ./config.yaml if present)")
	pf.StringVarP(&flags.output, flagOutput, "o", "", "output format: table, json or yaml")
	pf.BoolVarP(&flags.verbose, flagVerbose, "v", false, "verbose logging")
	pf.BoolVar(&flags.noColor, flagNoColor, false, "disable colored table output")

	rootCmd.AddCommand(
		newBloomCommand(flags),
		newSimhashCommand(flags),
		newGeohashCommand(flags),
		newConfigCommand(flags),
		NewMCPCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// session is the per-invocation state of a CLI command: resolved config,
// telemetry and the output renderer.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	renderer  *render.Renderer
}

// loadConfig reads the config file and applies the output flag.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	if g.output != "" {
		err = config.ValidateOutputFormat(g.output)
		if err != nil {
			return nil, err
		}

		cfg.Output.Format = g.output
	}

	if g.verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}

	return cfg, nil
}

// start resolves config, applies override to it, and brings up telemetry.
// Callers must call close.
func (g *globalFlags) start(cmd *cobra.Command, override func(*config.Config)) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	if override != nil {
		override(cfg)

		err = cfg.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	obsCfg := observability.DefaultConfig().WithEnv()
	obsCfg.ServiceVersion = version.Version
	obsCfg.LogLevel = cfg.Logging.SlogLevel()
	obsCfg.LogJSON = cfg.Logging.JSON()

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())

		return nil, err
	}

	out := cmd.OutOrStdout()
	useColor := !g.noColor && !color.NoColor && out == os.Stdout

	renderer, err := render.New(out, cfg.Output.Format, useColor)
	if err != nil {
		_ = providers.Shutdown(context.Background())

		return nil, err
	}

	return &session{cfg: cfg, providers: providers, red: red, renderer: renderer}, nil
}

// run executes op under a span with RED metrics and renders its result.
func (s *session) run(ctx context.Context, op string, fn func(context.Context) (render.Tabular, error)) error {
	var result render.Tabular

	start := time.Now()

	err := observability.Instrument(ctx, s.providers.Tracer, s.red, opPrefix+op, func(ctx context.Context) error {
		var opErr error

		result, opErr = fn(ctx)

		return opErr
	})
	if err != nil {
		s.providers.Logger.DebugContext(ctx, "operation failed", slog.String("op", op), slog.Any("error", err))

		return err
	}

	s.providers.Logger.DebugContext(ctx, "operation complete",
		slog.String("op", op), slog.Duration("elapsed", time.Since(start)))

	return s.renderer.Render(result)
}

func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "changanya %s\n", version.String())
		},
	}
}

// tabular adapts an operation's typed result for session.run.
func tabular[T render.Tabular](v T, err error) (render.Tabular, error) {
	if err != nil {
		return nil, err
	}

	return v, nil
}
