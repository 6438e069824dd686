package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/changanya/internal/ops"
	"github.com/Sumatoshi-tech/changanya/pkg/config"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

const (
	flagMode        = "mode"
	flagBits        = "bits"
	flagLines       = "lines"
	flagMaxDistance = "max-distance"
	flagBlocks      = "blocks"
)

// ErrNoDocuments is returned when a simhash command has no documents.
var ErrNoDocuments = errors.New("no documents (pass them as arguments or use --file)")

// documentFlags are the input flags shared by the simhash subcommands.
type documentFlags struct {
	files []string
	lines bool
	mode  string
	bits  int
}

func (d *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&d.files, flagFile, "f", nil, "file holding one document; - for stdin (repeatable)")
	cmd.Flags().BoolVar(&d.lines, flagLines, false, "treat each line of --file as its own document")
	cmd.Flags().StringVar(&d.mode, flagMode, ops.ModeText, "input mode: text, html or tags")
	cmd.Flags().IntVar(&d.bits, flagBits, config.DefaultSimhashBitWidth, "fingerprint width in bits")
}

// documents returns the argument documents followed by the file documents.
func (d *documentFlags) documents(cmd *cobra.Command, args []string) ([]string, error) {
	fromFiles, err := readInputs(cmd.InOrStdin(), d.files, d.lines)
	if err != nil {
		return nil, err
	}

	docs := append(append([]string{}, args...), fromFiles...)
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	return docs, nil
}

// bitWidth returns --bits when given, else the configured width.
func (d *documentFlags) bitWidth(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed(flagBits) {
		return d.bits
	}

	return cfg.Simhash.BitWidth
}

func newSimhashCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simhash",
		Short: "Fingerprint documents and find near-duplicates",
		Long: `Simhash fingerprints documents so that similar documents get fingerprints
a small hamming distance apart.

Documents come from arguments and --file. In html mode the visible text of
each document is fingerprinted; in tags mode its element structure is.`,
	}

	cmd.AddCommand(newSimhashCompareCommand(flags), newSimhashDupesCommand(flags))

	return cmd
}

func newSimhashCompareCommand(flags *globalFlags) *cobra.Command {
	docFlags := &documentFlags{}

	cmd := &cobra.Command{
		Use:   "compare [document...]",
		Short: "Fingerprint documents and compare every pair",
		Example: `  changanya simhash compare "This is a test string one." "This is a test string TWO."
  changanya simhash compare --mode html -f a.html -f b.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := docFlags.documents(cmd, args)
			if err != nil {
				return err
			}

			s, err := flags.start(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()

			req := ops.SimhashRequest{
				Documents: docs,
				Mode:      docFlags.mode,
				BitWidth:  docFlags.bitWidth(cmd, s.cfg),
			}

			return s.run(cmd.Context(), "simhash.compare", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.SimhashCompare(ctx, req))
			})
		},
	}

	docFlags.register(cmd)

	return cmd
}

func newSimhashDupesCommand(flags *globalFlags) *cobra.Command {
	var (
		docFlags    = &documentFlags{}
		maxDistance int
		blocks      int
	)

	cmd := &cobra.Command{
		Use:   "dupes [document...]",
		Short: "List pairs of near-duplicate documents",
		Long: `Index the documents' fingerprints and list every pair at most
--max-distance bits apart. --blocks must exceed --max-distance; more blocks
make lookups faster at the cost of memory.`,
		Example: `  changanya simhash dupes --lines -f corpus.txt --max-distance 3 --blocks 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := docFlags.documents(cmd, args)
			if err != nil {
				return err
			}

			s, err := flags.start(cmd, func(cfg *config.Config) {
				cfg.Simhash.BitWidth = docFlags.bitWidth(cmd, cfg)

				if cmd.Flags().Changed(flagMaxDistance) {
					cfg.Simhash.MaxDistance = maxDistance
				}

				if cmd.Flags().Changed(flagBlocks) {
					cfg.Simhash.BlockCount = blocks
				}
			})
			if err != nil {
				return err
			}
			defer s.close()

			req := ops.DupesRequest{
				SimhashRequest: ops.SimhashRequest{
					Documents: docs,
					Mode:      docFlags.mode,
					BitWidth:  s.cfg.Simhash.BitWidth,
				},
				MaxDistance: s.cfg.Simhash.MaxDistance,
				BlockCount:  s.cfg.Simhash.BlockCount,
			}

			return s.run(cmd.Context(), "simhash.dupes", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.SimhashDupes(ctx, req))
			})
		},
	}

	docFlags.register(cmd)
	cmd.Flags().IntVar(&maxDistance, flagMaxDistance, config.DefaultSimhashMaxDistance,
		"largest hamming distance reported")
	cmd.Flags().IntVar(&blocks, flagBlocks, config.DefaultSimhashBlockCount, "blocks per fingerprint")

	return cmd
}
