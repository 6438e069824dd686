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
	bloomCmdUse   = "bloom [query...]"
	bloomCmdShort = "Test items for membership in a Bloom filter"

	flagAdd      = "add"
	flagFile     = "file"
	flagCapacity = "capacity"
	flagFPRate   = "fp-rate"
)

// ErrNoBloomInput is returned when bloom has neither items nor queries.
var ErrNoBloomInput = errors.New("nothing to add or test (use --add, --file or query arguments)")

func newBloomCommand(flags *globalFlags) *cobra.Command {
	var (
		items    []string
		files    []string
		capacity int
		fpRate   float64
	)

	cmd := &cobra.Command{
		Use:   bloomCmdUse,
		Short: bloomCmdShort,
		Long: `Build a Bloom filter from --add items and --file lines, then test each
query argument. "no" is definite; "possibly" can be a false positive.

Sizing comes from --capacity and --fp-rate, falling back to the bloom
section of the config file.`,
		Example: `  changanya bloom --add apple --add pear apple plum
  changanya bloom --file words.txt --capacity 100000 --fp-rate 0.001 zebra`,
		RunE: func(cmd *cobra.Command, queries []string) error {
			fromFiles, err := readInputs(cmd.InOrStdin(), files, true)
			if err != nil {
				return err
			}

			items = append(items, fromFiles...)
			if len(items) == 0 && len(queries) == 0 {
				return ErrNoBloomInput
			}

			s, err := flags.start(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed(flagCapacity) {
					cfg.Bloom.Capacity = capacity
				}

				if cmd.Flags().Changed(flagFPRate) {
					cfg.Bloom.FalsePositiveRate = fpRate
				}
			})
			if err != nil {
				return err
			}
			defer s.close()

			req := ops.BloomRequest{
				Items:             items,
				Queries:           queries,
				Capacity:          s.cfg.Bloom.Capacity,
				FalsePositiveRate: s.cfg.Bloom.FalsePositiveRate,
			}

			return s.run(cmd.Context(), "bloom", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.BloomCheck(ctx, req))
			})
		},
	}

	cmd.Flags().StringArrayVar(&items, flagAdd, nil, "item to add to the filter (repeatable)")
	cmd.Flags().StringArrayVarP(&files, flagFile, "f", nil, "file of items to add, one per line; - for stdin")
	cmd.Flags().IntVar(&capacity, flagCapacity, config.DefaultBloomCapacity, "expected number of items")
	cmd.Flags().Float64Var(&fpRate, flagFPRate, config.DefaultBloomFalsePositiveRate, "target false positive rate")

	return cmd
}
