package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/changanya/internal/ops"
	"github.com/Sumatoshi-tech/changanya/pkg/config"
	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

const (
	flagPrecision = "precision"
	flagUnit      = "unit"

	encodeArgs   = 2
	decodeArgs   = 1
	distanceArgs = 4
)

func newGeohashCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geohash",
		Short: "Encode, decode and measure between coordinates",
		Long: `Geohash encodes a latitude/longitude pair as a short base-32 string.

Coordinates are exact decimals. Trailing zeros matter: "33.050500000000"
supports a longer hash than "33.0505".`,
	}

	cmd.AddCommand(
		newGeohashEncodeCommand(flags),
		newGeohashDecodeCommand(flags),
		newGeohashDistanceCommand(flags),
	)

	return cmd
}

// precisionOverride applies --precision to the geohash config when set.
func precisionOverride(cmd *cobra.Command, precision int) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed(flagPrecision) {
			cfg.Geohash.Precision = precision
		}
	}
}

func newGeohashEncodeCommand(flags *globalFlags) *cobra.Command {
	var precision int

	cmd := &cobra.Command{
		Use:     "encode <latitude> <longitude>",
		Short:   "Encode a coordinate pair",
		Example: `  changanya geohash encode --precision 4 -- 33.050500000000 -1.024`,
		Args:    cobra.ExactArgs(encodeArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(cmd, precisionOverride(cmd, precision))
			if err != nil {
				return err
			}
			defer s.close()

			p := ops.Point{Latitude: args[0], Longitude: args[1]}

			return s.run(cmd.Context(), "geohash.encode", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.GeohashEncode(ctx, p, s.cfg.Geohash.Precision))
			})
		},
	}

	cmd.Flags().IntVarP(&precision, flagPrecision, "p", config.DefaultGeohashPrecision, "hash length")

	return cmd
}

func newGeohashDecodeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hash>",
		Short: "Decode a hash to the south-west corner of its cell",
		Args:  cobra.ExactArgs(decodeArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(cmd, nil)
			if err != nil {
				return err
			}
			defer s.close()

			return s.run(cmd.Context(), "geohash.decode", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.GeohashDecode(ctx, args[0]))
			})
		},
	}
}

func newGeohashDistanceCommand(flags *globalFlags) *cobra.Command {
	var (
		precision int
		unit      string
	)

	cmd := &cobra.Command{
		Use:   "distance <lat1> <lon1> <lat2> <lon2>",
		Short: "Great-circle distance between two coordinates",
		Long: `Measure the great-circle distance from the first coordinate to the
second. The result is rounded to the digits both coordinates support.`,
		Example: `  changanya geohash distance --unit mi -- 33.050500000000 -1.024 34.5000000000 -2.500`,
		Args:    cobra.ExactArgs(distanceArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(cmd, precisionOverride(cmd, precision))
			if err != nil {
				return err
			}
			defer s.close()

			from := ops.Point{Latitude: args[0], Longitude: args[1]}
			to := ops.Point{Latitude: args[2], Longitude: args[3]}

			return s.run(cmd.Context(), "geohash.distance", func(ctx context.Context) (render.Tabular, error) {
				return tabular(ops.GeohashDistance(ctx, from, to, s.cfg.Geohash.Precision, unit))
			})
		},
	}

	cmd.Flags().IntVarP(&precision, flagPrecision, "p", config.DefaultGeohashPrecision, "hash length")
	cmd.Flags().StringVarP(&unit, flagUnit, "u", ops.UnitKm, "distance unit: km or mi")

	return cmd
}
