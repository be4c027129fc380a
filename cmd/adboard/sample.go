package main

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/export"
	"ad-revenue-lab/internal/fixtures"
)

// newSampleCmd writes the simulated ledger
func newSampleCmd() *cobra.Command {
	var (
		sampleOut    string
		sampleFormat string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the simulated sample ledger to a file",
		Long: `The sample sub-command writes the deterministic simulated ledger used by
the sample source. The CSV output uses the finance export headers and can
be fed back through --source csv or ingest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(sampleFormat)
			if err != nil {
				return err
			}

			txs := fixtures.Generate(sampleOptions(cfg))
			path, err := export.WriteFile(filepath.Dir(sampleOut), filepath.Base(sampleOut), format, txs)
			if err != nil {
				return err
			}

			log.Info().Str("path", path).Int("rows", len(txs)).Msg("sample ledger written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&sampleOut, "out", "o", "sample_ledger.csv", "output file")
	cmd.Flags().StringVar(&sampleFormat, "format", "csv", "output format (csv, xlsx, parquet)")
	cmd.Flags().Int("rows", 1000, "rows across the target and previous period")
	cmd.Flags().Uint64("seed", 42, "random seed")
	bindFlags(cmd.Flags(), map[string]string{
		"source.sample_rows": "rows",
		"source.sample_seed": "seed",
	})
	return cmd
}
