package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/config"
	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/fixtures"
	"ad-revenue-lab/internal/ledger"
	"ad-revenue-lab/internal/observability"
	"ad-revenue-lab/internal/storage"
	chstore "ad-revenue-lab/internal/storage/clickhouse"
	"ad-revenue-lab/internal/storage/migrations"
	pgstore "ad-revenue-lab/internal/storage/postgres"
)

// newIngestCmd loads a ledger into a database
func newIngestCmd() *cobra.Command {
	var (
		ingestFrom      string
		ingestTo        string
		ingestBatchSize int
	)

	cmd := &cobra.Command{
		Use:   "ingest [ledger.csv]",
		Short: "Load a ledger CSV or the sample ledger into PostgreSQL or ClickHouse",
		Long: `The ingest sub-command validates a ledger export and writes it to the
database named by --to, applying schema migrations first. Rows are written
in batches; a batch containing an id already stored is rejected as a whole.
Without a file argument the simulated sample ledger is ingested.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()

			if ingestBatchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive, got %d", ingestBatchSize)
			}

			txs, err := readLedger(args, ingestFrom)
			if err != nil {
				return err
			}

			store, cleanup, err := openTarget(ctx, ingestTo)
			if err != nil {
				return err
			}
			defer cleanup()

			written := 0
			for lo := 0; lo < len(txs); lo += ingestBatchSize {
				hi := min(lo+ingestBatchSize, len(txs))
				if err := store.InsertBulk(ctx, txs[lo:hi]); err != nil {
					return fmt.Errorf("insert rows %d-%d: %w", lo+1, hi, err)
				}
				written = hi
				log.Debug().Int("written", written).Int("total", len(txs)).Msg("batch stored")
			}

			log.Info().
				Str("target", ingestTo).
				Int("rows", written).
				Str("took", durafmt.Parse(time.Since(start)).LimitFirstN(2).String()).
				Msg("ledger ingested")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ingestTo, "to", config.SourcePostgres, "target database (postgres, clickhouse)")
	flags.IntVar(&ingestBatchSize, "batch-size", 5000, "rows per insert batch")
	flags.StringVar(&ingestFrom, "source-name", "", "name hashed into generated row ids (default file name)")
	return cmd
}

func readLedger(args []string, sourceName string) ([]*domain.Transaction, error) {
	if len(args) == 0 {
		txs := fixtures.Generate(sampleOptions(cfg))
		observability.RecordIngest(config.SourceSample, len(txs), 0)
		return txs, nil
	}

	res, err := ledger.LoadFile(args[0], ledger.Options{
		Context:     cfg.Context(),
		Source:      sourceName,
		SkipInvalid: cfg.Source.SkipInvalid,
	})
	if err != nil {
		return nil, err
	}
	for _, rowErr := range res.Skipped {
		log.Warn().Int("line", rowErr.Line).Str("column", rowErr.Column).Str("reason", rowErr.Reason).Msg("skipped invalid row")
	}
	observability.RecordIngest(config.SourceCSV, len(res.Transactions), len(res.Skipped))
	return res.Transactions, nil
}

// openTarget migrates and opens the ingest target.
func openTarget(ctx context.Context, target string) (storage.TransactionStore, func(), error) {
	switch target {
	case config.SourcePostgres:
		if cfg.Source.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("--postgres-dsn is required")
		}
		if err := migrations.RunPostgresMigrations(cfg.Source.PostgresDSN); err != nil {
			return nil, nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.Source.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewTransactionStore(pool), pool.Close, nil

	case config.SourceClickhouse:
		if cfg.Source.ClickhouseDSN == "" {
			return nil, nil, fmt.Errorf("--clickhouse-dsn is required")
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Source.ClickhouseDSN)
		if err != nil {
			return nil, nil, err
		}
		return chstore.NewTransactionStore(conn), func() { _ = conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown ingest target %q", target)
}
