package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"ad-revenue-lab/internal/config"
	"ad-revenue-lab/internal/dashboard"
	"ad-revenue-lab/internal/fixtures"
	"ad-revenue-lab/internal/ledger"
	chstore "ad-revenue-lab/internal/storage/clickhouse"
	pgstore "ad-revenue-lab/internal/storage/postgres"
)

// backend is an opened snapshot source and its cleanup.
type backend struct {
	source  dashboard.Source
	pgPool  *pgstore.Pool
	cleanup func()
}

// openSource builds the snapshot source described by c.
func openSource(ctx context.Context, c *config.Config) (*backend, error) {
	noop := func() {}

	switch c.Source.Kind {
	case config.SourceCSV:
		return &backend{
			source: &dashboard.CSVSource{
				Path: c.Source.CSVPath,
				Options: ledger.Options{
					Context:     c.Context(),
					SkipInvalid: c.Source.SkipInvalid,
				},
			},
			cleanup: noop,
		}, nil

	case config.SourceSample:
		return &backend{
			source:  &dashboard.SampleSource{Options: sampleOptions(c)},
			cleanup: noop,
		}, nil

	case config.SourcePostgres:
		pool, err := pgstore.NewPool(ctx, c.Source.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &backend{
			source:  dashboard.NewStoreSource(config.SourcePostgres, pgstore.NewTransactionStore(pool)),
			pgPool:  pool,
			cleanup: pool.Close,
		}, nil

	case config.SourceClickhouse:
		conn, err := chstore.NewConn(ctx, c.Source.ClickhouseDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to clickhouse")
		return &backend{
			source:  dashboard.NewStoreSource(config.SourceClickhouse, chstore.NewTransactionStore(conn)),
			cleanup: func() { _ = conn.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unknown source kind %q", c.Source.Kind)
}

func sampleOptions(c *config.Config) fixtures.Options {
	opts := fixtures.DefaultOptions(c.Context())
	if c.Source.SampleRows > 0 {
		opts.Rows = c.Source.SampleRows
	}
	opts.Seed = c.Source.SampleSeed
	return opts
}

// loadService opens the configured source and loads the first snapshot.
// The caller must run the returned cleanup.
func loadService(ctx context.Context, c *config.Config) (*dashboard.Service, *backend, error) {
	b, err := openSource(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	svc := dashboard.NewService(b.source, c.Context())
	if _, err := svc.Load(ctx); err != nil {
		b.cleanup()
		return nil, nil, err
	}
	return svc, b, nil
}
