// Package dashboard serves summaries and detail selections over an
// immutable ledger snapshot. Reloading builds a new snapshot and swaps it
// in atomically; readers never observe a partially loaded ledger.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"

	"ad-revenue-lab/internal/detail"
	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/metrics"
	"ad-revenue-lab/internal/observability"
	"ad-revenue-lab/internal/reporting"
	"ad-revenue-lab/internal/storage/memory"
	"ad-revenue-lab/internal/verification"
)

// ErrNotLoaded is returned before the first successful Load.
var ErrNotLoaded = errors.New("snapshot not loaded")

// Snapshot is one immutable load of the ledger.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Rows     int
	Periods  []int

	store *memory.TransactionStore
}

// Store exposes the snapshot's read-only transaction store.
func (s *Snapshot) Store() *memory.TransactionStore {
	return s.store
}

// Service owns the active snapshot.
type Service struct {
	source   Source
	defaults domain.Context
	now      func() time.Time

	loadMu sync.Mutex
	snap   atomic.Pointer[Snapshot]
}

// NewService creates a service reading from source. defaults is used for
// any context field a request leaves unset.
func NewService(source Source, defaults domain.Context) *Service {
	return &Service{
		source:   source,
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Defaults returns the default computation context.
func (s *Service) Defaults() domain.Context {
	return s.defaults
}

// Load reads the source into a new snapshot and makes it active. On
// failure the previous snapshot stays active.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	snap, err := s.build(ctx)
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordSnapshotLoad(s.source.Name(), "error", elapsed.Seconds(), 0)
		return nil, fmt.Errorf("load %s snapshot: %w", s.source.Name(), err)
	}

	s.snap.Store(snap)
	observability.RecordSnapshotLoad(snap.Source, "success", elapsed.Seconds(), snap.Rows)
	log.Info().
		Str("snapshot", snap.ID).
		Str("source", snap.Source).
		Int("rows", snap.Rows).
		Ints("periods", snap.Periods).
		Str("took", durafmt.Parse(elapsed).LimitFirstN(2).String()).
		Msg("snapshot loaded")

	return snap, nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	txs, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	store := memory.NewTransactionStore()
	if err := store.InsertBulk(ctx, txs); err != nil {
		return nil, fmt.Errorf("index transactions: %w", err)
	}
	periods, err := store.Periods(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   s.source.Name(),
		LoadedAt: s.now(),
		Rows:     store.Len(),
		Periods:  periods,
		store:    store,
	}, nil
}

// Snapshot returns the active snapshot.
func (s *Service) Snapshot() (*Snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Context returns the default context with period and business
// attribute overridden when non-zero.
func (s *Service) Context(period int, attr string) domain.Context {
	c := s.defaults
	if period != 0 {
		c.Period = period
	}
	if attr != "" {
		c.TargetBusinessAttribute = attr
	}
	return c
}

// Summary computes the metric summary for c over the active snapshot.
func (s *Service) Summary(ctx context.Context, c domain.Context) (*metrics.Summary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return metrics.NewAggregator(snap.store).ComputeSummary(ctx, c)
}

// Detail selects the rows behind one summary cell.
func (s *Service) Detail(ctx context.Context, m domain.Metric, region string, c domain.Context) (*detail.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	txs, err := snap.store.GetByPeriod(ctx, c.Period)
	if err != nil {
		return nil, err
	}

	res := detail.Describe(txs, m, region, c)
	observability.RecordDetailRequest(m.String(), res.Len())
	return res, nil
}

// Verify reconciles the summary for c against its ledger rows.
func (s *Service) Verify(ctx context.Context, c domain.Context) (*verification.Report, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	txs, err := snap.store.GetByPeriod(ctx, c.Period)
	if err != nil {
		return nil, err
	}
	return verification.Reconcile(txs, metrics.Compute(txs, c)), nil
}

// Report builds the rendered summary report for c.
func (s *Service) Report(ctx context.Context, c domain.Context) (*reporting.Report, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return reporting.NewGenerator(snap.store).WithClock(s.now).Generate(ctx, c)
}
