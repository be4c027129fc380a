package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/fixtures"
	"ad-revenue-lab/internal/ledger"
	"ad-revenue-lab/internal/storage/memory"
)

var fixedClock = func() time.Time { return time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC) }

func testContext() domain.Context {
	return domain.Context{Period: 202509, TargetBusinessAttribute: "外卖BD", Countries: []string{"AU", "NZ", "US"}}
}

func newSampleService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(&SampleSource{Options: fixtures.DefaultOptions(testContext())}, testContext()).WithClock(fixedClock)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	return svc
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Load(context.Context) ([]*domain.Transaction, error) {
	return nil, errors.New("unavailable")
}

func TestService_NotLoaded(t *testing.T) {
	svc := NewService(failingSource{}, testContext())

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = svc.Summary(context.Background(), testContext())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestService_LoadSample(t *testing.T) {
	svc := newSampleService(t)

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "sample", snap.Source)
	assert.Equal(t, fixtures.DefaultRows+fixtures.DefaultNoiseRows, snap.Rows)
	assert.Equal(t, []int{202508, 202509}, snap.Periods)
	assert.Equal(t, fixedClock(), snap.LoadedAt)
	assert.NotEmpty(t, snap.ID)
}

func TestService_FailedReloadKeepsSnapshot(t *testing.T) {
	svc := newSampleService(t)
	before, err := svc.Snapshot()
	require.NoError(t, err)

	svc.source = failingSource{}
	_, err = svc.Load(context.Background())
	require.Error(t, err)

	after, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
}

func TestService_ReloadSwapsSnapshot(t *testing.T) {
	svc := newSampleService(t)
	before, _ := svc.Snapshot()

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	after, _ := svc.Snapshot()
	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, before.Rows, after.Rows)
}

func TestService_SummaryMatchesDetail(t *testing.T) {
	svc := newSampleService(t)
	ctx := context.Background()
	c := testContext()

	summary, err := svc.Summary(ctx, c)
	require.NoError(t, err)

	res, err := svc.Detail(ctx, domain.MetricCountryRevenue, "AU", c)
	require.NoError(t, err)
	assert.True(t, summary.MustValue("AU", domain.MetricCountryRevenue).Equal(res.AmountSum))

	res, err = svc.Detail(ctx, domain.MetricADDeptBDCount, "Global", c)
	require.NoError(t, err)
	assert.Equal(t, summary.MustValue("Global", domain.MetricADDeptBDCount).IntPart(), int64(res.Salespeople))
}

func TestService_ContextOverrides(t *testing.T) {
	svc := NewService(failingSource{}, testContext())

	c := svc.Context(0, "")
	assert.Equal(t, testContext(), c)

	c = svc.Context(202508, "其他业务")
	assert.Equal(t, 202508, c.Period)
	assert.Equal(t, "其他业务", c.TargetBusinessAttribute)
	assert.Equal(t, testContext().Countries, c.Countries)
}

func TestService_VerifyAndReport(t *testing.T) {
	svc := newSampleService(t)
	ctx := context.Background()

	rep, err := svc.Verify(ctx, testContext())
	require.NoError(t, err)
	assert.True(t, rep.OK())

	report, err := svc.Report(ctx, testContext())
	require.NoError(t, err)
	assert.Equal(t, fixedClock(), report.GeneratedAt)
	assert.True(t, report.Reconciliation.AllChecksPassed)
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "所属账期,3级部门,国家,广告类型,到账金额_gbp,业务属性,销售人工号\n" +
		"202509,AU,AU,同业广告,\"1,000.50\",外卖BD,10001\n" +
		"202509,XX,XX,同业广告,5,外卖BD,10002\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := &CSVSource{Path: path, Options: ledger.Options{Context: testContext(), SkipInvalid: true}}
	svc := NewService(src, testContext())
	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "csv", snap.Source)
	assert.Equal(t, 1, snap.Rows)

	summary, err := svc.Summary(context.Background(), testContext())
	require.NoError(t, err)
	assert.Equal(t, "1000.50", summary.MustValue("AU", domain.MetricCountryRevenue).StringFixed(2))
}

func TestStoreSource(t *testing.T) {
	store := memory.NewTransactionStore()
	require.NoError(t, store.InsertBulk(context.Background(), fixtures.Generate(fixtures.DefaultOptions(testContext()))))

	svc := NewService(NewStoreSource("memory", store), testContext())
	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", snap.Source)
	assert.Equal(t, store.Len(), snap.Rows)
}

func TestService_DetailKeepsLedgerOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "所属账期,3级部门,国家,广告类型,到账金额_gbp,业务属性,销售人工号\n" +
		"202509,AU,AU,同业广告,3,外卖BD,30003\n" +
		"202509,AU,AU,同业广告,1,外卖BD,10001\n" +
		"202509,AU,AU,同业广告,2,外卖BD,20002\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	svc := NewService(&CSVSource{Path: path, Options: ledger.Options{Context: testContext()}}, testContext())
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	res, err := svc.Detail(context.Background(), domain.MetricCountryRevenue, "AU", testContext())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	var got []string
	for _, tx := range res.Rows {
		got = append(got, tx.SalespersonID)
	}
	assert.Equal(t, []string{"30003", "10001", "20002"}, got)
}
