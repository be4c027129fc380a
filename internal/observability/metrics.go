// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RowsLoaded  *prometheus.CounterVec
	RowsSkipped *prometheus.CounterVec

	// Engine metrics
	ComputationsTotal   prometheus.Counter
	ComputationDuration prometheus.Histogram
	TransactionsScanned prometheus.Gauge
	RecordsProduced     prometheus.Gauge

	// Detail metrics
	DetailRequests *prometheus.CounterVec
	DetailRows     prometheus.Histogram
	ExportsTotal   *prometheus.CounterVec

	// Verification metrics
	ReconciliationChecks *prometheus.CounterVec

	// Snapshot metrics
	SnapshotLoads        *prometheus.CounterVec
	SnapshotLoadDuration *prometheus.HistogramVec
	SnapshotRows         prometheus.Gauge

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec

	// Health metrics
	LastSuccessfulLoad prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ad_revenue_lab"
	}

	return &Metrics{
		// Ingestion metrics
		RowsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_loaded_total",
			Help:      "Total number of ledger rows loaded by source",
		}, []string{"source"}),
		RowsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_skipped_total",
			Help:      "Total number of invalid ledger rows skipped by source",
		}, []string{"source"}),

		// Engine metrics
		ComputationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "computations_total",
			Help:      "Total number of metric summaries computed",
		}),
		ComputationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "computation_duration_seconds",
			Help:      "Metric summary computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionsScanned: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "transactions_scanned",
			Help:      "Number of transactions scanned by the last computation",
		}),
		RecordsProduced: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "records_produced",
			Help:      "Number of metric records produced by the last computation",
		}),

		// Detail metrics
		DetailRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detail",
			Name:      "requests_total",
			Help:      "Total number of detail selections by metric",
		}, []string{"metric"}),
		DetailRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detail",
			Name:      "rows",
			Help:      "Number of rows returned by detail selections",
			Buckets:   []float64{0, 10, 100, 500, 1000, 5000, 10000},
		}),
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detail",
			Name:      "exports_total",
			Help:      "Total number of detail exports by format",
		}, []string{"format"}),

		// Verification metrics
		ReconciliationChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "checks_total",
			Help:      "Total number of reconciliation checks by outcome",
		}, []string{"outcome"}),

		// Snapshot metrics
		SnapshotLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "loads_total",
			Help:      "Total number of snapshot loads by source and status",
		}, []string{"source", "status"}),
		SnapshotLoadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "load_duration_seconds",
			Help:      "Snapshot load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"source"}),
		SnapshotRows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "rows",
			Help:      "Number of transactions in the active snapshot",
		}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		DBConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "connections",
			Help:      "Number of database connections by state",
		}, []string{"database", "state"}),

		// Health metrics
		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful snapshot load",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordIngest records loaded and skipped ledger rows for a source.
func RecordIngest(source string, loaded, skipped int) {
	DefaultMetrics.RowsLoaded.WithLabelValues(source).Add(float64(loaded))
	DefaultMetrics.RowsSkipped.WithLabelValues(source).Add(float64(skipped))
}

// RecordComputation records one summary computation.
func RecordComputation(transactions, records int, seconds float64) {
	DefaultMetrics.ComputationsTotal.Inc()
	DefaultMetrics.ComputationDuration.Observe(seconds)
	DefaultMetrics.TransactionsScanned.Set(float64(transactions))
	DefaultMetrics.RecordsProduced.Set(float64(records))
}

// RecordDetailRequest records one detail selection.
func RecordDetailRequest(metric string, rows int) {
	DefaultMetrics.DetailRequests.WithLabelValues(metric).Inc()
	DefaultMetrics.DetailRows.Observe(float64(rows))
}

// RecordExport increments the export counter for format.
func RecordExport(format string) {
	DefaultMetrics.ExportsTotal.WithLabelValues(format).Inc()
}

// RecordReconciliation records check outcomes of one reconciliation run.
func RecordReconciliation(passed, failed, warnings int) {
	DefaultMetrics.ReconciliationChecks.WithLabelValues("pass").Add(float64(passed))
	DefaultMetrics.ReconciliationChecks.WithLabelValues("fail").Add(float64(failed))
	DefaultMetrics.ReconciliationChecks.WithLabelValues("warning").Add(float64(warnings))
}

// RecordSnapshotLoad records a snapshot load attempt.
func RecordSnapshotLoad(source, status string, seconds float64, rows int) {
	DefaultMetrics.SnapshotLoads.WithLabelValues(source, status).Inc()
	DefaultMetrics.SnapshotLoadDuration.WithLabelValues(source).Observe(seconds)
	if status == "success" {
		DefaultMetrics.SnapshotRows.Set(float64(rows))
		DefaultMetrics.LastSuccessfulLoad.Set(float64(time.Now().Unix()))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, route string, status int, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateDBConnections sets the connection gauges for database.
func UpdateDBConnections(database string, acquired, idle int) {
	DefaultMetrics.DBConnections.WithLabelValues(database, "acquired").Set(float64(acquired))
	DefaultMetrics.DBConnections.WithLabelValues(database, "idle").Set(float64(idle))
}
