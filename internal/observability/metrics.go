package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec

	backupExportsTotal        *prometheus.CounterVec
	backupExportSeconds       prometheus.Histogram
	backupRestoresTotal       *prometheus.CounterVec
	backupRestoreSeconds      prometheus.Histogram
	backupRecordErrorsTotal   *prometheus.CounterVec
	backupDeleteStrategyTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for admin observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		backupExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backup_exports_total",
			Help: "Total number of backup exports, labelled by outcome.",
		}, []string{"outcome"})

		backupExportSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backup_export_duration_seconds",
			Help:    "Time spent building a backup document.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		backupRestoresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backup_restores_total",
			Help: "Total number of restore attempts, labelled by outcome.",
		}, []string{"outcome"})

		backupRestoreSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backup_restore_duration_seconds",
			Help:    "Time spent restoring a backup document.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		})

		backupRecordErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backup_restore_record_errors_total",
			Help: "Records skipped during restore, labelled by entity.",
		}, []string{"entity"})

		backupDeleteStrategyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backup_restore_strategy_total",
			Help: "Deletion strategy that completed during restore.",
		}, []string{"strategy"})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			backupExportsTotal, backupExportSeconds,
			backupRestoresTotal, backupRestoreSeconds,
			backupRecordErrorsTotal, backupDeleteStrategyTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// BackupExports exposes the counter for backup exports.
func BackupExports() *prometheus.CounterVec {
	RegisterMetrics()
	return backupExportsTotal
}

// BackupExportDuration exposes the export duration histogram.
func BackupExportDuration() prometheus.Histogram {
	RegisterMetrics()
	return backupExportSeconds
}

// BackupRestores exposes the counter for restore attempts.
func BackupRestores() *prometheus.CounterVec {
	RegisterMetrics()
	return backupRestoresTotal
}

// BackupRestoreDuration exposes the restore duration histogram.
func BackupRestoreDuration() prometheus.Histogram {
	RegisterMetrics()
	return backupRestoreSeconds
}

// BackupRecordErrors exposes the per-entity skipped record counter.
func BackupRecordErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return backupRecordErrorsTotal
}

// BackupDeleteStrategy exposes the counter for completed deletion strategies.
func BackupDeleteStrategy() *prometheus.CounterVec {
	RegisterMetrics()
	return backupDeleteStrategyTotal
}
