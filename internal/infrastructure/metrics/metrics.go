package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Verification metrics
	VerificationsCreated *prometheus.CounterVec
	VerificationRows     prometheus.Histogram
	VerificationErrors   *prometheus.CounterVec

	// Engine metrics
	AccrualsExecuted  prometheus.Counter
	AccrualPeriods    prometheus.Histogram
	ClosingsExecuted  *prometheus.CounterVec
	CorrectionsPosted prometheus.Counter
	ReportsComputed   *prometheus.CounterVec
	ExportsGenerated  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Verification metrics
		VerificationsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_verifications_created_total",
				Help: "Total number of verifications posted, by source type",
			},
			[]string{"source"},
		),
		VerificationRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "klarbok_verification_rows",
			Help:    "Rows per posted verification",
			Buckets: []float64{2, 3, 4, 6, 10, 20, 50},
		}),
		VerificationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_verification_errors_total",
				Help: "Total number of rejected postings by error class",
			},
			[]string{"error_class"},
		),

		// Engine metrics
		AccrualsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "klarbok_accruals_executed_total",
			Help: "Total number of executed accruals",
		}),
		AccrualPeriods: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "klarbok_accrual_periods",
			Help:    "Periods per executed accrual",
			Buckets: []float64{1, 3, 6, 12, 24, 36, 60},
		}),
		ClosingsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_closings_executed_total",
				Help: "Total number of executed year-end closings by company type",
			},
			[]string{"company_type"},
		),
		CorrectionsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "klarbok_corrections_posted_total",
			Help: "Total number of posted corrections",
		}),
		ReportsComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_reports_computed_total",
				Help: "Total number of computed report field maps by mapping version",
			},
			[]string{"mapping_version"},
		),
		ExportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_exports_generated_total",
				Help: "Total number of generated export files by format",
			},
			[]string{"format"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "klarbok_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "klarbok_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "klarbok_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
