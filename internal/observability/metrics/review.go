// Package metrics provides Prometheus metrics for the review subsystem
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReviewMetrics contains Prometheus metrics for review assignment operations
type ReviewMetrics struct {
	registry *prometheus.Registry

	// Commit protocol metrics
	commitsTotal         *prometheus.CounterVec
	commitConflictsTotal *prometheus.CounterVec
	commitDuration       *prometheus.HistogramVec

	// Eligibility and scan metrics
	eligibilityQueriesTotal *prometheus.CounterVec
	eligibleQueueSizeHist   prometheus.Histogram
	scanPagesTotal          *prometheus.CounterVec
	scanRowsHist            *prometheus.HistogramVec

	// Auditor metrics
	auditRunsTotal       *prometheus.CounterVec
	auditReviewsDeleted  prometheus.Counter
	auditRecordingsFixed prometheus.Counter

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewReviewMetrics creates and registers new review metrics
func NewReviewMetrics(registry *prometheus.Registry) (*ReviewMetrics, error) {
	m := &ReviewMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *ReviewMetrics) initMetrics() error {
	m.commitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_commits_total",
			Help: "Total number of review commit attempts",
		},
		[]string{"decision", "result"}, // result: created, already_resolved, already_reviewed, error
	)

	m.commitConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_commit_conflicts_total",
			Help: "Total number of commit attempts lost to a concurrent reviewer",
		},
		[]string{"stage"}, // stage: precheck, claim, insert
	)

	m.commitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_commit_duration_seconds",
			Help:    "Time taken for review commit operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"result"},
	)

	m.eligibilityQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_eligibility_queries_total",
			Help: "Total number of eligibility queue computations",
		},
		[]string{"status"}, // status: success, error
	)

	m.eligibleQueueSizeHist = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_eligible_queue_size",
			Help:    "Number of recordings in computed eligibility queues",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	m.scanPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_scan_pages_total",
			Help: "Total number of pages fetched by full-table scans",
		},
		[]string{"table"},
	)

	m.scanRowsHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_scan_rows",
			Help:    "Number of rows returned by full-table scans",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"table"},
	)

	m.auditRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_audit_runs_total",
			Help: "Total number of consistency audit runs",
		},
		[]string{"status"}, // status: clean, repaired, error
	)

	m.auditReviewsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_audit_reviews_deleted_total",
			Help: "Total number of duplicate reviews deleted by the auditor",
		},
	)

	m.auditRecordingsFixed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_audit_recordings_fixed_total",
			Help: "Total number of recordings whose state was repaired by the auditor",
		},
	)

	m.collectors = []prometheus.Collector{
		m.commitsTotal,
		m.commitConflictsTotal,
		m.commitDuration,
		m.eligibilityQueriesTotal,
		m.eligibleQueueSizeHist,
		m.scanPagesTotal,
		m.scanRowsHist,
		m.auditRunsTotal,
		m.auditReviewsDeleted,
		m.auditRecordingsFixed,
	}

	return nil
}

// Describe implements the Collector interface
func (m *ReviewMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ReviewMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCommit records the outcome of a commit attempt.
// All recording methods are nil-safe so callers can run without metrics.
func (m *ReviewMetrics) RecordCommit(decision, result string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(decision, result).Inc()
}

// RecordCommitConflict records a commit attempt lost to a concurrent reviewer
func (m *ReviewMetrics) RecordCommitConflict(stage string) {
	if m == nil {
		return
	}
	m.commitConflictsTotal.WithLabelValues(stage).Inc()
}

// RecordCommitDuration records the duration of a commit attempt in seconds
func (m *ReviewMetrics) RecordCommitDuration(result string, seconds float64) {
	if m == nil {
		return
	}
	m.commitDuration.WithLabelValues(result).Observe(seconds)
}

// RecordEligibilityQuery records an eligibility queue computation
func (m *ReviewMetrics) RecordEligibilityQuery(status string, queueSize int) {
	if m == nil {
		return
	}
	m.eligibilityQueriesTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.eligibleQueueSizeHist.Observe(float64(queueSize))
	}
}

// RecordScan records a completed full-table scan
func (m *ReviewMetrics) RecordScan(table string, pages, rows int) {
	if m == nil {
		return
	}
	m.scanPagesTotal.WithLabelValues(table).Add(float64(pages))
	m.scanRowsHist.WithLabelValues(table).Observe(float64(rows))
}

// RecordAuditRun records the outcome of an audit run
func (m *ReviewMetrics) RecordAuditRun(status string, reviewsDeleted, recordingsFixed int) {
	if m == nil {
		return
	}
	m.auditRunsTotal.WithLabelValues(status).Inc()
	m.auditReviewsDeleted.Add(float64(reviewsDeleted))
	m.auditRecordingsFixed.Add(float64(recordingsFixed))
}
