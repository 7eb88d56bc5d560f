package prometheus

import (
	"time"
)

// Archive and entry label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"

	OutcomeExtracted = "extracted"
	OutcomeSkipped   = "skipped"
	OutcomeIgnored   = "ignored"
)

// DefaultArchiveDurationBuckets spans small daily archives to multi-GB
// yearly bundles.
var DefaultArchiveDurationBuckets = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// IngestMetrics holds the metrics of one ingestion run.
type IngestMetrics struct {
	ArchivesTotal          CounterVec
	EntriesTotal           CounterVec
	SkipsTotal             CounterVec
	RecordsTotal           CounterVec
	DedupDroppedTotal      CounterVec
	ArchiveDurationSeconds HistogramVec
	RunDurationSeconds     GaugeVec
}

// NewIngestMetrics registers the ingestion metrics on c.
func NewIngestMetrics(c MetricsCollector) *IngestMetrics {
	return &IngestMetrics{
		ArchivesTotal:          c.RegisterCounter("archives_total", "Archives processed, by status.", "status"),
		EntriesTotal:           c.RegisterCounter("entries_total", "Archive entries seen, by outcome.", "outcome"),
		SkipsTotal:             c.RegisterCounter("skips_total", "Skipped entries and archives, by error code.", "code"),
		RecordsTotal:           c.RegisterCounter("records_total", "Records extracted, by year.", "year"),
		DedupDroppedTotal:      c.RegisterCounter("dedup_dropped_total", "Records dropped by deduplication."),
		ArchiveDurationSeconds: c.RegisterHistogram("archive_duration_seconds", "Time to read and decode one archive.", DefaultArchiveDurationBuckets),
		RunDurationSeconds:     c.RegisterGauge("run_duration_seconds", "Wall time of the last run."),
	}
}

// ObserveArchive records one finished archive.
func (m *IngestMetrics) ObserveArchive(year string, ok bool, records int, elapsed time.Duration) {
	status := StatusOK
	if !ok {
		status = StatusFailed
	}
	m.ArchivesTotal.WithLabelValues(status).Inc()
	m.ArchiveDurationSeconds.WithLabelValues().Observe(elapsed.Seconds())
	if records > 0 {
		m.RecordsTotal.WithLabelValues(year).Add(float64(records))
	}
}

// ObserveEntries adds n entries with outcome.
func (m *IngestMetrics) ObserveEntries(outcome string, n int) {
	if n > 0 {
		m.EntriesTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveSkip counts one skip by error code.
func (m *IngestMetrics) ObserveSkip(code string) {
	m.SkipsTotal.WithLabelValues(code).Inc()
}

// ObserveDedup records the records dropped by deduplication.
func (m *IngestMetrics) ObserveDedup(dropped int) {
	m.DedupDroppedTotal.WithLabelValues().Add(float64(dropped))
}

// ObserveRun records the run's wall time.
func (m *IngestMetrics) ObserveRun(elapsed time.Duration) {
	m.RunDurationSeconds.WithLabelValues().Set(elapsed.Seconds())
}

//Personal.AI order the ending
