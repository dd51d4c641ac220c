package observability

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics mengumpulkan metrik Prometheus untuk mesin faktur.
type Metrics struct {
	registry *prometheus.Registry
	commits  *prometheus.CounterVec
	submits  *prometheus.CounterVec
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicing_line_commits_total",
		Help: "Jumlah commit baris faktur berdasarkan jenis dan hasil.",
	}, []string{"kind", "outcome"})
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicing_submissions_total",
		Help: "Jumlah percobaan submit faktur berdasarkan jenis dan hasil.",
	}, []string{"kind", "outcome"})
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicing_draft_checks_total",
		Help: "Jumlah pemeriksaan file draf berdasarkan status.",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicing_draft_check_duration_seconds",
		Help:    "Durasi pemeriksaan satu file draf.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	registry.MustRegister(commits, submits, checks, duration)
	return &Metrics{
		registry: registry,
		commits:  commits,
		submits:  submits,
		checks:   checks,
		duration: duration,
	}
}

// ObserveLineCommit mencatat hasil commit satu baris.
func (m *Metrics) ObserveLineCommit(kind, outcome string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(kind, outcome).Inc()
}

// ObserveSubmit mencatat hasil submit satu draf.
func (m *Metrics) ObserveSubmit(kind, outcome string) {
	if m == nil {
		return
	}
	m.submits.WithLabelValues(kind, outcome).Inc()
}

// Tracker mencatat satu pemeriksaan draf.
type Tracker struct {
	metrics *Metrics
	start   time.Time
}

// Track mulai mengukur durasi pemeriksaan draf.
func (m *Metrics) Track() *Tracker {
	return &Tracker{metrics: m, start: time.Now()}
}

// End mencatat pemeriksaan dengan status dan mengembalikan err apa adanya.
// Status bernilai "ok", "invalid" atau "error".
func (t *Tracker) End(status string, err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	if err != nil {
		status = "error"
	}
	t.metrics.checks.WithLabelValues(status).Inc()
	t.metrics.duration.WithLabelValues(status).Observe(time.Since(t.start).Seconds())
	return err
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer mengekspos registry untuk pembacaan metrik.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// WriteText menulis seluruh metrik terdaftar dalam format teks Prometheus.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Gatherer().Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
