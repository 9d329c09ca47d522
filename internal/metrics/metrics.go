// Package metrics records build run statistics in a private Prometheus registry
// and exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ngvocab"

// Stage names used with ObserveStage.
const (
	StageLoad      = "load"
	StageVectorize = "vectorize"
	StageWrite     = "write"
)

// Metrics holds the collectors of one build run.
type Metrics struct {
	registry *prometheus.Registry

	documents       prometheus.Gauge
	categories      prometheus.Gauge
	vocabularySize  prometheus.Gauge
	matrixNonZero   prometheus.Gauge
	entriesWritten  prometheus.Counter
	entriesSkipped  prometheus.Counter
	stageDuration   *prometheus.GaugeVec
	lastSuccessUnix prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents_loaded",
			Help:      "Documents loaded from the corpus cache.",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "categories",
			Help:      "Distinct newsgroup categories in the loaded corpus.",
		}),
		vocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Terms kept in the vocabulary.",
		}),
		matrixNonZero: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_nonzero",
			Help:      "Stored cells of the document-term matrix.",
		}),
		entriesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vocabulary_entries_written_total",
			Help:      "Vocabulary entries written to the output file.",
		}),
		entriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vocabulary_entries_skipped_total",
			Help:      "Vocabulary entries that could not be written.",
		}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each build stage.",
		}, []string{"stage"}),
		lastSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
	}
	m.registry.MustRegister(
		m.documents,
		m.categories,
		m.vocabularySize,
		m.matrixNonZero,
		m.entriesWritten,
		m.entriesSkipped,
		m.stageDuration,
		m.lastSuccessUnix,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SetCorpus(documents, categories int) {
	m.documents.Set(float64(documents))
	m.categories.Set(float64(categories))
}

func (m *Metrics) SetMatrix(vocabularySize, nonZero int) {
	m.vocabularySize.Set(float64(vocabularySize))
	m.matrixNonZero.Set(float64(nonZero))
}

func (m *Metrics) AddEntries(written, skipped int) {
	m.entriesWritten.Add(float64(written))
	m.entriesSkipped.Add(float64(skipped))
}

// ObserveStage records how long stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// MarkSuccess stamps the completion time of a successful build.
func (m *Metrics) MarkSuccess(t time.Time) {
	m.lastSuccessUnix.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path for the node exporter's textfile
// collector. The parent directory is created if needed.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
