package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Values(t *testing.T) {
	m := New()
	m.SetCorpus(18846, 20)
	m.SetMatrix(40000, 1234)
	m.AddEntries(39998, 2)
	m.ObserveStage(StageLoad, 1500*time.Millisecond)

	assert.Equal(t, 18846.0, testutil.ToFloat64(m.documents))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.categories))
	assert.Equal(t, 40000.0, testutil.ToFloat64(m.vocabularySize))
	assert.Equal(t, 1234.0, testutil.ToFloat64(m.matrixNonZero))
	assert.Equal(t, 39998.0, testutil.ToFloat64(m.entriesWritten))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entriesSkipped))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.stageDuration.WithLabelValues(StageLoad)))
}

func TestMetrics_RegistryIsPrivate(t *testing.T) {
	a, b := New(), New()
	a.SetCorpus(1, 1)

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}
	docs := byName["ngvocab_documents_loaded"]
	require.NotNil(t, docs)
	assert.Equal(t, 0.0, docs.GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.SetCorpus(15, 3)
	m.AddEntries(4, 0)
	m.ObserveStage(StageWrite, 10*time.Millisecond)
	m.MarkSuccess(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "ngvocab.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "ngvocab_documents_loaded 15")
	assert.Contains(t, out, "ngvocab_vocabulary_entries_written_total 4")
	assert.Contains(t, out, `ngvocab_stage_duration_seconds{stage="write"} 0.01`)
	assert.Contains(t, out, "ngvocab_last_success_timestamp_seconds 1.7e+09")
}
