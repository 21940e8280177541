package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.Entry("ok")
	r.Entry("ok")
	r.Entry("gap")
	r.Record(OutcomeResolved)
	r.Record(OutcomeSkipped)
	r.File()
	r.Run("2024a", "go", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.entries.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entries.WithLabelValues("gap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.duration))

	path := filepath.Join(t.TempDir(), "tzdbtest.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tzdbtest_entries_total{case="gap"} 1`)
	assert.Contains(t, string(data), `tzdbtest_tzdata_info{runtime="go",version="2024a"} 1`)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Entry("ok")
	r.Record(OutcomeResolved)
	r.File()
	r.Run("x", "y", time.Second)
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}
