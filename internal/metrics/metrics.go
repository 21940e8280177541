// Package metrics counts what a generation run produced. The counters live
// in a private registry that is written out as a node-exporter textfile at
// the end of the run.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tzdbtest"

// Record outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeSkipped  = "skipped"
)

// Recorder holds the run counters. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	entries  *prometheus.CounterVec
	records  *prometheus.CounterVec
	files    prometheus.Counter
	duration prometheus.Gauge
	info     *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Fixture entries written, by case.",
		}, []string{"case"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Input records processed, by outcome.",
		}, []string{"outcome"}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Fixture files written.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of the last generation run.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tzdata_info",
			Help:      "Rule data used by the last run.",
		}, []string{"version", "runtime"}),
	}
	r.registry.MustRegister(r.entries, r.records, r.files, r.duration, r.info)
	return r
}

func (r *Recorder) Entry(c string) {
	if r == nil {
		return
	}
	r.entries.WithLabelValues(c).Inc()
}

func (r *Recorder) Record(outcome string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(outcome).Inc()
}

func (r *Recorder) File() {
	if r == nil {
		return
	}
	r.files.Inc()
}

func (r *Recorder) Run(version, runtime string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.info.WithLabelValues(version, runtime).Set(1)
	r.duration.Set(elapsed.Seconds())
}

// WriteTextfile writes the counters to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.registry), "writing metrics to %s", path)
}
