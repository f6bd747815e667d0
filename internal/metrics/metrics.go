// Package metrics exports run counters in the Prometheus text format, for
// node-exporter's textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/shape-scrub/pkg/scrub"
)

const namespace = "shape_scrub"

// Recorder mirrors RunStats into Prometheus gauges. It implements
// scrub.Reporter and scrub.ProgressReporter; when Path is set, every summary
// is also written to that file.
type Recorder struct {
	registry *prometheus.Registry
	path     string

	seen      prometheus.Gauge
	written   prometheus.Gauge
	dropped   prometheus.Gauge
	repaired  prometheus.Gauge
	truncated prometheus.Gauge
	bytesRead prometheus.Gauge
	duration  prometheus.Gauge
	width     prometheus.Gauge
	lastRun   prometheus.Gauge
}

// New creates a Recorder on a private registry. input labels every series
// and path, if not empty, is the textfile written on Report.
func New(input, path string) *Recorder {
	labels := prometheus.Labels{"input": input}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	r := &Recorder{
		registry:  prometheus.NewRegistry(),
		path:      path,
		seen:      gauge("rows_seen", "Records read from the input."),
		written:   gauge("rows_written", "Records written to the output."),
		dropped:   gauge("rows_dropped", "Records rejected."),
		repaired:  gauge("rows_repaired", "Written records that needed quote repair."),
		truncated: gauge("rows_truncated", "Records cut off inside a quoted field at end of input."),
		bytesRead: gauge("input_bytes", "Bytes consumed from the input."),
		duration:  gauge("duration_seconds", "Wall time of the run."),
		width:     gauge("record_width", "Expected number of fields per record."),
		lastRun:   gauge("last_success_timestamp_seconds", "Unix time the last run finished."),
	}
	r.registry.MustRegister(
		r.seen, r.written, r.dropped, r.repaired, r.truncated,
		r.bytesRead, r.duration, r.width, r.lastRun,
	)
	return r
}

// Registry returns the registry holding the run gauges.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Progress updates the counters mid-run.
func (r *Recorder) Progress(s scrub.RunStats) {
	r.set(s)
}

// Report records the final summary and writes the textfile if configured.
func (r *Recorder) Report(s scrub.Summary) error {
	r.set(s.RunStats)
	r.width.Set(float64(s.Width))
	r.lastRun.SetToCurrentTime()
	if r.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(r.path, r.registry)
}

func (r *Recorder) set(s scrub.RunStats) {
	r.seen.Set(float64(s.Seen))
	r.written.Set(float64(s.Written))
	r.dropped.Set(float64(s.Dropped))
	r.repaired.Set(float64(s.Repaired))
	r.truncated.Set(float64(s.Truncated))
	r.bytesRead.Set(float64(s.BytesRead))
	r.duration.Set(s.Elapsed.Seconds())
}
