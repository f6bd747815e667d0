package scrub

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// RunStats counts the outcome of a pass over one stream.
//
// Dropped + Written == Seen holds after every record.
type RunStats struct {
	Seen      int64
	Written   int64
	Dropped   int64
	Repaired  int64 // subset of Written
	Truncated int64 // subset of Dropped
	BytesRead int64
	Elapsed   time.Duration
}

// BytesPerSecond returns input throughput, or zero when no time elapsed.
func (s RunStats) BytesPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.BytesRead) / secs
}

// BadRatioExceeded reports whether more than one record in ten was dropped.
func (s RunStats) BadRatioExceeded() bool {
	return s.Dropped*10 > s.Seen
}

// Summary is emitted once, when a run reaches the Finished state.
type Summary struct {
	RunStats
	// Width is the latched record width, zero if no record latched it.
	Width int
}

// String formats the summary as one human-readable line.
func (s Summary) String() string {
	return fmt.Sprintf("%d rows (%d bad) in %.2f seconds, %s/sec",
		s.Seen, s.Dropped, s.Elapsed.Seconds(), humanize.IBytes(uint64(s.BytesPerSecond())))
}

// Reporter receives the run summary.
type Reporter interface {
	Report(Summary) error
}

// ProgressReporter is implemented by reporters that also want periodic
// snapshots while streaming.
type ProgressReporter interface {
	Progress(RunStats)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Summary) error

// Report calls f(s).
func (f ReporterFunc) Report(s Summary) error {
	return f(s)
}
