package scrub

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// State is the lifecycle position of a Pipeline run.
type State int

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateStart means the run is initializing its counters and streams.
	StateStart
	// StateStreaming means records are being processed.
	StateStreaming
	// StateFinished means output was flushed and the summary emitted.
	StateFinished
	// StateFailed means a stream error aborted the run.
	StateFailed
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStart:
		return "start"
	case StateStreaming:
		return "streaming"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Pipeline drives one forward pass: scan, validate, repair, clean, write.
// A Pipeline may be reused for sequential runs but not concurrently.
type Pipeline struct {
	opts      Options
	log       zerolog.Logger
	reporters []Reporter
	now       func() time.Time
	state     State
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithReporter adds a Reporter that receives the run summary. Reporters that
// implement ProgressReporter also receive periodic snapshots.
func WithReporter(r Reporter) PipelineOption {
	return func(p *Pipeline) {
		p.reporters = append(p.reporters, r)
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New validates opts and returns a Pipeline. An invalid configuration is
// reported as an *OptionsError before any input is touched.
func New(opts Options, options ...PipelineOption) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		opts: opts,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Run sanitizes in into out with the default pipeline configured by opts.
func Run(in io.Reader, out io.Writer, opts Options) (RunStats, error) {
	p, err := New(opts)
	if err != nil {
		return RunStats{}, err
	}
	return p.Run(in, out)
}

// State returns the state of the current or last run.
func (p *Pipeline) State() State {
	return p.state
}

// Run processes in to completion and writes canonical records to out.
//
// Malformed records never stop the run. A read or write failure does: Run
// then returns the counters accumulated so far together with a
// *StreamError.
func (p *Pipeline) Run(in io.Reader, out io.Writer) (RunStats, error) {
	p.setState(StateStart)
	start := p.now()

	var stats RunStats
	width := NewExpectedWidth(p.opts.ExpectedColumns)
	scanner := NewScanner(in, p.opts.InputDialect())
	writer := NewWriter(out, p.opts.OutputDialect())
	validator := NewValidator(p.opts.InputDialect(), p.opts.RepairEnabled)

	var clean *cleaner
	headerChecked := false
	if p.opts.needsCleaning() {
		clean = newCleaner(p.opts)
	}
	var bad *bufio.Writer
	if p.opts.BadRows != nil {
		bad = bufio.NewWriter(p.opts.BadRows)
	}

	fail := func(err error) (RunStats, error) {
		stats.BytesRead = scanner.BytesRead()
		stats.Elapsed = p.now().Sub(start)
		p.setState(StateFailed)
		p.log.Error().Err(err).
			Int64("seen", stats.Seen).
			Int64("dropped", stats.Dropped).
			Msg("run aborted")
		return stats, err
	}

	p.setState(StateStreaming)
	for scanner.Scan() {
		rec := scanner.Record()
		verdict := validator.Validate(rec, width)

		if clean != nil {
			if verdict.Kind != Reject {
				cleaned, ok := clean.clean(verdict.Record)
				if !ok {
					verdict = Verdict{Kind: Reject, Reason: ReasonNullColumn}
				} else {
					verdict.Record = cleaned
				}
			} else if !clean.sawHeader {
				clean.skipHeader(rec)
			}
			if !headerChecked {
				headerChecked = true
				for _, name := range clean.missing {
					p.log.Warn().Str("column", name).Msg("drop-if-null column not in header")
				}
			}
		}

		if verdict.Kind == Reject {
			if bad != nil {
				bad.Write(rec.Raw())
				if err := bad.WriteByte('\n'); err != nil {
					return fail(&StreamError{Op: "write", Line: rec.Line(), Err: err})
				}
			}
			stats.Seen++
			stats.Dropped++
			if verdict.Reason == ReasonTruncated {
				stats.Truncated++
			}
			p.log.Debug().
				Int("line", rec.Line()).
				Int("fields", rec.NumFields()).
				Stringer("reason", verdict.Reason).
				Err(verdict.Reason.Err()).
				Msg("record dropped")
		} else {
			if err := writer.Write(verdict.Record); err != nil {
				return fail(err)
			}
			stats.Seen++
			stats.Written++
			if verdict.Kind == Repaired {
				stats.Repaired++
				p.log.Debug().
					Int("line", rec.Line()).
					Int("anomalies", rec.Anomalies()).
					Msg("record repaired")
			}
		}

		if p.opts.ProgressEvery > 0 && stats.Seen%int64(p.opts.ProgressEvery) == 0 {
			snapshot := stats
			snapshot.BytesRead = scanner.BytesRead()
			snapshot.Elapsed = p.now().Sub(start)
			p.progress(snapshot)
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(err)
	}

	if err := writer.Flush(); err != nil {
		return fail(err)
	}
	if bad != nil {
		if err := bad.Flush(); err != nil {
			return fail(&StreamError{Op: "flush", Err: err})
		}
	}

	stats.BytesRead = scanner.BytesRead()
	stats.Elapsed = p.now().Sub(start)
	p.setState(StateFinished)

	n, _ := width.Get()
	p.report(Summary{RunStats: stats, Width: n})
	return stats, nil
}

func (p *Pipeline) setState(s State) {
	p.state = s
	p.log.Debug().Stringer("state", s).Msg("pipeline state")
}

func (p *Pipeline) progress(stats RunStats) {
	for _, r := range p.reporters {
		if pr, ok := r.(ProgressReporter); ok {
			pr.Progress(stats)
		}
	}
}

// report hands the summary to every reporter. A failing reporter is logged;
// it does not turn a completed run into a failed one.
func (p *Pipeline) report(s Summary) {
	for _, r := range p.reporters {
		if err := r.Report(s); err != nil {
			p.log.Error().Err(err).Msg("summary report failed")
		}
	}
}
