// Package cli implements the shape-scrub command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shapestone/shape-scrub/internal/config"
	"github.com/shapestone/shape-scrub/internal/logger"
	"github.com/shapestone/shape-scrub/internal/metrics"
	"github.com/shapestone/shape-scrub/pkg/scrub"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitTooManyBad = 2
)

// Execute runs the command and exits the process with the matching code.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "shape-scrub: %v\n", err)
	}
	os.Exit(ExitCode(err))
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, scrub.ErrTooManyBadRows):
		return ExitTooManyBad
	default:
		return ExitError
	}
}

func newRootCmd() *cobra.Command {
	flags := config.Default()
	var configPath, outputPath string

	cmd := &cobra.Command{
		Use:   "shape-scrub [flags] [INPUT]",
		Short: "Clean up delimited text so every row has the same width",
		Long: `shape-scrub reads CSV (or another delimited format), drops rows whose
field count does not match the first row, repairs rows broken by unescaped
quotes where it can, and writes canonical CSV.

INPUT defaults to standard input; "-" also means standard input.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Default()
			if configPath != "" {
				if err := config.Load(configPath, &settings); err != nil {
					return err
				}
			}
			settings.Merge(flags, func(name string) bool {
				return cmd.Flags().Changed(name)
			})

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runScrub(cmd, settings, input, outputPath)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML file with default settings; flags override it")
	f.StringVarP(&outputPath, "output", "o", "", "write output to this file instead of standard output")
	bindSettings(f, &flags)

	cmd.AddCommand(newVerifyCmd())
	return cmd
}

// bindSettings registers one flag per config.Settings field.
func bindSettings(f *pflag.FlagSet, s *config.Settings) {
	f.StringVarP(&s.Delimiter, "delimiter", "d", s.Delimiter, `input delimiter: one byte, \t, tab or auto`)
	f.StringVar(&s.OutputDelimiter, "output-delimiter", s.OutputDelimiter, "output delimiter (default: same as input)")
	f.StringVar(&s.Quote, "quote", s.Quote, `quote character, or "none" to ignore quotes on input`)
	f.IntVar(&s.ExpectedColumns, "expected-columns", s.ExpectedColumns, "expected fields per row (default: taken from the first row)")
	f.BoolVar(&s.NoRepair, "no-repair", s.NoRepair, "drop rows broken by unescaped quotes instead of repairing them")
	f.BoolVar(&s.CRLF, "crlf", s.CRLF, `terminate output rows with \r\n`)
	f.StringVarP(&s.Null, "null", "n", s.Null, "convert values fully matching this regex to empty; use (?i) for case-insensitive")
	f.BoolVar(&s.ReplaceNewlines, "replace-newlines", s.ReplaceNewlines, "replace line breaks inside values with a space")
	f.BoolVar(&s.TrimWhitespace, "trim-whitespace", s.TrimWhitespace, "trim ASCII whitespace around values")
	f.BoolVar(&s.CleanColumnNames, "clean-column-names", s.CleanColumnNames, "make header names unique lowercase identifiers")
	f.StringSliceVar(&s.DropRowIfNull, "drop-row-if-null", s.DropRowIfNull, "drop rows where this column is empty (repeatable)")
	f.StringVar(&s.BadRowsPath, "bad-rows-path", s.BadRowsPath, "write the raw text of dropped rows to this file")
	f.IntVar(&s.ProgressEvery, "progress-every", s.ProgressEvery, "log progress every N rows (0 disables)")
	f.BoolVarP(&s.Quiet, "quiet", "q", s.Quiet, "do not print the summary line")
	f.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&s.MetricsFile, "metrics-file", s.MetricsFile, "write run metrics in Prometheus text format to this file")
}

func runScrub(cmd *cobra.Command, s config.Settings, input, outputPath string) (err error) {
	log := logger.New(logger.Config{Level: s.LogLevel, Out: cmd.ErrOrStderr()})

	opts, sniff, err := s.Options()
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer closeIn()

	var r io.Reader = in
	if sniff {
		var delim byte
		delim, r, err = scrub.SniffDelimiter(in, opts.Quote)
		if err != nil {
			return err
		}
		opts.InputDelimiter = delim
		log.Info().Str("delimiter", fmt.Sprintf("%q", delim)).Msg("detected delimiter")
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, cerr := os.Create(outputPath)
		if cerr != nil {
			return cerr
		}
		defer closeFile(f, &err)
		out = f
	}

	if s.BadRowsPath != "" {
		f, cerr := os.Create(s.BadRowsPath)
		if cerr != nil {
			return cerr
		}
		defer closeFile(f, &err)
		opts.BadRows = f
	}

	pipelineOpts := []scrub.PipelineOption{
		scrub.WithLogger(log),
		scrub.WithReporter(&summaryReporter{out: cmd.ErrOrStderr(), log: log, quiet: s.Quiet}),
	}
	if s.MetricsFile != "" {
		pipelineOpts = append(pipelineOpts, scrub.WithReporter(metrics.New(input, s.MetricsFile)))
	}

	p, err := scrub.New(opts, pipelineOpts...)
	if err != nil {
		return err
	}
	stats, err := p.Run(r, out)
	if err != nil {
		return err
	}

	if stats.BadRatioExceeded() {
		return fmt.Errorf("%w (%d of %d)", scrub.ErrTooManyBadRows, stats.Dropped, stats.Seen)
	}
	return nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// closeFile closes f and reports the close error unless an earlier error
// is already being returned.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// summaryReporter prints the one-line summary and logs progress snapshots.
type summaryReporter struct {
	out   io.Writer
	log   zerolog.Logger
	quiet bool
}

func (r *summaryReporter) Report(s scrub.Summary) error {
	r.log.Debug().
		Int64("seen", s.Seen).
		Int64("written", s.Written).
		Int64("dropped", s.Dropped).
		Int64("repaired", s.Repaired).
		Int("width", s.Width).
		Dur("elapsed", s.Elapsed).
		Msg("run finished")
	if r.quiet {
		return nil
	}
	_, err := fmt.Fprintln(r.out, s.String())
	return err
}

func (r *summaryReporter) Progress(s scrub.RunStats) {
	r.log.Info().
		Int64("seen", s.Seen).
		Int64("dropped", s.Dropped).
		Int64("bytes", s.BytesRead).
		Msg("progress")
}
