// Package config loads shape-scrub settings from YAML and turns them into
// scrub.Options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-scrub/pkg/scrub"
)

// Settings is the command configuration in its textual form. The same
// struct backs the YAML file and the command-line flags; flag names are the
// YAML keys with dashes instead of underscores.
type Settings struct {
	Delimiter        string   `yaml:"delimiter"`
	OutputDelimiter  string   `yaml:"output_delimiter"`
	Quote            string   `yaml:"quote"`
	ExpectedColumns  int      `yaml:"expected_columns"`
	NoRepair         bool     `yaml:"no_repair"`
	CRLF             bool     `yaml:"crlf"`
	Null             string   `yaml:"null"`
	ReplaceNewlines  bool     `yaml:"replace_newlines"`
	TrimWhitespace   bool     `yaml:"trim_whitespace"`
	CleanColumnNames bool     `yaml:"clean_column_names"`
	DropRowIfNull    []string `yaml:"drop_row_if_null"`
	BadRowsPath      string   `yaml:"bad_rows_path"`
	ProgressEvery    int      `yaml:"progress_every"`
	Quiet            bool     `yaml:"quiet"`
	LogLevel         string   `yaml:"log_level"`
	MetricsFile      string   `yaml:"metrics_file"`
}

// Default returns the settings used when neither a file nor a flag says
// otherwise.
func Default() Settings {
	return Settings{
		Delimiter: ",",
		Quote:     `"`,
		LogLevel:  "info",
	}
}

// LoadError reports a configuration file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load decodes the YAML file at path over s. Keys absent from the file keep
// their current values; unknown keys are an error.
func Load(path string, s *Settings) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := Decode(bytes.NewReader(b), s); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// Decode reads YAML settings from r over s.
func Decode(r io.Reader, s *Settings) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Merge copies into s every setting whose flag was set explicitly on the
// command line, so flags win over the file.
func (s *Settings) Merge(flags Settings, changed func(flag string) bool) {
	for _, f := range fields {
		if changed(f.flag) {
			f.copy(s, &flags)
		}
	}
}

var fields = []struct {
	flag string
	copy func(dst, src *Settings)
}{
	{"delimiter", func(d, s *Settings) { d.Delimiter = s.Delimiter }},
	{"output-delimiter", func(d, s *Settings) { d.OutputDelimiter = s.OutputDelimiter }},
	{"quote", func(d, s *Settings) { d.Quote = s.Quote }},
	{"expected-columns", func(d, s *Settings) { d.ExpectedColumns = s.ExpectedColumns }},
	{"no-repair", func(d, s *Settings) { d.NoRepair = s.NoRepair }},
	{"crlf", func(d, s *Settings) { d.CRLF = s.CRLF }},
	{"null", func(d, s *Settings) { d.Null = s.Null }},
	{"replace-newlines", func(d, s *Settings) { d.ReplaceNewlines = s.ReplaceNewlines }},
	{"trim-whitespace", func(d, s *Settings) { d.TrimWhitespace = s.TrimWhitespace }},
	{"clean-column-names", func(d, s *Settings) { d.CleanColumnNames = s.CleanColumnNames }},
	{"drop-row-if-null", func(d, s *Settings) { d.DropRowIfNull = append([]string(nil), s.DropRowIfNull...) }},
	{"bad-rows-path", func(d, s *Settings) { d.BadRowsPath = s.BadRowsPath }},
	{"progress-every", func(d, s *Settings) { d.ProgressEvery = s.ProgressEvery }},
	{"quiet", func(d, s *Settings) { d.Quiet = s.Quiet }},
	{"log-level", func(d, s *Settings) { d.LogLevel = s.LogLevel }},
	{"metrics-file", func(d, s *Settings) { d.MetricsFile = s.MetricsFile }},
}

// Options converts the settings to pipeline options. sniff is true when the
// input delimiter is "auto" and must be detected from the data; the
// returned InputDelimiter is then ','.
//
// BadRows is left nil: opening files is up to the caller.
func (s Settings) Options() (opts scrub.Options, sniff bool, err error) {
	opts = scrub.DefaultOptions()

	if s.Delimiter == "auto" {
		sniff = true
	} else if opts.InputDelimiter, err = ParseDelimiter(s.Delimiter); err != nil {
		return opts, false, err
	}
	if s.OutputDelimiter != "" {
		if opts.OutputDelimiter, err = ParseDelimiter(s.OutputDelimiter); err != nil {
			return opts, false, err
		}
	}

	switch s.Quote {
	case "none":
		opts.NoQuoting = true
	case "":
	default:
		if len(s.Quote) != 1 {
			return opts, false, invalid("quote", s.Quote, "must be a single byte or none")
		}
		opts.Quote = s.Quote[0]
	}

	if s.Null != "" {
		if opts.NullPattern, err = CompileNull(s.Null); err != nil {
			return opts, false, err
		}
	}

	opts.ExpectedColumns = s.ExpectedColumns
	opts.RepairEnabled = !s.NoRepair
	opts.UseCRLF = s.CRLF
	opts.ReplaceNewlines = s.ReplaceNewlines
	opts.TrimWhitespace = s.TrimWhitespace
	opts.CleanColumnNames = s.CleanColumnNames
	opts.DropRowIfNull = s.DropRowIfNull
	opts.ProgressEvery = s.ProgressEvery
	return opts, sniff, nil
}

// ParseDelimiter accepts a single byte, the escape \t, or the word tab.
func ParseDelimiter(s string) (byte, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	if len(s) != 1 {
		return 0, invalid("delimiter", s, `must be a single byte, \t or tab`)
	}
	return s[0], nil
}

// CompileNull compiles a null pattern that must match a whole value.
func CompileNull(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: null pattern: %v", scrub.ErrInvalidOptions, err)
	}
	return re, nil
}

func invalid(name, value, msg string) error {
	return fmt.Errorf("%w: %s %q %s", scrub.ErrInvalidOptions, name, value, msg)
}
