package scrub

import (
	"io"
	"regexp"
)

// Dialect describes how input bytes are split into records and fields.
type Dialect struct {
	// Delimiter is the field separator. Default: ','
	Delimiter byte

	// Quote is the quote byte used to enclose fields. Default: '"'
	Quote byte

	// NoQuoting disables quote handling on input entirely; quote bytes are
	// then ordinary field content.
	NoQuoting bool
}

// DefaultDialect returns the comma-separated, double-quoted dialect.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter: ',',
		Quote:     '"',
	}
}

// OutputDialect describes canonical output formatting.
type OutputDialect struct {
	// Delimiter is the field separator to emit. Default: ','
	Delimiter byte

	// Quote is the quote byte used when a field needs enclosing. Default: '"'
	Quote byte

	// UseCRLF terminates records with \r\n instead of \n.
	UseCRLF bool
}

// Options configures a Pipeline.
type Options struct {
	// InputDelimiter is the field separator expected on input. Default: ','
	InputDelimiter byte

	// OutputDelimiter is the field separator emitted on output.
	// Zero means the same as InputDelimiter.
	OutputDelimiter byte

	// ExpectedColumns overrides auto-detection of the record width from the
	// first record. Zero means auto-detect.
	ExpectedColumns int

	// Quote is the quote byte for input and output. Default: '"'
	Quote byte

	// NoQuoting ignores quotes on input.
	NoQuoting bool

	// RepairEnabled controls whether width mismatches and records with a
	// lone quote are passed to Repair before being rejected. Default: true
	RepairEnabled bool

	// UseCRLF writes \r\n record terminators.
	UseCRLF bool

	// NullPattern, when set, blanks every value that fully matches it.
	NullPattern *regexp.Regexp

	// ReplaceNewlines turns LF, CRLF and CR inside values into a space.
	ReplaceNewlines bool

	// TrimWhitespace strips ASCII whitespace at both ends of each value.
	TrimWhitespace bool

	// CleanColumnNames rewrites the header record so names are unique and
	// contain only lowercase letters, digits and underscores.
	CleanColumnNames bool

	// DropRowIfNull names header columns that must be non-empty. Rows
	// violating this are dropped.
	DropRowIfNull []string

	// BadRows receives the raw bytes of every dropped record, one per line.
	BadRows io.Writer

	// ProgressEvery calls ProgressReporters after this many records.
	// Zero disables progress reporting.
	ProgressEvery int
}

// DefaultOptions returns the default pipeline configuration.
func DefaultOptions() Options {
	return Options{
		InputDelimiter: ',',
		Quote:          '"',
		RepairEnabled:  true,
	}
}

// InputDialect returns the dialect used by the Scanner and Repair.
func (o Options) InputDialect() Dialect {
	return Dialect{
		Delimiter: o.InputDelimiter,
		Quote:     o.Quote,
		NoQuoting: o.NoQuoting,
	}
}

// OutputDialect returns the dialect used by the Writer.
func (o Options) OutputDialect() OutputDialect {
	delim := o.OutputDelimiter
	if delim == 0 {
		delim = o.InputDelimiter
	}
	return OutputDialect{
		Delimiter: delim,
		Quote:     o.Quote,
		UseCRLF:   o.UseCRLF,
	}
}

// needsCleaning reports whether accepted records go through the Cleaner.
func (o Options) needsCleaning() bool {
	return o.NullPattern != nil ||
		o.ReplaceNewlines ||
		o.TrimWhitespace ||
		o.CleanColumnNames ||
		len(o.DropRowIfNull) > 0
}

// validDelim reports whether b can separate fields.
func validDelim(b byte) bool {
	return b != 0 && b != '\r' && b != '\n'
}

// Validate checks the options for conflicts. It returns an *OptionsError
// wrapping ErrInvalidOptions.
func (o Options) Validate() error {
	if !validDelim(o.InputDelimiter) {
		return &OptionsError{Field: "InputDelimiter", Message: "invalid delimiter"}
	}
	if o.OutputDelimiter != 0 && !validDelim(o.OutputDelimiter) {
		return &OptionsError{Field: "OutputDelimiter", Message: "invalid delimiter"}
	}
	if !validDelim(o.Quote) {
		return &OptionsError{Field: "Quote", Message: "invalid quote character"}
	}
	if !o.NoQuoting && o.Quote == o.InputDelimiter {
		return &OptionsError{Field: "Quote", Message: "quote character same as input delimiter"}
	}
	if o.Quote == o.OutputDialect().Delimiter {
		return &OptionsError{Field: "Quote", Message: "quote character same as output delimiter"}
	}
	if o.ExpectedColumns < 0 {
		return &OptionsError{Field: "ExpectedColumns", Message: "must not be negative"}
	}
	if o.ProgressEvery < 0 {
		return &OptionsError{Field: "ProgressEvery", Message: "must not be negative"}
	}
	for _, name := range o.DropRowIfNull {
		if name == "" {
			return &OptionsError{Field: "DropRowIfNull", Message: "empty column name"}
		}
	}
	return nil
}
