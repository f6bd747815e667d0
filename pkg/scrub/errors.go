package scrub

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidOptions is wrapped by every *OptionsError.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrTruncatedRecord marks a record cut off inside a quoted field at
	// end of input.
	ErrTruncatedRecord = errors.New("unterminated quoted field at end of input")

	// ErrTooManyBadRows is returned by callers that enforce a bad-row ratio.
	ErrTooManyBadRows = errors.New("too many bad rows")
)

// OptionsError represents an invalid option configuration, detected before
// any record is processed.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "scrub: invalid " + e.Field + ": " + e.Message
}

// Unwrap lets errors.Is match ErrInvalidOptions.
func (e *OptionsError) Unwrap() error {
	return ErrInvalidOptions
}

// StreamError is a fatal failure of the underlying input or output stream.
type StreamError struct {
	// Op is "read", "write" or "flush".
	Op string
	// Line is the input line being processed when the failure happened.
	Line int
	// Err is the underlying error.
	Err error
}

func (e *StreamError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("scrub: %s failed near line %d: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("scrub: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// Reason explains why a record was rejected.
type Reason int

const (
	// ReasonNone means the record was not rejected.
	ReasonNone Reason = iota
	// ReasonWidthMismatch means the field count differed and repair was
	// disabled or had nothing to merge.
	ReasonWidthMismatch
	// ReasonUnsalvageable means repair ran but could not reach the width.
	ReasonUnsalvageable
	// ReasonTruncated means the record ended inside a quoted field.
	ReasonTruncated
	// ReasonNullColumn means a required column was empty after cleaning.
	ReasonNullColumn
	// ReasonBareQuote means the record held a lone quote and repair was
	// disabled.
	ReasonBareQuote
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonWidthMismatch:
		return "width_mismatch"
	case ReasonUnsalvageable:
		return "unsalvageable"
	case ReasonTruncated:
		return "truncated"
	case ReasonNullColumn:
		return "null_column"
	case ReasonBareQuote:
		return "bare_quote"
	default:
		return fmt.Sprintf("Reason(%d)", r)
	}
}

// Err returns the sentinel error matching r, or nil if r has none.
func (r Reason) Err() error {
	if r == ReasonTruncated {
		return ErrTruncatedRecord
	}
	return nil
}
