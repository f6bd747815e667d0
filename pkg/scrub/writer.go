package scrub

import (
	"bufio"
	"io"
)

// Writer serializes records as canonical CSV.
//
// Canonical form:
//   - fields are quoted only when they contain the output delimiter, the
//     quote byte, CR or LF
//   - quote bytes inside quoted fields are doubled
//   - a record made of one empty field is written as "" so it is not a
//     blank line
//   - every record ends with exactly one terminator
type Writer struct {
	dst     *bufio.Writer
	delim   byte
	quote   byte
	eol     []byte
	written int64
	err     error
}

// NewWriter creates a buffered Writer emitting dialect d to w.
func NewWriter(w io.Writer, d OutputDialect) *Writer {
	delim := d.Delimiter
	if delim == 0 {
		delim = ','
	}
	quote := d.Quote
	if quote == 0 {
		quote = '"'
	}
	eol := []byte{'\n'}
	if d.UseCRLF {
		eol = []byte{'\r', '\n'}
	}
	return &Writer{
		dst:   bufio.NewWriterSize(w, bufferSize),
		delim: delim,
		quote: quote,
		eol:   eol,
	}
}

// Write emits one record. After the first error every call returns it.
func (w *Writer) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}

	n := rec.NumFields()
	if n == 1 && len(rec.FieldBytes(0)) == 0 {
		w.dst.WriteByte(w.quote)
		w.dst.WriteByte(w.quote)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			w.dst.WriteByte(w.delim)
		}
		w.writeField(rec.FieldBytes(i))
	}
	if _, err := w.dst.Write(w.eol); err != nil {
		w.err = &StreamError{Op: "write", Line: rec.Line(), Err: err}
		return w.err
	}
	w.written++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = &StreamError{Op: "flush", Err: err}
		return w.err
	}
	return nil
}

// Written returns the number of records written so far.
func (w *Writer) Written() int64 {
	return w.written
}

// writeField writes one field. Errors are sticky inside bufio.Writer and
// surface on the terminator write in Write.
func (w *Writer) writeField(field []byte) {
	if !w.fieldNeedsQuote(field) {
		w.dst.Write(field)
		return
	}

	w.dst.WriteByte(w.quote)
	start := 0
	for i, b := range field {
		if b == w.quote {
			w.dst.Write(field[start : i+1])
			w.dst.WriteByte(w.quote)
			start = i + 1
		}
	}
	w.dst.Write(field[start:])
	w.dst.WriteByte(w.quote)
}

func (w *Writer) fieldNeedsQuote(field []byte) bool {
	for _, b := range field {
		switch b {
		case w.delim, w.quote, '\n', '\r':
			return true
		}
	}
	return false
}
