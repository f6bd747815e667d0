package scrub

import (
	"bufio"
	"errors"
	"io"
)

// bufferSize is the size of the input and output buffers.
const bufferSize = 256 * 1024

// Scanner provides a streaming interface for reading records one at a time.
// Memory use is bounded by the input buffer plus the current record.
//
// Example usage:
//
//	scanner := scrub.NewScanner(file, scrub.DefaultDialect())
//	for scanner.Scan() {
//	    rec := scanner.Record()
//	    if rec.Truncated() {
//	        // input ended inside a quoted field
//	    }
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	br    *bufio.Reader
	split splitter
	rec   Record

	pending   []byte // unconsumed bytes of the last slice read
	skipLF    bool   // previous record ended on a CR at a slice boundary
	eof       bool
	done      bool
	err       error
	bytesRead int64
	line      int
}

// NewScanner creates a Scanner that reads records from r using dialect d.
func NewScanner(r io.Reader, d Dialect) *Scanner {
	s := &Scanner{
		br:   bufio.NewReaderSize(r, bufferSize),
		line: 1,
	}
	s.split = newSplitter(d, &s.rec, false)
	return s
}

// Scan advances to the next record. It returns false at end of input or on
// a read error; Err distinguishes the two. Completely empty lines are
// skipped.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	s.begin()

	for {
		if len(s.pending) == 0 {
			if s.eof {
				return s.finish()
			}
			if !s.fill() {
				return false
			}
			continue
		}

		if s.skipLF {
			s.skipLF = false
			if s.pending[0] == '\n' {
				s.pending = s.pending[1:]
				continue
			}
		}

		end, next, done := s.split.feed(s.pending)
		s.rec.raw = append(s.rec.raw, s.pending[:end]...)
		s.pending = s.pending[next:]
		if !done {
			continue
		}

		s.skipLF = s.split.pendingCR
		s.line += 1 + s.split.newlines
		if s.rec.NumFields() == 0 {
			s.begin()
			continue
		}
		return true
	}
}

// Record returns the most recent record read by Scan. The record and its
// field slices are reused by the next call to Scan; use Record.Clone to keep
// one.
func (s *Scanner) Record() *Record {
	return &s.rec
}

// Err returns the first read error, or nil if scanning stopped at end of
// input. Read errors are wrapped in *StreamError.
func (s *Scanner) Err() error {
	return s.err
}

// BytesRead returns the number of input bytes consumed so far.
func (s *Scanner) BytesRead() int64 {
	return s.bytesRead
}

// Line returns the line number at which the next record starts.
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) begin() {
	s.rec.reset()
	s.split.reset()
	s.rec.line = s.line
}

// fill reads the next line-sized slice from the buffered reader.
func (s *Scanner) fill() bool {
	chunk, err := s.br.ReadSlice('\n')
	s.bytesRead += int64(len(chunk))
	s.pending = chunk
	switch {
	case err == nil, errors.Is(err, bufio.ErrBufferFull):
	case errors.Is(err, io.EOF):
		s.eof = true
	default:
		s.err = &StreamError{Op: "read", Line: s.line, Err: err}
		s.done = true
		s.pending = nil
		return false
	}
	return true
}

// finish flushes a record left open at end of input.
func (s *Scanner) finish() bool {
	s.done = true
	if !s.split.finish() {
		return false
	}
	s.line += s.split.newlines
	return true
}
