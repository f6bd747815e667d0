package scrub

import "bytes"

// splitState is the position of the splitter inside the current record.
type splitState int

const (
	stateFieldStart splitState = iota // nothing consumed for the current field
	stateUnquoted                     // inside a plain field
	stateQuoted                       // inside an enclosed field
	stateQuoteSeen                    // just saw a quote inside an enclosed field
)

// splitter is the field state machine shared by the Scanner and Repair.
//
// Both modes track quote state identically, so record boundaries never
// depend on the mode. They differ only in what happens when a lone quote
// inside an enclosed field is followed by ordinary content: strict mode
// closes the field there and opens a new unquoted fragment, lenient mode
// keeps appending to the same field.
type splitter struct {
	delim   byte
	quote   byte
	quoting bool
	lenient bool

	rec       *Record
	state     splitState
	newlines  int  // LF bytes consumed inside enclosed fields
	pendingCR bool // record ended on a CR that was the last byte fed
}

func newSplitter(d Dialect, rec *Record, lenient bool) splitter {
	delim := d.Delimiter
	if delim == 0 {
		delim = ','
	}
	quote := d.Quote
	if quote == 0 {
		quote = '"'
	}
	return splitter{
		delim:   delim,
		quote:   quote,
		quoting: !d.NoQuoting,
		lenient: lenient,
		rec:     rec,
	}
}

// reset prepares the splitter for a new record.
func (s *splitter) reset() {
	s.state = stateFieldStart
	s.newlines = 0
	s.pendingCR = false
}

// feed consumes p until a record terminator outside quotes is found.
//
// It returns end, the index where the terminator starts (p[:end] belongs to
// the record), next, the index just past the terminator, and done, whether
// a terminator was found. When done is false, end == next == len(p).
func (s *splitter) feed(p []byte) (end, next int, done bool) {
	rec := s.rec
	for i := 0; i < len(p); i++ {
		b := p[i]
		switch s.state {
		case stateFieldStart:
			switch {
			case s.quoting && b == s.quote:
				rec.beginField(true)
				s.state = stateQuoted
			case b == s.delim:
				rec.beginField(false)
				rec.endField()
			case b == '\n' || b == '\r':
				// A terminator before any field means a blank line; the
				// caller sees a record with no fields.
				if len(rec.quoted) > 0 {
					rec.beginField(false)
					rec.endField()
				}
				return s.terminate(p, i)
			default:
				rec.beginField(false)
				rec.data = append(rec.data, b)
				s.state = stateUnquoted
			}

		case stateUnquoted:
			j := i + s.plainRun(p[i:])
			rec.data = append(rec.data, p[i:j]...)
			if j == len(p) {
				return len(p), len(p), false
			}
			rec.endField()
			s.state = stateFieldStart
			if p[j] != s.delim {
				return s.terminate(p, j)
			}
			i = j

		case stateQuoted:
			j := bytes.IndexByte(p[i:], s.quote)
			if j < 0 {
				s.appendQuoted(p[i:])
				return len(p), len(p), false
			}
			s.appendQuoted(p[i : i+j])
			i += j
			s.state = stateQuoteSeen

		case stateQuoteSeen:
			switch {
			case b == s.quote:
				rec.data = append(rec.data, s.quote)
				s.state = stateQuoted
			case b == s.delim:
				rec.endField()
				s.state = stateFieldStart
			case b == '\n' || b == '\r':
				rec.endField()
				s.state = stateFieldStart
				return s.terminate(p, i)
			default:
				rec.anomalies++
				if !s.lenient {
					rec.endField()
					rec.beginField(false)
				}
				rec.data = append(rec.data, b)
				s.state = stateUnquoted
			}
		}
	}
	return len(p), len(p), false
}

// finish closes the record at end of input. It reports whether a record
// was in progress.
func (s *splitter) finish() bool {
	rec := s.rec
	switch s.state {
	case stateFieldStart:
		if len(rec.quoted) == 0 {
			return false
		}
		rec.beginField(false)
		rec.endField()
	case stateQuoted:
		rec.truncated = true
		rec.endField()
	default:
		rec.endField()
	}
	s.state = stateFieldStart
	return true
}

// plainRun returns the length of the prefix of p that holds no delimiter
// and no line terminator.
func (s *splitter) plainRun(p []byte) int {
	for i, b := range p {
		if b == s.delim || b == '\n' || b == '\r' {
			return i
		}
	}
	return len(p)
}

func (s *splitter) appendQuoted(p []byte) {
	s.newlines += bytes.Count(p, []byte{'\n'})
	s.rec.data = append(s.rec.data, p...)
}

// terminate ends the record on the terminator at p[i].
func (s *splitter) terminate(p []byte, i int) (int, int, bool) {
	if p[i] == '\r' {
		if i+1 < len(p) {
			if p[i+1] == '\n' {
				return i, i + 2, true
			}
			return i, i + 1, true
		}
		s.pendingCR = true
	}
	return i, i + 1, true
}
