package scrub

import "regexp"

// cleaner applies value cleanups to accepted records. The first scanned
// record is the header: header names may be rewritten but values are left
// alone and the header is never dropped by cleaning. A header rejected by
// the Validator still names the columns for DropRowIfNull.
type cleaner struct {
	null            *regexp.Regexp
	trim            bool
	replaceNewlines bool
	cleanNames      bool
	dropIfNull      []string

	sawHeader bool
	required  []bool
	missing   []string // DropRowIfNull names absent from the header
	out       Record
	scratch   []byte
}

func newCleaner(o Options) *cleaner {
	var null *regexp.Regexp
	if o.NullPattern != nil {
		null = regexp.MustCompile(`\A(?:` + o.NullPattern.String() + `)\z`)
	}
	return &cleaner{
		null:            null,
		trim:            o.TrimWhitespace,
		replaceNewlines: o.ReplaceNewlines,
		cleanNames:      o.CleanColumnNames,
		dropIfNull:      o.DropRowIfNull,
	}
}

// clean returns the record to write and false if the record must be dropped
// because a required column is empty. The returned record is reused by the
// next call.
func (c *cleaner) clean(rec *Record) (*Record, bool) {
	c.out.reset()
	c.out.line = rec.line
	c.out.raw = append(c.out.raw, rec.raw...)

	if !c.sawHeader {
		c.sawHeader = true
		c.header(rec)
		return &c.out, true
	}

	for i := 0; i < rec.NumFields(); i++ {
		f := rec.Field(i)
		v := c.value(f.Value)
		if i < len(c.required) && c.required[i] && len(v) == 0 {
			return nil, false
		}
		c.out.appendField(v, f.Quoted)
	}
	return &c.out, true
}

// skipHeader records the column names of a header that will not be
// written.
func (c *cleaner) skipHeader(rec *Record) {
	c.sawHeader = true
	c.header(rec)
	c.out.reset()
}

func (c *cleaner) header(rec *Record) {
	names := rec.Strings()
	if c.cleanNames {
		u := newUniquifier()
		for i, name := range names {
			names[i] = u.uniqueID(name)
		}
	}
	for i, name := range names {
		c.out.appendField([]byte(name), rec.Field(i).Quoted)
	}

	c.required = make([]bool, len(names))
	for _, want := range c.dropIfNull {
		found := false
		for i, name := range names {
			if name == want {
				c.required[i] = true
				found = true
			}
		}
		if !found {
			c.missing = append(c.missing, want)
		}
	}
}

// value applies the configured cleanups to one value. The result may alias
// v or c.scratch.
func (c *cleaner) value(v []byte) []byte {
	if c.null != nil && c.null.Match(v) {
		return nil
	}
	if c.trim {
		v = trimASCIISpace(v)
	}
	if c.replaceNewlines && hasNewline(v) {
		c.scratch = replaceNewlines(c.scratch[:0], v)
		v = c.scratch
	}
	return v
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// trimASCIISpace works byte-wise so it is safe on any ASCII-compatible
// encoding, not only UTF-8.
func trimASCIISpace(v []byte) []byte {
	start, end := 0, len(v)
	for start < end && isASCIISpace(v[start]) {
		start++
	}
	for end > start && isASCIISpace(v[end-1]) {
		end--
	}
	return v[start:end]
}

func hasNewline(v []byte) bool {
	for _, b := range v {
		if b == '\n' || b == '\r' {
			return true
		}
	}
	return false
}

// replaceNewlines appends v to dst with each LF, CRLF or CR turned into a
// single space.
func replaceNewlines(dst, v []byte) []byte {
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\r':
			if i+1 < len(v) && v[i+1] == '\n' {
				i++
			}
			dst = append(dst, ' ')
		case '\n':
			dst = append(dst, ' ')
		default:
			dst = append(dst, v[i])
		}
	}
	return dst
}
