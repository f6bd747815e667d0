package scrub

// Field is one value of a Record.
type Field struct {
	// Value holds the unescaped field bytes. It shares memory with the
	// Record and must not be retained past the next Scan.
	Value []byte
	// Quoted reports whether the field was enclosed in quotes in the source.
	Quoted bool
}

// Record is one logical row.
//
// Field values are stored using offset tracking: all unescaped field bytes
// live in one data buffer and bounds marks where each field starts and ends.
// Field i spans data[bounds[i]:bounds[i+1]]. This keeps one allocation per
// record buffer instead of one per field, and lets the Scanner reuse the
// same Record for every row.
type Record struct {
	data   []byte // unescaped field content
	bounds []int  // start of each field, plus a trailing end marker
	quoted []bool // enclosure flag per field

	raw       []byte // source bytes of the row, terminator excluded
	line      int    // 1-indexed line on which the row started
	anomalies int    // lone quotes found inside enclosed fields
	truncated bool   // input ended inside a quoted field
}

// NewRecord builds a Record from field values. It is mostly useful for
// tests and for callers feeding the Writer directly.
func NewRecord(fields ...string) *Record {
	r := &Record{}
	for _, f := range fields {
		r.appendField([]byte(f), false)
	}
	return r
}

// NumFields returns the number of fields in the record.
func (r *Record) NumFields() int {
	if len(r.bounds) == 0 {
		return 0
	}
	return len(r.bounds) - 1
}

// Field returns the i-th field. It returns the zero Field if i is out of
// range.
func (r *Record) Field(i int) Field {
	if i < 0 || i >= r.NumFields() {
		return Field{}
	}
	return Field{
		Value:  r.data[r.bounds[i]:r.bounds[i+1]],
		Quoted: r.quoted[i],
	}
}

// FieldBytes returns the i-th field value without allocation, or nil if i is
// out of range.
func (r *Record) FieldBytes(i int) []byte {
	if i < 0 || i >= r.NumFields() {
		return nil
	}
	return r.data[r.bounds[i]:r.bounds[i+1]]
}

// Strings returns all field values as freshly allocated strings.
func (r *Record) Strings() []string {
	out := make([]string, r.NumFields())
	for i := range out {
		out[i] = string(r.FieldBytes(i))
	}
	return out
}

// Raw returns the source bytes of the row, line terminator excluded.
func (r *Record) Raw() []byte {
	return r.raw
}

// Line returns the input line on which the record started.
func (r *Record) Line() int {
	return r.line
}

// Anomalies returns how many lone quotes split enclosed fields apart.
func (r *Record) Anomalies() int {
	return r.anomalies
}

// Truncated reports whether input ended inside a quoted field of this
// record.
func (r *Record) Truncated() bool {
	return r.truncated
}

// Clone returns a deep copy that stays valid after the next Scan.
func (r *Record) Clone() *Record {
	return &Record{
		data:      append([]byte(nil), r.data...),
		bounds:    append([]int(nil), r.bounds...),
		quoted:    append([]bool(nil), r.quoted...),
		raw:       append([]byte(nil), r.raw...),
		line:      r.line,
		anomalies: r.anomalies,
		truncated: r.truncated,
	}
}

// reset clears the record while keeping its buffers.
func (r *Record) reset() {
	r.data = r.data[:0]
	r.bounds = r.bounds[:0]
	r.quoted = r.quoted[:0]
	r.raw = r.raw[:0]
	r.line = 0
	r.anomalies = 0
	r.truncated = false
}

// appendField adds a complete field. Used when rebuilding cleaned records.
func (r *Record) appendField(value []byte, quoted bool) {
	if len(r.bounds) == 0 {
		r.bounds = append(r.bounds, len(r.data))
	}
	r.data = append(r.data, value...)
	r.bounds = append(r.bounds, len(r.data))
	r.quoted = append(r.quoted, quoted)
}

// beginField opens a new field at the current end of data.
func (r *Record) beginField(quoted bool) {
	if len(r.bounds) == 0 {
		r.bounds = append(r.bounds, len(r.data))
	}
	r.quoted = append(r.quoted, quoted)
}

// endField closes the field opened by beginField.
func (r *Record) endField() {
	r.bounds = append(r.bounds, len(r.data))
}
