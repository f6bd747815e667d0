package scrub

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanned struct {
	fields    []string
	quoted    []bool
	raw       string
	line      int
	anomalies int
	truncated bool
}

func scanAll(t *testing.T, r io.Reader, d Dialect) []scanned {
	t.Helper()
	s := NewScanner(r, d)
	var out []scanned
	for s.Scan() {
		rec := s.Record()
		got := scanned{
			fields:    rec.Strings(),
			raw:       string(rec.Raw()),
			line:      rec.Line(),
			anomalies: rec.Anomalies(),
			truncated: rec.Truncated(),
		}
		for i := 0; i < rec.NumFields(); i++ {
			got.quoted = append(got.quoted, rec.Field(i).Quoted)
		}
		out = append(out, got)
	}
	require.NoError(t, s.Err())
	return out
}

func fieldsOf(recs []scanned) [][]string {
	out := make([][]string, len(recs))
	for i, r := range recs {
		out[i] = r.fields
	}
	return out
}

func TestScanner_Fields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "empty input",
			input: "",
			want:  [][]string{},
		},
		{
			name:  "single field",
			input: "a",
			want:  [][]string{{"a"}},
		},
		{
			name:  "two records",
			input: "a,b\nc,d\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\nc,d",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "empty fields",
			input: "a,,c\n,,\n",
			want:  [][]string{{"a", "", "c"}, {"", "", ""}},
		},
		{
			name:  "trailing delimiter at EOF",
			input: "a,",
			want:  [][]string{{"a", ""}},
		},
		{
			name:  "CRLF terminators",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "CR terminators",
			input: "a,b\rc,d\r",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "blank lines skipped",
			input: "a\n\n\r\nb\n",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "quoted delimiter",
			input: "\"Paris, France\",x\n",
			want:  [][]string{{"Paris, France", "x"}},
		},
		{
			name:  "quoted newline is literal",
			input: "\"line1\nline2\",x\ny,z\n",
			want:  [][]string{{"line1\nline2", "x"}, {"y", "z"}},
		},
		{
			name:  "quoted CRLF is literal",
			input: "\"a\r\nb\"\n",
			want:  [][]string{{"a\r\nb"}},
		},
		{
			name:  "escaped quotes",
			input: "\"say \"\"hi\"\"\",x\n",
			want:  [][]string{{"say \"hi\"", "x"}},
		},
		{
			name:  "empty quoted field",
			input: "\"\"\n",
			want:  [][]string{{""}},
		},
		{
			name:  "quote inside unquoted field is literal",
			input: "ab\"c,d\n",
			want:  [][]string{{"ab\"c", "d"}},
		},
		{
			name:  "non UTF-8 bytes pass through",
			input: "caf\xe9,x\n",
			want:  [][]string{{"caf\xe9", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanAll(t, strings.NewReader(tt.input), DefaultDialect())
			assert.Equal(t, tt.want, fieldsOf(got))
		})
	}
}

func TestScanner_QuotedFlag(t *testing.T) {
	got := scanAll(t, strings.NewReader("\"a\",b,\"\"\n"), DefaultDialect())
	require.Len(t, got, 1)
	assert.Equal(t, []bool{true, false, true}, got[0].quoted)
}

func TestScanner_LoneQuoteSplitsField(t *testing.T) {
	input := "Name,Phone\n\"Robert \"Bob\" Smith\",(202) 555-1212\n"
	got := scanAll(t, strings.NewReader(input), DefaultDialect())
	require.Len(t, got, 2)

	rec := got[1]
	assert.Equal(t, []string{"Robert ", "Bob\" Smith\"", "(202) 555-1212"}, rec.fields)
	assert.Equal(t, 1, rec.anomalies)
	assert.Equal(t, "\"Robert \"Bob\" Smith\",(202) 555-1212", rec.raw)
	assert.False(t, rec.truncated)
}

func TestScanner_Raw(t *testing.T) {
	input := "a,\"b\r\nc\"\r\nd,e\r\n"
	got := scanAll(t, strings.NewReader(input), DefaultDialect())
	require.Len(t, got, 2)
	assert.Equal(t, "a,\"b\r\nc\"", got[0].raw)
	assert.Equal(t, "d,e", got[1].raw)
}

func TestScanner_LineNumbers(t *testing.T) {
	input := "a\n\"b\nc\"\n\nd\n"
	got := scanAll(t, strings.NewReader(input), DefaultDialect())
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].line)
	assert.Equal(t, 2, got[1].line)
	assert.Equal(t, 5, got[2].line)
}

func TestScanner_Truncated(t *testing.T) {
	got := scanAll(t, strings.NewReader("a,b\n\"1,2"), DefaultDialect())
	require.Len(t, got, 2)
	assert.False(t, got[0].truncated)
	assert.True(t, got[1].truncated)
	assert.Equal(t, "\"1,2", got[1].raw)
}

func TestScanner_CustomDialect(t *testing.T) {
	d := Dialect{Delimiter: '|', Quote: '\''}
	got := scanAll(t, strings.NewReader("a|'b|c'|\"d\"\n"), d)
	assert.Equal(t, [][]string{{"a", "b|c", "\"d\""}}, fieldsOf(got))
}

func TestScanner_NoQuoting(t *testing.T) {
	d := Dialect{Delimiter: ',', Quote: '"', NoQuoting: true}
	got := scanAll(t, strings.NewReader("\"a,b\"\n"), d)
	assert.Equal(t, [][]string{{"\"a", "b\""}}, fieldsOf(got))
}

// Byte-at-a-time reads from the source must not change record boundaries.
func TestScanner_OneByteReader(t *testing.T) {
	input := "a,\"b\"\"c\"\r\n\"x\ny\",z\rq,r"
	want := [][]string{{"a", "b\"c"}, {"x\ny", "z"}, {"q", "r"}}
	got := scanAll(t, iotest.OneByteReader(strings.NewReader(input)), DefaultDialect())
	assert.Equal(t, want, fieldsOf(got))
}

func TestScanner_LongRecordExceedsBuffer(t *testing.T) {
	long := strings.Repeat("x", bufferSize*2+17)
	input := "a," + long + "\nb,c\n"
	s := NewScanner(strings.NewReader(input), DefaultDialect())

	require.True(t, s.Scan())
	assert.Equal(t, long, string(s.Record().FieldBytes(1)))
	require.True(t, s.Scan())
	assert.Equal(t, []string{"b", "c"}, s.Record().Strings())
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
	assert.Equal(t, int64(len(input)), s.BytesRead())
}

// A CR that lands on the last byte of a full buffer still pairs with the LF
// that starts the next slice.
func TestScanner_CRLFAcrossBufferBoundary(t *testing.T) {
	long := strings.Repeat("x", bufferSize-1)
	got := scanAll(t, strings.NewReader(long+"\r\nb\n"), DefaultDialect())
	require.Len(t, got, 2)
	assert.Equal(t, []string{long}, got[0].fields)
	assert.Equal(t, []string{"b"}, got[1].fields)
	assert.Equal(t, 2, got[1].line)
}

func TestScanner_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("a,b\n"), iotest.ErrReader(boom))
	s := NewScanner(r, DefaultDialect())

	require.True(t, s.Scan())
	assert.Equal(t, []string{"a", "b"}, s.Record().Strings())
	assert.False(t, s.Scan())

	var se *StreamError
	require.ErrorAs(t, s.Err(), &se)
	assert.Equal(t, "read", se.Op)
	assert.ErrorIs(t, s.Err(), boom)
}

func TestScanner_BytesRead(t *testing.T) {
	input := "a,b\nc,d\n"
	s := NewScanner(strings.NewReader(input), DefaultDialect())
	for s.Scan() {
	}
	require.NoError(t, s.Err())
	assert.Equal(t, int64(len(input)), s.BytesRead())
}
