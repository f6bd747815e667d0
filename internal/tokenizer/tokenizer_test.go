package tokenizer

import (
	"strings"
	"testing"

	"github.com/shapestone/shape-core/pkg/tokenizer"
)

type tok struct {
	kind  string
	value string
}

func collect(t *testing.T, tz *tokenizer.Tokenizer) []tok {
	t.Helper()
	var out []tok
	for {
		token, ok := tz.NextToken()
		if !ok {
			return out
		}
		out = append(out, tok{token.Kind(), token.ValueString()})
	}
}

// TestTokenizer_Tokens tests tokenization with the default dialect.
func TestTokenizer_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tok
	}{
		{
			name:     "single delimiter",
			input:    ",",
			expected: []tok{{TokenDelim, ","}},
		},
		{
			name:     "single field",
			input:    "abc",
			expected: []tok{{TokenField, "abc"}},
		},
		{
			name:     "newline LF",
			input:    "\n",
			expected: []tok{{TokenNewline, "\n"}},
		},
		{
			name:     "newline CRLF",
			input:    "\r\n",
			expected: []tok{{TokenNewline, "\r\n"}},
		},
		{
			name:     "bare CR",
			input:    "a\rb",
			expected: []tok{{TokenField, "a"}, {TokenNewline, "\r"}, {TokenField, "b"}},
		},
		{
			name:  "simple row",
			input: "a,b,c",
			expected: []tok{
				{TokenField, "a"}, {TokenDelim, ","},
				{TokenField, "b"}, {TokenDelim, ","},
				{TokenField, "c"},
			},
		},
		{
			name:  "quoted field with delimiter",
			input: `"a,b"`,
			expected: []tok{
				{TokenQuote, `"`}, {TokenField, "a"}, {TokenDelim, ","},
				{TokenField, "b"}, {TokenQuote, `"`},
			},
		},
		{
			name:  "escaped quote",
			input: `"say ""hi"""`,
			expected: []tok{
				{TokenQuote, `"`}, {TokenField, "say "},
				{TokenQuote, `"`}, {TokenQuote, `"`},
				{TokenField, "hi"},
				{TokenQuote, `"`}, {TokenQuote, `"`}, {TokenQuote, `"`},
			},
		},
		{
			name:     "empty fields",
			input:    ",,",
			expected: []tok{{TokenDelim, ","}, {TokenDelim, ","}},
		},
		{
			name:  "multiple rows",
			input: "a,b\r\nx,y\n",
			expected: []tok{
				{TokenField, "a"}, {TokenDelim, ","}, {TokenField, "b"}, {TokenNewline, "\r\n"},
				{TokenField, "x"}, {TokenDelim, ","}, {TokenField, "y"}, {TokenNewline, "\n"},
			},
		},
		{
			name:  "quote inside unquoted content",
			input: `ab"c`,
			expected: []tok{
				{TokenField, "ab"}, {TokenQuote, `"`}, {TokenField, "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tz := NewTokenizer()
			tz.Initialize(tt.input)
			got := collect(t, &tz)

			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tokens %v, got %d %v", len(tt.expected), tt.expected, len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: expected %s %q, got %s %q",
						i, tt.expected[i].kind, tt.expected[i].value, got[i].kind, got[i].value)
				}
			}
		})
	}
}

// TestTokenizer_CustomDialect tests a tab delimiter and single-quote quoting.
func TestTokenizer_CustomDialect(t *testing.T) {
	tz := NewTokenizerWithOptions(Options{Delimiter: '\t', Quote: '\''})
	tz.Initialize("'a,b'\t\"c\"\n")
	got := collect(t, &tz)

	expected := []tok{
		{TokenQuote, "'"}, {TokenField, "a,b"}, {TokenQuote, "'"},
		{TokenDelim, "\t"}, {TokenField, `"c"`}, {TokenNewline, "\n"},
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
}

// TestTokenizer_LargeStream tests tokenizing a reader that crosses buffer boundaries.
func TestTokenizer_LargeStream(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString(`"field1","field2","field3"`)
		sb.WriteString("\n")
	}

	stream := tokenizer.NewStreamFromReader(strings.NewReader(sb.String()))
	tz := NewTokenizerWithStream(stream, DefaultOptions())

	tokenCount := 0
	for {
		_, ok := tz.NextToken()
		if !ok {
			if !stream.IsEos() {
				t.Fatalf("tokenization failed after %d tokens, but not at EOS", tokenCount)
			}
			break
		}
		tokenCount++
	}

	// Each row: " field1 " , " field2 " , " field3 " \n = 12 tokens
	if expected := 100 * 12; tokenCount != expected {
		t.Errorf("expected %d tokens, got %d", expected, tokenCount)
	}
}
