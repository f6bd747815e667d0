package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// Options configures the tokenizer behavior.
type Options struct {
	// Delimiter is the field separator. Default: ','
	Delimiter rune
	// Quote is the quote character. Default: '"'
	Quote rune
}

// DefaultOptions returns default tokenizer options.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Quote:     '"',
	}
}

// NewTokenizer creates a tokenizer for comma-separated, double-quoted text.
func NewTokenizer() tokenizer.Tokenizer {
	return NewTokenizerWithOptions(DefaultOptions())
}

// NewTokenizerWithOptions creates a tokenizer with custom options.
//
// Matchers are tried in order:
// 1. Newlines (CRLF before LF and CR to match the longer sequence first)
// 2. Delimiter
// 3. Quote
// 4. Field content
func NewTokenizerWithOptions(opts Options) tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		tokenizer.StringMatcherFunc(TokenNewline, "\r\n"),
		tokenizer.StringMatcherFunc(TokenNewline, "\n"),
		tokenizer.StringMatcherFunc(TokenNewline, "\r"),

		tokenizer.StringMatcherFunc(TokenDelim, string(opts.Delimiter)),
		tokenizer.StringMatcherFunc(TokenQuote, string(opts.Quote)),

		FieldContentMatcher(opts.Delimiter, opts.Quote),
	)
}

// NewTokenizerWithStream creates a tokenizer reading from a pre-configured
// stream, used to tokenize an io.Reader without loading it whole.
func NewTokenizerWithStream(stream tokenizer.Stream, opts Options) tokenizer.Tokenizer {
	tok := NewTokenizerWithOptions(opts)
	tok.InitializeFromStream(stream)
	return tok
}

// FieldContentMatcher creates a matcher for runs of characters that are not
// the delimiter, the quote, CR or LF.
//
// Grammar:
//
//	Field = Character+ ;
//	Character = <any character except delimiter, quote, CR, LF> ;
//
// Uses ByteStream for fast scanning when both delimiter and quote are ASCII.
func FieldContentMatcher(delim, quote rune) tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		if delim < 128 && quote < 128 {
			if byteStream, ok := stream.(tokenizer.ByteStream); ok {
				return fieldContentBytes(byteStream, byte(delim), byte(quote))
			}
		}
		return fieldContentRunes(stream, delim, quote)
	}
}

func fieldContentBytes(stream tokenizer.ByteStream, delim, quote byte) *tokenizer.Token {
	startPos := stream.BytePosition()

	for {
		b, ok := stream.PeekByte()
		if !ok {
			break
		}
		if b == delim || b == quote || b == '\n' || b == '\r' {
			break
		}
		stream.NextByte()
	}

	if stream.BytePosition() == startPos {
		return nil
	}

	value := stream.SliceFrom(startPos)
	return tokenizer.NewToken(TokenField, []rune(string(value)))
}

func fieldContentRunes(stream tokenizer.Stream, delim, quote rune) *tokenizer.Token {
	var value []rune

	for {
		r, ok := stream.PeekChar()
		if !ok {
			break
		}
		if r == delim || r == quote || r == '\n' || r == '\r' {
			break
		}
		stream.NextChar()
		value = append(value, r)
	}

	if len(value) == 0 {
		return nil
	}

	return tokenizer.NewToken(TokenField, value)
}
