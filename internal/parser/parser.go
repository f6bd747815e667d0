// Package parser implements a strict LL(1) recursive descent parser for
// canonical delimited text. Each production rule in the grammar corresponds
// to a parse function.
//
// Grammar:
//
//	File          = { Record } ;
//	Record        = Field { Delim Field } ( Newline | EOF ) ;
//	Field         = QuotedField | UnquotedField ;
//	QuotedField   = Quote { Char | Delim | Newline | Quote Quote } Quote ;
//	UnquotedField = { Char } ;
//
// Anything outside this grammar is reported as a *ParseError. The parser
// resynchronizes at the next line so a caller can keep reading and collect
// every problem in one pass.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shapestone/shape-core/pkg/ast"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
	"github.com/shapestone/shape-scrub/internal/tokenizer"
)

// Common parsing errors
var (
	// ErrBareQuote indicates a quote inside an unquoted field.
	ErrBareQuote = errors.New("bare quote in non-quoted field")

	// ErrQuote indicates content after the closing quote of a field.
	ErrQuote = errors.New("extraneous quote in quoted field")

	// ErrUnclosedQuote indicates input ended inside a quoted field.
	ErrUnclosedQuote = errors.New("unclosed quoted field")

	// ErrFieldCount indicates a record has the wrong number of fields.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrBlankLine indicates an empty line between records.
	ErrBlankLine = errors.New("blank line")

	// ErrBareCR indicates a record terminated by a lone carriage return.
	ErrBareCR = errors.New("bare CR line terminator")
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	// StartLine is the line where the record started (1-indexed).
	StartLine int
	// Line is the line where the error occurred (1-indexed).
	Line int
	// Column is the column where the error occurred (1-indexed).
	Column int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (started line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options configures the parser behavior.
type Options struct {
	// Delimiter is the field separator. Default: ','
	Delimiter rune
	// Quote is the quote character. Default: '"'
	Quote rune
	// FieldsPerRecord validates field count. 0=first record sets count,
	// negative=no validation.
	FieldsPerRecord int
	// AllowBareCR accepts a lone \r as a line terminator.
	AllowBareCR bool
}

// DefaultOptions returns default parser options: comma, double quote, and
// a uniform width set by the first record.
func DefaultOptions() Options {
	return Options{
		Delimiter:       ',',
		Quote:           '"',
		FieldsPerRecord: 0,
	}
}

// Parser implements LL(1) recursive descent parsing.
// It maintains a single token lookahead for predictive parsing.
type Parser struct {
	tokenizer      *shapetokenizer.Tokenizer
	current        *shapetokenizer.Token
	hasToken       bool
	opts           Options
	expectedFields int

	line      int // line of the lookahead token
	column    int // column of the lookahead token
	startLine int // line where the current record started
	records   int
}

// NewParser creates a parser with default options for the given input.
func NewParser(input string) *Parser {
	return NewParserWithOptions(input, DefaultOptions())
}

// NewParserWithOptions creates a parser with custom options.
func NewParserWithOptions(input string, opts Options) *Parser {
	return newParser(shapetokenizer.NewStream(input), opts)
}

// NewParserFromReader creates a parser that streams from r.
func NewParserFromReader(r io.Reader, opts Options) *Parser {
	return newParser(shapetokenizer.NewStreamFromReader(r), opts)
}

func newParser(stream shapetokenizer.Stream, opts Options) *Parser {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Quote == 0 {
		opts.Quote = '"'
	}
	tok := tokenizer.NewTokenizerWithStream(stream, tokenizer.Options{
		Delimiter: opts.Delimiter,
		Quote:     opts.Quote,
	})

	p := &Parser{
		tokenizer:      &tok,
		opts:           opts,
		expectedFields: opts.FieldsPerRecord,
		line:           1,
		column:         1,
	}
	p.load()
	return p
}

// Records returns the number of records parsed successfully so far.
func (p *Parser) Records() int {
	return p.records
}

// Parse parses the whole input and returns an array of records, where each
// record is an ArrayDataNode of string LiteralNodes. It stops at the first
// error.
func (p *Parser) Parse() (ast.SchemaNode, error) {
	records := make([]ast.SchemaNode, 0, 16)
	for {
		record, err := p.Next()
		if errors.Is(err, io.EOF) {
			return ast.NewArrayDataNode(records, ast.ZeroPosition()), nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Next parses the next record. It returns io.EOF when the input is
// exhausted. After a *ParseError the parser has already skipped to the next
// line and Next may be called again.
func (p *Parser) Next() (*ast.ArrayDataNode, error) {
	if !p.hasToken {
		return nil, io.EOF
	}
	p.startLine = p.line

	if p.peek().Kind() == tokenizer.TokenNewline {
		err := p.errorf(ErrBlankLine)
		p.advance()
		return nil, err
	}

	record, err := p.parseRecord()
	if err != nil {
		p.skipLine()
		return nil, err
	}

	fieldCount := len(record.Elements())
	if p.opts.FieldsPerRecord >= 0 {
		if p.expectedFields == 0 {
			p.expectedFields = fieldCount
		} else if fieldCount != p.expectedFields {
			return nil, &ParseError{
				StartLine: p.startLine,
				Line:      p.startLine,
				Column:    1,
				Err:       fmt.Errorf("%w (got %d, expected %d)", ErrFieldCount, fieldCount, p.expectedFields),
			}
		}
	}

	p.records++
	return record, nil
}

// parseRecord parses a single record.
//
// Grammar:
//
//	Record = Field { Delim Field } ( Newline | EOF ) ;
func (p *Parser) parseRecord() (*ast.ArrayDataNode, error) {
	startPos := p.position()
	fields := make([]ast.SchemaNode, 0, 8)

	field, err := p.parseField()
	if err != nil {
		return nil, err
	}
	fields = append(fields, field)

	for p.hasToken && p.peek().Kind() == tokenizer.TokenDelim {
		p.advance()

		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	if p.hasToken {
		token := p.peek()
		if token.Kind() != tokenizer.TokenNewline {
			return nil, p.errorf(ErrQuote)
		}
		if token.ValueString() == "\r" && !p.opts.AllowBareCR {
			return nil, p.errorf(ErrBareCR)
		}
		p.advance()
	}

	return ast.NewArrayDataNode(fields, startPos), nil
}

// parseField parses a single field.
//
// Grammar:
//
//	Field = QuotedField | UnquotedField ;
func (p *Parser) parseField() (*ast.LiteralNode, error) {
	if p.hasToken && p.peek().Kind() == tokenizer.TokenQuote {
		return p.parseQuotedField()
	}
	return p.parseUnquotedField()
}

// parseQuotedField parses an enclosed field and returns its unescaped value.
//
// Grammar:
//
//	QuotedField = Quote { Char | Delim | Newline | Quote Quote } Quote ;
func (p *Parser) parseQuotedField() (*ast.LiteralNode, error) {
	startPos := p.position()
	p.advance() // opening quote

	var value strings.Builder
	for {
		if !p.hasToken {
			return nil, p.errorf(ErrUnclosedQuote)
		}

		token := p.peek()
		if token.Kind() != tokenizer.TokenQuote {
			value.WriteString(token.ValueString())
			p.advance()
			continue
		}

		p.advance()
		if p.hasToken && p.peek().Kind() == tokenizer.TokenQuote {
			value.WriteRune(p.opts.Quote)
			p.advance()
			continue
		}
		return ast.NewLiteralNode(value.String(), startPos), nil
	}
}

// parseUnquotedField parses a field without enclosing quotes.
//
// Grammar:
//
//	UnquotedField = { Char } ;
func (p *Parser) parseUnquotedField() (*ast.LiteralNode, error) {
	startPos := p.position()
	if !p.hasToken || p.peek().Kind() != tokenizer.TokenField {
		return ast.NewLiteralNode("", startPos), nil
	}

	value := p.peek().ValueString()
	p.advance()
	if p.hasToken && p.peek().Kind() == tokenizer.TokenQuote {
		return nil, p.errorf(ErrBareQuote)
	}
	return ast.NewLiteralNode(value, startPos), nil
}

// Helper methods

// peek returns current token without advancing.
func (p *Parser) peek() *shapetokenizer.Token {
	return p.current
}

// advance consumes the lookahead token, tracking line and column, and loads
// the next one.
func (p *Parser) advance() {
	if p.hasToken {
		if p.current.Kind() == tokenizer.TokenNewline {
			p.line++
			p.column = 1
		} else {
			p.column += utf8.RuneCountInString(p.current.ValueString())
		}
	}
	p.load()
}

func (p *Parser) load() {
	token, ok := p.tokenizer.NextToken()
	if ok {
		p.current = token
		p.hasToken = true
	} else {
		p.hasToken = false
		p.current = nil
	}
}

// position returns current position for AST nodes.
func (p *Parser) position() ast.Position {
	offset := 0
	if p.hasToken {
		offset = p.current.Offset()
	}
	return ast.NewPosition(offset, p.line, p.column)
}

func (p *Parser) errorf(err error) *ParseError {
	return &ParseError{
		StartLine: p.startLine,
		Line:      p.line,
		Column:    p.column,
		Err:       err,
	}
}

// skipLine advances past the rest of the current record. A quote at the
// start of a field opens an enclosed section, and newlines inside it do not
// end the record. The skip starts mid-field, so a quote at the error
// position is literal.
func (p *Parser) skipLine() {
	fieldStart, inQuotes := false, false
	for p.hasToken {
		token := p.peek()
		p.advance()

		if inQuotes {
			if token.Kind() != tokenizer.TokenQuote {
				continue
			}
			if p.hasToken && p.peek().Kind() == tokenizer.TokenQuote {
				p.advance()
				continue
			}
			inQuotes = false
			continue
		}

		switch token.Kind() {
		case tokenizer.TokenNewline:
			return
		case tokenizer.TokenDelim:
			fieldStart = true
			continue
		case tokenizer.TokenQuote:
			inQuotes = fieldStart
		}
		fieldStart = false
	}
}
