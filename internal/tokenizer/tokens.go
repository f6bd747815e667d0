// Package tokenizer provides character-level tokenization of delimited text
// using Shape's tokenizer framework.
package tokenizer

// Token type constants.
//
// The tokenizer emits simple character-level tokens. The parser decides
// field boundaries and what a quote means in context.
const (
	// Structural tokens
	TokenDelim   = "Delim"   // field separator
	TokenQuote   = "Quote"   // quote byte
	TokenNewline = "Newline" // \r\n, \n or a bare \r

	// Field content token
	TokenField = "Field" // run of content bytes
)
