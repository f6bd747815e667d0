package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shapestone/shape-scrub/internal/config"
	"github.com/shapestone/shape-scrub/internal/parser"
	"github.com/shapestone/shape-scrub/pkg/scrub"
)

// ErrNotConforming is returned by verify when the input has problems.
var ErrNotConforming = errors.New("input is not well-formed")

func newVerifyCmd() *cobra.Command {
	var delimiter, quote string
	var maxErrors int
	var anyWidth, allowCR bool

	c := &cobra.Command{
		Use:   "verify [INPUT]",
		Short: "Check that a file is strict, uniform-width CSV",
		Long: `verify parses INPUT with a strict RFC 4180 parser and reports every
bare quote, unclosed quote, blank line and width mismatch with its line and
column. It exits non-zero if any problem is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			in, closeIn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeIn()

			opts := parser.DefaultOptions()
			opts.AllowBareCR = allowCR
			if anyWidth {
				opts.FieldsPerRecord = -1
			}
			if len(quote) != 1 {
				return fmt.Errorf("%w: quote %q must be a single byte", scrub.ErrInvalidOptions, quote)
			}
			opts.Quote = rune(quote[0])

			var r io.Reader = in
			if delimiter == "auto" {
				var delim byte
				if delim, r, err = scrub.SniffDelimiter(in, quote[0]); err != nil {
					return err
				}
				opts.Delimiter = rune(delim)
			} else {
				delim, err := config.ParseDelimiter(delimiter)
				if err != nil {
					return err
				}
				opts.Delimiter = rune(delim)
			}

			return verify(cmd.OutOrStdout(), parser.NewParserFromReader(r, opts), maxErrors)
		},
	}

	c.Flags().StringVarP(&delimiter, "delimiter", "d", ",", `delimiter: one byte, \t, tab or auto`)
	c.Flags().StringVar(&quote, "quote", `"`, "quote character")
	c.Flags().IntVar(&maxErrors, "max-errors", 20, "stop listing problems after this many (0 lists all)")
	c.Flags().BoolVar(&anyWidth, "any-width", false, "do not require every record to have the same number of fields")
	c.Flags().BoolVar(&allowCR, "allow-cr", false, `accept a lone \r as a line terminator`)
	return c
}

// verify reads every record from p, printing problems to w.
func verify(w io.Writer, p *parser.Parser, maxErrors int) error {
	problems := 0
	for {
		_, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *parser.ParseError
		if !errors.As(err, &pe) {
			if err != nil {
				return err
			}
			continue
		}
		problems++
		if maxErrors == 0 || problems <= maxErrors {
			fmt.Fprintln(w, pe.Error())
		}
	}

	fmt.Fprintf(w, "%d records ok, %d problems\n", p.Records(), problems)
	if problems > 0 {
		return fmt.Errorf("%w: %d problems", ErrNotConforming, problems)
	}
	return nil
}
