// Package scrub sanitizes delimited text in a single streaming pass.
//
// It reads records from an io.Reader, checks each one against the stream's
// expected field count, repairs records that were split apart by unescaped
// quotes, drops the rest, and writes the survivors as canonical CSV.
//
// The pipeline is strictly forward:
//
//	Scanner -> Validator -> (Repair) -> cleanup -> Writer
//
// driven by a Pipeline that owns the RunStats counters and the ExpectedWidth
// latch.
//
// # Expected width
//
// The first record defines the width of the stream unless
// Options.ExpectedColumns overrides it. Every record written afterwards has
// exactly that many fields.
//
// # Repair
//
// A lone quote inside an enclosed field, followed by ordinary content, makes
// the Scanner split the field in two. When that leaves a record with the
// wrong width, Repair re-reads the raw bytes treating those quotes as
// literal text:
//
//	"Robert "Bob" Smith",(202) 555-1212
//
// is written as
//
//	"Robert Bob"" Smith""",(202) 555-1212
//
// The result has the right column count; it does not necessarily reflect
// what the author meant.
//
// # Example usage
//
//	stats, err := scrub.Run(os.Stdin, os.Stdout, scrub.DefaultOptions())
//	if err != nil {
//	    // handle error; stats holds the partial counts
//	}
//	fmt.Fprintln(os.Stderr, scrub.Summary{RunStats: stats})
//
// # Thread Safety
//
// A Pipeline, Scanner or Writer must be used from one goroutine at a time.
// Repair is a pure function and safe for concurrent use.
package scrub
