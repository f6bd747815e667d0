package scrub_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shapestone/shape-scrub/pkg/scrub"
)

// Benchmark inputs are generated once and reused across all benchmarks
var (
	cleanCSV  string
	brokenCSV string
)

func init() {
	var clean, broken strings.Builder
	clean.WriteString("id,name,email,notes\n")
	broken.WriteString("id,name,email,notes\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&clean, "%d,User %d,user%d@example.com,\"note, with comma\"\n", i, i, i)
		switch i % 10 {
		case 0:
			fmt.Fprintf(&broken, "%d,\"User \"%d\" Name\",user%d@example.com,x\n", i, i, i)
		case 5:
			fmt.Fprintf(&broken, "%d,short\n", i)
		default:
			fmt.Fprintf(&broken, "%d,User %d,user%d@example.com,plain\n", i, i, i)
		}
	}
	cleanCSV = clean.String()
	brokenCSV = broken.String()
}

func benchmarkRun(b *testing.B, input string, opts scrub.Options) {
	b.Helper()
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scrub.Run(strings.NewReader(input), io.Discard, opts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_Clean measures the pass-through path.
func BenchmarkRun_Clean(b *testing.B) {
	benchmarkRun(b, cleanCSV, scrub.DefaultOptions())
}

// BenchmarkRun_Broken measures a stream where one row in ten needs repair
// and one in ten is dropped.
func BenchmarkRun_Broken(b *testing.B) {
	benchmarkRun(b, brokenCSV, scrub.DefaultOptions())
}

func BenchmarkRun_Cleaning(b *testing.B) {
	opts := scrub.DefaultOptions()
	opts.TrimWhitespace = true
	opts.ReplaceNewlines = true
	opts.CleanColumnNames = true
	benchmarkRun(b, cleanCSV, opts)
}

func BenchmarkScanner(b *testing.B) {
	b.SetBytes(int64(len(cleanCSV)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sc := scrub.NewScanner(strings.NewReader(cleanCSV), scrub.DefaultDialect())
		for sc.Scan() {
		}
		if err := sc.Err(); err != nil {
			b.Fatal(err)
		}
	}
}
