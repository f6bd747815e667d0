package scrub

import (
	"bytes"
	"errors"
	"io"
)

// sniffSize is how much input SniffDelimiter inspects.
const sniffSize = 64 * 1024

// sniffCandidates are the delimiters SniffDelimiter chooses from, in order
// of preference on ties.
var sniffCandidates = []byte{',', '\t', ';', '|'}

// SniffDelimiter inspects the start of r and guesses its field delimiter.
// It returns the delimiter and a reader that yields the complete input,
// including the inspected bytes. When nothing conclusive is found it
// returns ','.
func SniffDelimiter(r io.Reader, quote byte) (byte, io.Reader, error) {
	sample := make([]byte, sniffSize)
	n, err := io.ReadFull(r, sample)
	sample = sample[:n]
	full := n == sniffSize
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	default:
		return 0, nil, &StreamError{Op: "read", Err: err}
	}

	delim := detectDelimiter(sample, quote, full)
	return delim, io.MultiReader(bytes.NewReader(sample), r), nil
}

// detectDelimiter scores each candidate by its per-line count, with a
// bonus when the count is the same on every line. If truncated is set the
// last line of sample may be partial and is ignored.
func detectDelimiter(sample []byte, quote byte, truncated bool) byte {
	lines := bytes.Split(sample, []byte{'\n'})
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	best := byte(',')
	bestScore := 0
	for _, delim := range sniffCandidates {
		counts := make([]int, 0, len(lines))
		for _, line := range lines {
			line = bytes.TrimSuffix(line, []byte{'\r'})
			if len(line) == 0 {
				continue
			}
			counts = append(counts, countDelimiter(line, delim, quote))
		}
		if len(counts) == 0 || counts[0] == 0 {
			continue
		}

		score := counts[0]
		consistent := true
		for _, c := range counts[1:] {
			if c != counts[0] {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best = delim
			bestScore = score
		}
	}
	return best
}

// countDelimiter counts occurrences of delim outside quoted sections.
func countDelimiter(line []byte, delim, quote byte) int {
	count := 0
	inQuotes := false
	for _, b := range line {
		if b == quote {
			inQuotes = !inQuotes
		} else if b == delim && !inQuotes {
			count++
		}
	}
	return count
}
