package scrub

import "fmt"

// RepairStatus tags a RepairOutcome.
type RepairStatus int

const (
	// RepairUnchanged means the record held no over-split quoted field, so
	// there was nothing to merge.
	RepairUnchanged RepairStatus = iota
	// RepairRepaired means merging produced exactly the expected width.
	RepairRepaired
	// RepairUnsalvageable means merging could not produce the expected width.
	RepairUnsalvageable
)

// String returns the string representation of RepairStatus.
func (s RepairStatus) String() string {
	switch s {
	case RepairUnchanged:
		return "unchanged"
	case RepairRepaired:
		return "repaired"
	case RepairUnsalvageable:
		return "unsalvageable"
	default:
		return fmt.Sprintf("RepairStatus(%d)", s)
	}
}

// RepairOutcome is the result of Repair. Record is set only when Status is
// RepairRepaired.
type RepairOutcome struct {
	Status RepairStatus
	Record *Record
}

// Repair re-tokenizes the raw bytes of one record, treating quotes that
// prematurely closed an enclosed field as literal content.
//
// Every fragment that the strict Scanner split off after a lone quote is
// folded back into the field it started in, and the quote bytes are kept, so
// `"Robert "Bob" Smith",x` becomes the two fields `Robert Bob" Smith"` and
// `x`. Merging is all or nothing: either every fragment is folded and the
// result has exactly width fields, or the record is unsalvageable.
//
// Repair is a pure function; it does not retain raw.
func Repair(raw []byte, width int, d Dialect) RepairOutcome {
	rec, ok := refold(raw, d)
	if !ok {
		return RepairOutcome{Status: RepairUnsalvageable}
	}
	if rec.anomalies == 0 {
		return RepairOutcome{Status: RepairUnchanged}
	}
	if rec.truncated || rec.NumFields() != width {
		return RepairOutcome{Status: RepairUnsalvageable}
	}
	return RepairOutcome{Status: RepairRepaired, Record: rec}
}

// refold splits raw in lenient mode. It reports false if raw holds more
// than one record.
func refold(raw []byte, d Dialect) (*Record, bool) {
	rec := &Record{}
	sp := newSplitter(d, rec, true)
	if _, _, done := sp.feed(raw); done {
		return nil, false
	}
	sp.finish()
	rec.raw = append(rec.raw, raw...)
	return rec, true
}
