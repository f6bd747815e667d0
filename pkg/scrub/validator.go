package scrub

import "fmt"

// ExpectedWidth is the canonical field count of a stream. It is unset until
// the first record (or an explicit override) latches it, and never changes
// afterwards.
type ExpectedWidth struct {
	n   int
	set bool
}

// NewExpectedWidth returns a latch preset to n, or an unset latch if n <= 0.
func NewExpectedWidth(n int) *ExpectedWidth {
	w := &ExpectedWidth{}
	if n > 0 {
		w.Set(n)
	}
	return w
}

// Get returns the width and whether it has been set.
func (w *ExpectedWidth) Get() (int, bool) {
	return w.n, w.set
}

// Set latches the width. It reports false, leaving the width untouched, if
// the width was already set.
func (w *ExpectedWidth) Set(n int) bool {
	if w.set {
		return false
	}
	w.n = n
	w.set = true
	return true
}

// VerdictKind classifies a record.
type VerdictKind int

const (
	// Accept means the record already has the expected width.
	Accept VerdictKind = iota
	// Repaired means Repair produced a record of the expected width.
	Repaired
	// Reject means the record is dropped.
	Reject
)

// String returns the string representation of VerdictKind.
func (k VerdictKind) String() string {
	switch k {
	case Accept:
		return "accept"
	case Repaired:
		return "repaired"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("VerdictKind(%d)", k)
	}
}

// Verdict is the Validator's decision on one record. Record is the record
// to write for Accept and Repaired; it is nil for Reject.
type Verdict struct {
	Kind   VerdictKind
	Record *Record
	Reason Reason
}

// Validator decides whether a record is accepted, repaired or rejected.
// It holds configuration only; the width latch is owned by the caller.
type Validator struct {
	dialect Dialect
	repair  bool
}

// NewValidator creates a Validator. Records with the wrong width or a lone
// quote are handed to Repair only when repair is true.
func NewValidator(d Dialect, repair bool) *Validator {
	return &Validator{dialect: d, repair: repair}
}

// Validate classifies rec against width, latching width from rec if it is
// still unset.
//
// Truncated records are always rejected and never latch the width. A
// record with a lone quote is never accepted as the Scanner split it: it is
// repaired or rejected even when its field count already matches. The
// first record otherwise defines the width and is accepted unconditionally.
func (v *Validator) Validate(rec *Record, width *ExpectedWidth) Verdict {
	if rec.Truncated() {
		return Verdict{Kind: Reject, Reason: ReasonTruncated}
	}

	n, ok := width.Get()
	if rec.Anomalies() > 0 {
		return v.validateAnomalous(rec, width, n, ok)
	}
	if !ok {
		width.Set(rec.NumFields())
		return Verdict{Kind: Accept, Record: rec}
	}
	if rec.NumFields() == n {
		return Verdict{Kind: Accept, Record: rec}
	}
	return Verdict{Kind: Reject, Reason: ReasonWidthMismatch}
}

func (v *Validator) validateAnomalous(rec *Record, width *ExpectedWidth, n int, latched bool) Verdict {
	if !v.repair {
		if latched && rec.NumFields() != n {
			return Verdict{Kind: Reject, Reason: ReasonWidthMismatch}
		}
		return Verdict{Kind: Reject, Reason: ReasonBareQuote}
	}

	if !latched {
		folded, ok := refold(rec.Raw(), v.dialect)
		if !ok || folded.truncated {
			return Verdict{Kind: Reject, Reason: ReasonUnsalvageable}
		}
		width.Set(folded.NumFields())
		folded.line = rec.line
		return Verdict{Kind: Repaired, Record: folded}
	}

	outcome := Repair(rec.Raw(), n, v.dialect)
	if outcome.Status != RepairRepaired {
		return Verdict{Kind: Reject, Reason: ReasonUnsalvageable}
	}
	outcome.Record.line = rec.line
	return Verdict{Kind: Repaired, Record: outcome.Record}
}
