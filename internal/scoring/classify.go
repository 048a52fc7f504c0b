package scoring

import "fmt"

// ─── RISK BANDS ──────────────────────────────────────────────────────────────

// Band is one of the three ordered risk categories derived from a
// completion percentage. Labels are the Spanish display strings the
// frontend renders; Color is the UI color token.
type Band struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	BandGood    = Band{Label: "Bueno", Color: "green"}
	BandRegular = Band{Label: "Regular", Color: "yellow"}
	BandBad     = Band{Label: "Malo", Color: "red"}
)

// Thresholds holds the inclusive lower bounds of the two upper bands.
// They are an explicit parameter rather than package state so that wiring
// per-form thresholds later is a call-site change, not a new code path.
type Thresholds struct {
	// Good is the minimum percentage classified as Bueno.
	Good float64
	// Regular is the minimum percentage classified as Regular. Anything
	// below is Malo.
	Regular float64
}

// DefaultThresholds returns the authoritative 80/50 cutoffs. Every consumer
// (API, dashboards, export) must classify with the same thresholds to avoid
// visibly inconsistent categorizations across views.
func DefaultThresholds() Thresholds {
	return Thresholds{Good: 80, Regular: 50}
}

// Validate checks that the thresholds are ordered and within [0,100].
func (t Thresholds) Validate() error {
	if t.Good < 0 || t.Good > 100 {
		return fmt.Errorf("thresholds: good=%v out of range [0,100]", t.Good)
	}
	if t.Regular < 0 || t.Regular > 100 {
		return fmt.Errorf("thresholds: regular=%v out of range [0,100]", t.Regular)
	}
	if t.Regular >= t.Good {
		return fmt.Errorf("thresholds: regular (%v) must be below good (%v)", t.Regular, t.Good)
	}
	return nil
}

// Classify maps a percentage to its risk band. Boundary values belong to
// the higher band: Classify(80, DefaultThresholds()) is Bueno and
// Classify(50, ...) is Regular.
func Classify(p float64, t Thresholds) Band {
	switch {
	case p >= t.Good:
		return BandGood
	case p >= t.Regular:
		return BandRegular
	default:
		return BandBad
	}
}
