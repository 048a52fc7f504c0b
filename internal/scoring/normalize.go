package scoring

// ─── REVIEW WEIGHTS ──────────────────────────────────────────────────────────

// The read path expresses categorical compliance as a weight out of 5, then
// scales to a percentage: yes 5/5 → 100, partial 3/5 → 60, no 1/5 → 20.
const (
	reviewMaxWeight     = 5
	reviewYesWeight     = 5
	reviewPartialWeight = 3
	reviewNoWeight      = 1
)

// ─── RULES ───────────────────────────────────────────────────────────────────

// Rules maps a response to a canonical compliance score in [0,100] and
// decides whether the question counts toward an average denominator.
//
// Two rule sets exist because the original system implemented the write and
// read paths independently and they diverged. Both are kept as named,
// explicit strategies; neither is "the fix". SubmissionRules backs the
// persisted completionPercentage, ReviewRules backs dashboards and export.
type Rules struct {
	// Name identifies the rule set in logs and stored documents.
	Name string

	// Per-token scores.
	Yes     float64
	Partial float64
	No      float64

	// NA is the score assigned to not-applicable responses when CountNA is
	// true. When CountNA is false, na responses are excluded from both the
	// numerator and the denominator.
	NA      float64
	CountNA bool
}

// SubmissionRules is the write-path mapping used when assembling a result
// for persistence. Not-applicable counts as full compliance.
var SubmissionRules = Rules{
	Name:    "submission",
	Yes:     100,
	Partial: 50,
	No:      0,
	NA:      100,
	CountNA: true,
}

// ReviewRules is the read-path mapping used when recomputing scores for
// dashboards and export. Not-applicable questions are excluded entirely.
var ReviewRules = Rules{
	Name:    "review",
	Yes:     100 * reviewYesWeight / reviewMaxWeight,
	Partial: 100 * reviewPartialWeight / reviewMaxWeight,
	No:      100 * reviewNoWeight / reviewMaxWeight,
	CountNA: false,
}

// Normalize converts a response to a score in [0,100]. counted=false means
// the question must be excluded from both numerator and denominator (na
// under ReviewRules, or the zero Response). Numeric responses are treated
// as already normalized and scaled by 100 under both rule sets.
func (ru Rules) Normalize(r Response) (score float64, counted bool) {
	switch r.kind {
	case kindYes:
		return ru.Yes, true
	case kindPartial:
		return ru.Partial, true
	case kindNo:
		return ru.No, true
	case kindNA:
		if ru.CountNA {
			return ru.NA, true
		}
		return 0, false
	case kindNumeric:
		return r.numeric * 100, true
	default:
		return 0, false
	}
}

// NormalizeQuestion applies Normalize to a question's response. Unanswered
// questions are never counted: they neither penalize nor inflate the score.
func (ru Rules) NormalizeQuestion(q Question) (score float64, counted bool) {
	if q.Response == nil {
		return 0, false
	}
	return ru.Normalize(*q.Response)
}
