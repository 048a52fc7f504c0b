package scoring

// ─── AGGREGATION ─────────────────────────────────────────────────────────────
//
// All aggregation functions are total over well-typed input: an empty or
// fully-excluded question set yields 0, never NaN. Rounding is the caller's
// concern — these return raw means so intermediate rounding never compounds.

// QuestionScores returns the normalized scores of every counted question,
// in input order. Unanswered and excluded responses are dropped.
func QuestionScores(ru Rules, qs []Question) []float64 {
	scores := make([]float64, 0, len(qs))
	for _, q := range qs {
		if s, counted := ru.NormalizeQuestion(q); counted {
			scores = append(scores, s)
		}
	}
	return scores
}

// ScoreQuestions returns the arithmetic mean of the counted question
// scores, or 0 when nothing counts.
func ScoreQuestions(ru Rules, qs []Question) float64 {
	return Mean(QuestionScores(ru, qs))
}

// SectionScore computes a section's completion percentage: the mean of all
// counted questions pooled across its subsections. Subsections receive no
// weight of their own.
func SectionScore(ru Rules, s Section) float64 {
	return ScoreQuestions(ru, s.Questions())
}

// AggregateFlat is the write-path overall strategy: the mean of every
// individual counted question score across the whole audit, regardless of
// section boundaries. Sections with many questions dominate the average.
func AggregateFlat(ru Rules, sections []Section) float64 {
	var all []float64
	for _, s := range sections {
		all = append(all, QuestionScores(ru, s.Questions())...)
	}
	return Mean(all)
}

// AggregateBySections is the read-path overall strategy: the mean of
// already-computed per-section percentages. Every section counts equally
// regardless of its question count, so this can legitimately disagree with
// AggregateFlat on the same data.
func AggregateBySections(sectionScores []float64) float64 {
	return Mean(sectionScores)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
