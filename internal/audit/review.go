package audit

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/calidad-labs/audit-compliance-backend/internal/scoring"
)

// SectionReport is one section of a recomputed report, with its risk band.
type SectionReport struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Score    float64      `json:"score"`
	Band     scoring.Band `json:"band"`
	Answered int          `json:"answered"`
	Total    int          `json:"total"`
}

// Report is the read-time view of a stored result, recomputed from its raw
// responses. StoredScore carries the write-path completionPercentage that
// was persisted at assembly time so consumers can see when the two
// strategies diverge; OverallScore is the freshly computed section mean.
type Report struct {
	AuditID      uuid.UUID       `json:"audit_id"`
	Program      string          `json:"program"`
	AuditDate    time.Time       `json:"audit_date"`
	OverallScore float64         `json:"overall_score"`
	OverallBand  scoring.Band    `json:"overall_band"`
	StoredScore  float64         `json:"stored_score"`
	Sections     []SectionReport `json:"sections"`
}

// Review recomputes section and overall scores from a stored result's raw
// responses, ignoring the persisted percentages. The overall score is the
// section mean (every section weighted equally); each percentage is
// classified into a risk band with the given thresholds.
//
// Review is pure and deterministic: sections are ordered by ID and no
// clock or identifier is consulted, so calling it twice on unchanged input
// yields identical output.
func Review(res Result, ru scoring.Rules, th scoring.Thresholds) Report {
	sectionIDs := make([]string, 0, len(res.Sections))
	for id := range res.Sections {
		sectionIDs = append(sectionIDs, id)
	}
	sort.Strings(sectionIDs)

	sections := make([]SectionReport, 0, len(sectionIDs))
	sectionScores := make([]float64, 0, len(sectionIDs))

	for _, id := range sectionIDs {
		rec := res.Sections[id]
		qs := recordQuestions(rec)

		score := scoring.ScoreQuestions(ru, qs)
		sectionScores = append(sectionScores, score)

		answered := 0
		for _, q := range qs {
			if q.Answered() {
				answered++
			}
		}

		sections = append(sections, SectionReport{
			ID:       id,
			Title:    rec.Title,
			Score:    round2(score),
			Band:     scoring.Classify(round2(score), th),
			Answered: answered,
			Total:    len(qs),
		})
	}

	overall := round2(scoring.AggregateBySections(sectionScores))

	return Report{
		AuditID:      res.ID,
		Program:      res.Program,
		AuditDate:    res.AuditDate,
		OverallScore: overall,
		OverallBand:  scoring.Classify(overall, th),
		StoredScore:  res.CompletionPercentage,
		Sections:     sections,
	}
}

// ReviewReport applies the canonical read path: review normalization rules
// and the default 80/50 thresholds. Dashboards and export go through here.
func ReviewReport(res Result) Report {
	return Review(res, scoring.ReviewRules, scoring.DefaultThresholds())
}

// recordQuestions reconstructs scoring questions from a stored section,
// ordered by question ID for determinism. The mean is order-independent;
// the ordering only guarantees bit-identical reports across calls.
func recordQuestions(rec SectionRecord) []scoring.Question {
	ids := make([]string, 0, len(rec.Questions))
	for id := range rec.Questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	qs := make([]scoring.Question, 0, len(ids))
	for _, id := range ids {
		q := rec.Questions[id]
		qs = append(qs, scoring.Question{
			ID:           id,
			Text:         q.Text,
			Response:     q.Response,
			Observations: q.Observations,
			EvidenceURL:  q.EvidenceURL,
		})
	}
	return qs
}
