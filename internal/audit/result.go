// Package audit assembles questionnaire submissions into persisted audit
// results (write path) and recomputes scores from stored results for
// dashboards and export (read path). Both paths delegate all arithmetic to
// internal/scoring; this package owns the document shape, identifiers,
// timestamps, and boundary rounding.
package audit

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/calidad-labs/audit-compliance-backend/internal/scoring"
)

// QuestionRecord is the flattened per-question entry inside a persisted
// result. Response is nil when the question was left unanswered.
type QuestionRecord struct {
	Text         string            `json:"text"`
	Response     *scoring.Response `json:"response"`
	Observations string            `json:"observations,omitempty"`
	EvidenceURL  string            `json:"evidence_url,omitempty"`
}

// SectionRecord is the flattened per-section entry. Its
// CompletionPercentage is the write-path (submission rules) section mean at
// assembly time; it is not recomputed on read unless Review is invoked.
type SectionRecord struct {
	Title                string                    `json:"title"`
	CompletionPercentage float64                   `json:"completionPercentage"`
	Questions            map[string]QuestionRecord `json:"questions"`
}

// Result is the persisted audit document. Its JSON shape is the de facto
// contract between the assembler and every reader of stored data, so field
// names must not change.
type Result struct {
	ID                   uuid.UUID                `json:"id"`
	Program              string                   `json:"program"`
	AuditDate            time.Time                `json:"auditDate"`
	CompletionPercentage float64                  `json:"completionPercentage"`
	Sections             map[string]SectionRecord `json:"sections"`
	SectionTitles        map[string]string        `json:"sectionTitles,omitempty"`
	SubsectionTitles     map[string]string        `json:"subsectionTitles,omitempty"`
}

// round2 rounds to two decimal places. Applied once, at the assembly and
// report boundaries — never to intermediate values, so rounding error does
// not compound through the aggregation chain.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
