package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calidad-labs/audit-compliance-backend/internal/scoring"
)

// ErrInvalidAuditData is returned when a submission is missing its program
// name or sections, or is structurally malformed. The HTTP layer maps it to
// a 400.
var ErrInvalidAuditData = errors.New("audit: invalid audit data")

// Submission is a full questionnaire submission as received from the form
// frontend.
type Submission struct {
	Program  string            `json:"program"`
	Sections []scoring.Section `json:"sections"`
}

// Validate checks the structural invariants the assembler relies on.
// Response values are already validated by the scoring.Response JSON codec
// at decode time, so an unrecognized token never reaches this point.
func (sub Submission) Validate() error {
	if strings.TrimSpace(sub.Program) == "" {
		return fmt.Errorf("%w: program must not be empty", ErrInvalidAuditData)
	}
	if len(sub.Sections) == 0 {
		return fmt.Errorf("%w: sections must not be empty", ErrInvalidAuditData)
	}
	for _, sec := range sub.Sections {
		if sec.ID == "" {
			return fmt.Errorf("%w: section %q has no id", ErrInvalidAuditData, sec.Title)
		}
		for _, subsec := range sec.Subsections {
			if subsec.ID == "" {
				return fmt.Errorf("%w: subsection %q has no id", ErrInvalidAuditData, subsec.Title)
			}
			for _, q := range subsec.Questions {
				if q.ID == "" {
					return fmt.Errorf("%w: question %q has no id", ErrInvalidAuditData, q.Text)
				}
			}
		}
	}
	return nil
}

// NewResult assembles a Submission into a persisted Result: it normalizes
// every response under SubmissionRules, computes per-section percentages
// and the flat-mean overall percentage, flattens the tree into the stored
// map shape, and stamps a fresh identifier and audit date. It has no side
// effects beyond the returned value — persistence is the caller's job.
func NewResult(sub Submission) (Result, error) {
	return assemble(sub, uuid.New(), time.Now().UTC())
}

// assemble is NewResult with the identifier and timestamp injected, so the
// pure transformation is testable deterministically.
func assemble(sub Submission, id uuid.UUID, auditDate time.Time) (Result, error) {
	if err := sub.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		ID:                   id,
		Program:              sub.Program,
		AuditDate:            auditDate,
		CompletionPercentage: round2(scoring.AggregateFlat(scoring.SubmissionRules, sub.Sections)),
		Sections:             make(map[string]SectionRecord, len(sub.Sections)),
		SectionTitles:        make(map[string]string, len(sub.Sections)),
		SubsectionTitles:     make(map[string]string),
	}

	for _, sec := range sub.Sections {
		questions := make(map[string]QuestionRecord)
		for _, subsec := range sec.Subsections {
			res.SubsectionTitles[subsec.ID] = subsec.Title
			for _, q := range subsec.Questions {
				questions[q.ID] = QuestionRecord{
					Text:         q.Text,
					Response:     q.Response,
					Observations: q.Observations,
					EvidenceURL:  q.EvidenceURL,
				}
			}
		}

		res.Sections[sec.ID] = SectionRecord{
			Title:                sec.Title,
			CompletionPercentage: round2(scoring.SectionScore(scoring.SubmissionRules, sec)),
			Questions:            questions,
		}
		res.SectionTitles[sec.ID] = sec.Title
	}

	return res, nil
}
