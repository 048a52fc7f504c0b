package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calidad-labs/audit-compliance-backend/internal/audit"
	"github.com/calidad-labs/audit-compliance-backend/internal/scoring"
)

// ─── POST /api/audits ────────────────────────────────────────────────────────

// handleSubmitAudit assembles a questionnaire submission into a scored
// result and persists it. The persisted completionPercentage is the
// write-path flat mean; dashboards recompute their own view via the report
// endpoint.
func (s *Server) handleSubmitAudit(w http.ResponseWriter, r *http.Request) {
	var sub audit.Submission
	if !decode(w, r, &sub) {
		return
	}

	res, err := audit.NewResult(sub)
	if err != nil {
		s.respondDomainErr(w, r, err)
		return
	}

	if err := s.repo.CreateResult(r.Context(), res); err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create result: %w", err))
		return
	}

	respond(w, http.StatusCreated, res)
}

// ─── GET /api/audits ─────────────────────────────────────────────────────────

// auditSummary is the per-audit row on the dashboard list. It carries both
// the persisted write-path score and the freshly recomputed read-path
// score; the two can legitimately differ, and the band always follows the
// recomputed value so every view categorizes consistently.
type auditSummary struct {
	ID                   string       `json:"id"`
	Program              string       `json:"program"`
	AuditDate            time.Time    `json:"audit_date"`
	CompletionPercentage float64      `json:"completion_percentage"`
	OverallScore         float64      `json:"overall_score"`
	Band                 scoring.Band `json:"band"`
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	results, err := s.repo.ListResults(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list results: %w", err))
		return
	}

	summaries := make([]auditSummary, len(results))
	for i, res := range results {
		report := audit.ReviewReport(res)
		summaries[i] = auditSummary{
			ID:                   res.ID.String(),
			Program:              res.Program,
			AuditDate:            res.AuditDate,
			CompletionPercentage: res.CompletionPercentage,
			OverallScore:         report.OverallScore,
			Band:                 report.OverallBand,
		}
	}

	respond(w, http.StatusOK, map[string]any{"audits": summaries})
}

// ─── GET /api/audits/:auditID ────────────────────────────────────────────────

// handleGetAudit serves the persisted result exactly as stored. Scores are
// NOT recomputed here; use the report endpoint for the read-path view.
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParse(chi.URLParam(r, "auditID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid audit id")
		return
	}

	res, err := s.repo.GetResult(r.Context(), id)
	if err != nil {
		s.respondDomainErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, res)
}

// ─── PUT /api/audits/:auditID ────────────────────────────────────────────────

// handleReplaceAudit fully replaces a stored result with a re-assembled
// submission under the same ID. There is no partial patching of nested
// scores: the whole tree is recomputed and rewritten.
func (s *Server) handleReplaceAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParse(chi.URLParam(r, "auditID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid audit id")
		return
	}

	var sub audit.Submission
	if !decode(w, r, &sub) {
		return
	}

	res, err := audit.NewResult(sub)
	if err != nil {
		s.respondDomainErr(w, r, err)
		return
	}
	res.ID = id

	if err := s.repo.ReplaceResult(r.Context(), res); err != nil {
		s.respondDomainErr(w, r, fmt.Errorf("replace result: %w", err))
		return
	}

	respond(w, http.StatusOK, res)
}

// ─── DELETE /api/audits/:auditID ─────────────────────────────────────────────

func (s *Server) handleDeleteAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParse(chi.URLParam(r, "auditID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid audit id")
		return
	}

	if err := s.repo.DeleteResult(r.Context(), id); err != nil {
		s.respondDomainErr(w, r, fmt.Errorf("delete result: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
