package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calidad-labs/audit-compliance-backend/internal/audit"
)

// ─── GET /api/audits/:auditID/report ─────────────────────────────────────────

// handleGetAuditReport serves the read-path recomputation of a stored
// result: review normalization, section-mean overall, and risk bands from
// the default thresholds. This is what dashboards and the PDF exporter
// render; the persisted completionPercentage is returned alongside as
// stored_score so divergence between the two strategies is visible, never
// silent.
func (s *Server) handleGetAuditReport(w http.ResponseWriter, r *http.Request) {
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

	respond(w, http.StatusOK, audit.ReviewReport(res))
}

// ─── GET /api/dashboard/summary ──────────────────────────────────────────────

type dashboardSummary struct {
	Audits    int            `json:"audits"`
	MeanScore float64        `json:"mean_score"`
	Bands     map[string]int `json:"bands"`
}

// handleDashboardSummary aggregates the read-path overall score of every
// stored audit into a band distribution and a mean, for the landing
// dashboard's chart widgets.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	results, err := s.repo.ListResults(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list results: %w", err))
		return
	}

	summary := dashboardSummary{
		Audits: len(results),
		Bands:  map[string]int{},
	}

	total := 0.0
	for _, res := range results {
		report := audit.ReviewReport(res)
		total += report.OverallScore
		summary.Bands[report.OverallBand.Label]++
	}
	if len(results) > 0 {
		summary.MeanScore = math.Round(total/float64(len(results))*100) / 100
	}

	respond(w, http.StatusOK, summary)
}
