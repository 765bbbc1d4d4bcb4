package handler

import (
	"log/slog"
	"net/http"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/portfolio"
)

// RiskAssessor computes the portfolio risk report.
type RiskAssessor interface {
	Assess(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade) portfolio.RiskReport
}

// PortfolioHandler serves portfolio and risk endpoints.
type PortfolioHandler struct {
	source domain.PortfolioSource
	risk   RiskAssessor
	logger *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(source domain.PortfolioSource, risk RiskAssessor, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{source: source, risk: risk, logger: logger}
}

// GetSnapshot returns the current portfolio snapshot.
// GET /api/portfolio
func (h *PortfolioHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: portfolio snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetRisk returns the risk report for the current portfolio.
// GET /api/portfolio/risk
func (h *PortfolioHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: portfolio snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load portfolio")
		return
	}
	writeJSON(w, http.StatusOK, h.risk.Assess(snap, nil))
}
