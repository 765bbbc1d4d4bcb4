package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// TradeLister is the slice of the planned-trade store this handler needs.
type TradeLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.PlannedTrade, error)
}

// TradeHandler serves planned-trade endpoints.
type TradeHandler struct {
	trades TradeLister
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(trades TradeLister, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, logger: logger}
}

type listTradesResponse struct {
	Trades []domain.PlannedTrade `json:"trades"`
}

// ListRecent returns the most recently planned trades.
// GET /api/trades?limit=50
func (h *TradeHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 200)

	trades, err := h.trades.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list trades failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list planned trades")
		return
	}

	if trades == nil {
		trades = []domain.PlannedTrade{}
	}
	writeJSON(w, http.StatusOK, listTradesResponse{Trades: trades})
}
