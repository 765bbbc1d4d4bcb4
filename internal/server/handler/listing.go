package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// ListingHandler serves cached listing snapshots per venue.
type ListingHandler struct {
	cache  domain.ListingCache
	logger *slog.Logger
}

// NewListingHandler creates a ListingHandler.
func NewListingHandler(cache domain.ListingCache, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{cache: cache, logger: logger}
}

type listListingsResponse struct {
	Venue    domain.VenueID   `json:"venue"`
	Listings []domain.Listing `json:"listings"`
}

// GetByVenue returns the latest cached listing snapshot for one venue.
// GET /api/listings/{venue}
func (h *ListingHandler) GetByVenue(w http.ResponseWriter, r *http.Request) {
	venue := domain.VenueID(r.PathValue("venue"))
	if venue == "" {
		writeError(w, http.StatusBadRequest, "missing venue")
		return
	}

	listings, err := h.cache.GetBatch(r.Context(), venue)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshot for venue")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get listings failed",
			slog.String("venue", string(venue)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load listings")
		return
	}

	writeJSON(w, http.StatusOK, listListingsResponse{Venue: venue, Listings: listings})
}
