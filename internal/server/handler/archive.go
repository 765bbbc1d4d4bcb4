package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// ArchiveHandler serves the cold-storage cycle archive index.
type ArchiveHandler struct {
	blobs  domain.BlobReader
	logger *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(blobs domain.BlobReader, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{blobs: blobs, logger: logger}
}

type archiveEntry struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type listArchivesResponse struct {
	Archives []archiveEntry `json:"archives"`
}

// List returns archived cycle objects, optionally filtered by a day prefix.
// GET /api/archives?prefix=2026/03/14
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	prefix := "cycles/"
	if v := r.URL.Query().Get("prefix"); v != "" {
		prefix += v
	}

	infos, err := h.blobs.List(r.Context(), prefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list archives failed",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}

	entries := make([]archiveEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, archiveEntry{
			Path:         info.Path,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	writeJSON(w, http.StatusOK, listArchivesResponse{Archives: entries})
}
