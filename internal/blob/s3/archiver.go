package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/portfolio"
)

// CycleRecord is the durable snapshot of one scan cycle: everything detected,
// everything planned, and the risk picture after planning.
type CycleRecord struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	ListingCounts map[domain.VenueID]int
	Opportunities []domain.Opportunity
	PlannedTrades []domain.PlannedTrade
	Risk          portfolio.RiskReport
}

// CycleArchiver writes cycle records to blob storage for offline analysis and
// replay, and records each upload in the audit log.
type CycleArchiver struct {
	writer domain.BlobWriter
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewCycleArchiver creates a CycleArchiver. audit may be nil, in which case
// uploads are not audit-logged.
func NewCycleArchiver(writer domain.BlobWriter, audit domain.AuditStore, logger *slog.Logger) *CycleArchiver {
	return &CycleArchiver{
		writer: writer,
		audit:  audit,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// cyclePath builds the object key for a cycle record, partitioned by day so
// prefix listings stay cheap.
func cyclePath(cycleID string, at time.Time) string {
	return fmt.Sprintf("cycles/%s/%s.json", at.UTC().Format("2006/01/02"), cycleID)
}

// ArchiveCycle serializes the record to JSON and uploads it. The object key
// is derived from the cycle's start time.
func (a *CycleArchiver) ArchiveCycle(ctx context.Context, rec CycleRecord) error {
	if rec.CycleID == "" {
		return fmt.Errorf("s3blob: archive cycle: cycle id is required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("s3blob: marshal cycle %s: %w", rec.CycleID, err)
	}

	path := cyclePath(rec.CycleID, rec.StartedAt)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive cycle %s: %w", rec.CycleID, err)
	}

	a.logger.Info("cycle archived",
		slog.String("cycle_id", rec.CycleID),
		slog.String("path", path),
		slog.Int("opportunities", len(rec.Opportunities)),
		slog.Int("planned_trades", len(rec.PlannedTrades)),
	)

	if a.audit != nil {
		if err := a.audit.Log(ctx, "archive.cycle", map[string]any{
			"cycle_id":       rec.CycleID,
			"path":           path,
			"size_bytes":     len(data),
			"opportunities":  len(rec.Opportunities),
			"planned_trades": len(rec.PlannedTrades),
		}); err != nil {
			a.logger.Warn("audit log failed for cycle archive",
				slog.String("cycle_id", rec.CycleID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
