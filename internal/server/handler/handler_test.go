package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

type fakeOppLister struct {
	opps []domain.Opportunity
	err  error
}

func (f *fakeOppLister) ListRecent(_ context.Context, limit int) ([]domain.Opportunity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.opps) {
		return f.opps[:limit], nil
	}
	return f.opps, nil
}

type fakeListingCache struct {
	listings []domain.Listing
	err      error
}

func (f *fakeListingCache) SetBatch(context.Context, domain.VenueID, []domain.Listing) error {
	return nil
}

func (f *fakeListingCache) GetBatch(context.Context, domain.VenueID) ([]domain.Listing, error) {
	return f.listings, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListOpportunitiesHonoursLimit(t *testing.T) {
	lister := &fakeOppLister{opps: []domain.Opportunity{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}
	h := NewOpportunityHandler(lister, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities?limit=2", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp listOpportunitiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Opportunities) != 2 {
		t.Errorf("returned %d opportunities, want 2", len(resp.Opportunities))
	}
}

func TestListOpportunitiesEmptyIsArrayNotNull(t *testing.T) {
	h := NewOpportunityHandler(&fakeOppLister{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	if got := rec.Body.String(); got != `{"opportunities":[]}` {
		t.Errorf("body = %s, want empty array", got)
	}
}

func TestListOpportunitiesStoreErrorIs500(t *testing.T) {
	h := NewOpportunityHandler(&fakeOppLister{err: errors.New("down")}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetListingsMissingSnapshotIs404(t *testing.T) {
	h := NewListingHandler(&fakeListingCache{err: domain.ErrNotFound}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/listings/polymarket", nil)
	req.SetPathValue("venue", "polymarket")
	rec := httptest.NewRecorder()
	h.GetByVenue(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthDegradedWhenDependencyFails(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": fakePinger{},
		"redis":    fakePinger{err: errors.New("connection refused")},
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Dependencies["postgres"] != "ok" {
		t.Errorf("postgres = %q, want ok", resp.Dependencies["postgres"])
	}
}

func TestParseListOptsParsesTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/audit?limit=9999&offset=10&since=2026-01-02T00:00:00Z", nil)

	opts := parseListOpts(req)
	if opts.Limit != 500 {
		t.Errorf("Limit = %d, want capped at 500", opts.Limit)
	}
	if opts.Offset != 10 {
		t.Errorf("Offset = %d, want 10", opts.Offset)
	}
	if opts.Since == nil || opts.Since.Year() != 2026 {
		t.Errorf("Since = %v, want parsed 2026 timestamp", opts.Since)
	}
	if opts.Until != nil {
		t.Errorf("Until = %v, want nil", opts.Until)
	}
}
