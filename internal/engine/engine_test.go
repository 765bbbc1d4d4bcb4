package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	s3blob "github.com/Divyesh-Thirukonda/quantshit-sub001/internal/blob/s3"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/matching"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/notify"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/opportunity"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/portfolio"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/pricing"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/venue"
)

type fakeSource struct {
	venue    domain.VenueID
	listings []domain.Listing
	err      error
}

func (f *fakeSource) Venue() domain.VenueID { return f.venue }

func (f *fakeSource) FetchListings(context.Context, float64) ([]domain.Listing, error) {
	return f.listings, f.err
}

type memOppStore struct {
	inserted []domain.Opportunity
	planned  []string
}

func (m *memOppStore) Insert(_ context.Context, opp domain.Opportunity) error {
	m.inserted = append(m.inserted, opp)
	return nil
}

func (m *memOppStore) InsertBatch(_ context.Context, opps []domain.Opportunity) error {
	m.inserted = append(m.inserted, opps...)
	return nil
}

func (m *memOppStore) MarkPlanned(_ context.Context, id string) error {
	m.planned = append(m.planned, id)
	return nil
}

func (m *memOppStore) ListRecent(context.Context, int) ([]domain.Opportunity, error) {
	return m.inserted, nil
}

type memTradeStore struct {
	trades []domain.PlannedTrade
}

func (m *memTradeStore) Insert(_ context.Context, trade domain.PlannedTrade) error {
	m.trades = append(m.trades, trade)
	return nil
}

func (m *memTradeStore) ListRecent(context.Context, int) ([]domain.PlannedTrade, error) {
	return m.trades, nil
}

func (m *memTradeStore) ListSince(context.Context, time.Time) ([]domain.PlannedTrade, error) {
	return m.trades, nil
}

type memBus struct {
	published map[string]int
	streamed  int
}

func (m *memBus) Publish(_ context.Context, channel string, _ []byte) error {
	if m.published == nil {
		m.published = make(map[string]int)
	}
	m.published[channel]++
	return nil
}

func (m *memBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (m *memBus) StreamAppend(context.Context, string, []byte) error {
	m.streamed++
	return nil
}

func (m *memBus) StreamRead(context.Context, string, string, int) ([]domain.StreamMessage, error) {
	return nil, nil
}

type memArchiver struct {
	records []s3blob.CycleRecord
}

func (m *memArchiver) ArchiveCycle(_ context.Context, rec s3blob.CycleRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testListings() (kalshi, poly []domain.Listing) {
	kalshi = []domain.Listing{{
		VenueID:   domain.VenueKalshi,
		ID:        "FED-26MAR",
		Title:     "Fed cuts rates in March 2026",
		YesPrice:  0.42,
		NoPrice:   0.58,
		Volume24h: 5000,
		Liquidity: 500,
		Active:    true,
	}}
	poly = []domain.Listing{{
		VenueID:   domain.VenuePolymarket,
		ID:        "0xfed",
		Title:     "Will the Fed cut rates in March 2026?",
		YesPrice:  0.65,
		NoPrice:   0.35,
		Volume24h: 9000,
		Liquidity: 800,
		Active:    true,
	}}
	return kalshi, poly
}

func testCore(t *testing.T, sources []domain.ListingSource, portSrc domain.PortfolioSource) Core {
	t.Helper()

	logger := testLogger()
	norm := matching.NewNormalizer(nil)
	strategy := matching.NewJaccard(norm, matching.JaccardConfig{KeyTermBonusCap: 0.2})
	fees := pricing.NewFeeTable(map[domain.VenueID]float64{
		domain.VenuePolymarket: 0.0,
		domain.VenueKalshi:     0.01,
	})
	themer := portfolio.NewThemer(nil)

	return Core{
		Sources: sources,
		Matcher: matching.NewMatcher(strategy, 0.5, logger),
		Builder: opportunity.NewBuilder(fees, opportunity.BuilderConfig{
			SlippageFactor:  0.005,
			MinPositionSize: 10,
			MaxPositionSize: 1000,
		}),
		Scorer: opportunity.NewScorer(opportunity.ScorerConfig{
			MinProfit:    0,
			MinProfitPct: 0.02,
		}, logger),
		Validator: opportunity.NewValidator(fees, opportunity.ValidatorConfig{
			MinProfitPct:    0.02,
			MinConfidence:   0.1,
			MinPositionSize: 10,
			MaxPositionSize: 1000,
		}),
		Planner: portfolio.NewPlanner(portfolio.PlannerConfig{
			SpreadFloor:         0.02,
			ThinSpread:          0.05,
			MaxPositionFraction: 0.1,
			MaxPlatformFraction: 0.6,
			MinCashReservePct:   0.2,
			KellyCap:            0.25,
			MinPositionValue:    10,
		}, themer, logger),
		Risk:      portfolio.NewRiskManager(themer),
		Portfolio: portSrc,
	}
}

func TestCycleEndToEnd(t *testing.T) {
	kalshi, poly := testListings()
	sources := []domain.ListingSource{
		&fakeSource{venue: domain.VenueKalshi, listings: kalshi},
		&fakeSource{venue: domain.VenuePolymarket, listings: poly},
	}
	portSrc := venue.NewStaticPortfolioSource(map[domain.VenueID]float64{
		domain.VenueKalshi:     10000,
		domain.VenuePolymarket: 10000,
	}, nil, 0)

	oppStore := &memOppStore{}
	tradeStore := &memTradeStore{}
	bus := &memBus{}
	archiver := &memArchiver{}

	e := New(
		Config{ScanInterval: time.Minute, MinVolume: 1000, PlanTrades: true},
		testCore(t, sources, portSrc),
		Sinks{
			Opportunities: oppStore,
			Trades:        tradeStore,
			Bus:           bus,
			Notifier:      notify.NewNotifier(nil, nil, testLogger()),
			Archiver:      archiver,
		},
		testLogger(),
	)

	result, err := e.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if result.Matches != 1 {
		t.Fatalf("Matches = %d, want 1", result.Matches)
	}
	if len(result.Opportunities) != 1 {
		t.Fatalf("Opportunities = %d, want 1", len(result.Opportunities))
	}
	if len(result.PlannedTrades) != 1 {
		t.Fatalf("PlannedTrades = %d, want 1", len(result.PlannedTrades))
	}

	opp := result.Opportunities[0]
	if opp.BuyVenue != domain.VenueKalshi || opp.SellVenue != domain.VenuePolymarket {
		t.Errorf("direction = buy %s sell %s, want buy kalshi sell polymarket",
			opp.BuyVenue, opp.SellVenue)
	}
	if opp.ExpectedProfit <= 0 {
		t.Errorf("ExpectedProfit = %.4f, want positive", opp.ExpectedProfit)
	}

	if len(oppStore.inserted) != 1 {
		t.Errorf("stored %d opportunities, want 1", len(oppStore.inserted))
	}
	if len(oppStore.planned) != 1 || oppStore.planned[0] != opp.ID {
		t.Errorf("planned ids = %v, want [%s]", oppStore.planned, opp.ID)
	}
	if len(tradeStore.trades) != 1 {
		t.Errorf("stored %d trades, want 1", len(tradeStore.trades))
	}

	if bus.published[domain.ChannelOpportunities] != 1 {
		t.Errorf("opportunity events = %d, want 1", bus.published[domain.ChannelOpportunities])
	}
	if bus.published[domain.ChannelTrades] != 1 {
		t.Errorf("trade events = %d, want 1", bus.published[domain.ChannelTrades])
	}
	if bus.streamed != 1 {
		t.Errorf("stream appends = %d, want 1", bus.streamed)
	}

	if len(archiver.records) != 1 || archiver.records[0].CycleID != result.CycleID {
		t.Errorf("archived records = %+v, want one with cycle id %s", archiver.records, result.CycleID)
	}

	if result.Risk.Overall <= 0 || result.Risk.Overall > 1 {
		t.Errorf("Risk.Overall = %.4f, want within (0,1]", result.Risk.Overall)
	}
}

func TestCycleAbortsWhenSourceFails(t *testing.T) {
	kalshi, _ := testListings()
	sources := []domain.ListingSource{
		&fakeSource{venue: domain.VenueKalshi, listings: kalshi},
		&fakeSource{venue: domain.VenuePolymarket, err: errors.New("gateway timeout")},
	}
	portSrc := venue.NewStaticPortfolioSource(map[domain.VenueID]float64{}, nil, 0)
	oppStore := &memOppStore{}

	e := New(
		Config{ScanInterval: time.Minute, PlanTrades: true},
		testCore(t, sources, portSrc),
		Sinks{Opportunities: oppStore},
		testLogger(),
	)

	if _, err := e.Cycle(context.Background()); err == nil {
		t.Fatal("expected cycle error when a venue fails")
	}
	if len(oppStore.inserted) != 0 {
		t.Errorf("stored %d opportunities after failed cycle, want 0", len(oppStore.inserted))
	}
}

func TestCycleScanOnlySkipsPlanningAndPersistence(t *testing.T) {
	kalshi, poly := testListings()
	sources := []domain.ListingSource{
		&fakeSource{venue: domain.VenueKalshi, listings: kalshi},
		&fakeSource{venue: domain.VenuePolymarket, listings: poly},
	}

	oppStore := &memOppStore{}
	tradeStore := &memTradeStore{}
	bus := &memBus{}

	e := New(
		Config{ScanInterval: time.Minute, PlanTrades: false},
		testCore(t, sources, nil),
		Sinks{Opportunities: oppStore, Trades: tradeStore, Bus: bus},
		testLogger(),
	)

	result, err := e.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if len(result.Opportunities) != 1 {
		t.Fatalf("Opportunities = %d, want 1", len(result.Opportunities))
	}
	if len(result.PlannedTrades) != 0 {
		t.Errorf("PlannedTrades = %d, want 0 in scan mode", len(result.PlannedTrades))
	}
	if len(oppStore.inserted) != 0 || len(tradeStore.trades) != 0 {
		t.Errorf("scan mode must not persist, got %d opps %d trades",
			len(oppStore.inserted), len(tradeStore.trades))
	}
	if bus.published[domain.ChannelOpportunities] != 1 {
		t.Errorf("opportunity events = %d, want 1", bus.published[domain.ChannelOpportunities])
	}
}
