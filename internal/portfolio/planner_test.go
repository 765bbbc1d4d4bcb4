package portfolio

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SpreadFloor:         0.02,
		ThinSpread:          0.05,
		MaxPositionFraction: 0.1,
		MaxPlatformFraction: 0.6,
		MinCashReservePct:   0.2,
		KellyCap:            0.25,
		MinPositionValue:    10,
	}
}

func makeOpp(id, title string, spread, profit float64) domain.Opportunity {
	return domain.Opportunity{
		ID:              id,
		BuyListing:      domain.Listing{VenueID: domain.VenueKalshi, ID: id, Title: title},
		SellListing:     domain.Listing{VenueID: domain.VenuePolymarket, ID: id, Title: title},
		Outcome:         domain.OutcomeYes,
		Spread:          spread,
		ExpectedProfit:  profit,
		Confidence:      0.8,
		RecommendedSize: 100,
		MaxSize:         100,
		BuyVenue:        domain.VenueKalshi,
		SellVenue:       domain.VenuePolymarket,
	}
}

func emptyBook(totalValue float64) domain.PortfolioSnapshot {
	return domain.PortfolioSnapshot{
		CashByVenue: map[domain.VenueID]float64{
			domain.VenueKalshi:     totalValue / 2,
			domain.VenuePolymarket: totalValue / 2,
		},
		TotalValue: totalValue,
	}
}

func TestPlanEmptyInputYieldsEmptyPlan(t *testing.T) {
	p := NewPlanner(testPlannerConfig(), nil, testLogger())
	if got := p.Plan(nil, emptyBook(1000), time.Now()); len(got) != 0 {
		t.Fatalf("got %d trades from empty input", len(got))
	}
	opps := []domain.Opportunity{makeOpp("o1", "Trump wins", 0.22, 20)}
	if got := p.Plan(opps, domain.PortfolioSnapshot{}, time.Now()); len(got) != 0 {
		t.Fatalf("got %d trades against a valueless portfolio", len(got))
	}
}

func TestPlanKellyFractionIsClamped(t *testing.T) {
	p := NewPlanner(testPlannerConfig(), nil, testLogger())

	// Payoff ratio 0.2 at win prob 0.95 gives a raw Kelly of 0.7.
	opps := []domain.Opportunity{makeOpp("o1", "Trump wins 2024", 0.22, 20)}
	trades := p.Plan(opps, emptyBook(1000), time.Now())
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}

	trade := trades[0]
	if trade.KellyFraction != 0.25 {
		t.Fatalf("kelly fraction got %.4f, want clamp at 0.25", trade.KellyFraction)
	}
	if trade.WinProbability != 0.95 {
		t.Fatalf("win probability got %.4f, want cap at 0.95", trade.WinProbability)
	}
	// Kelly would deploy 25% of the book; the per-position cap wins.
	if trade.PositionValue != 100 {
		t.Fatalf("position value got %.2f, want 100 (10%% of book)", trade.PositionValue)
	}
	if trade.Theme != "politics" {
		t.Fatalf("theme got %q, want politics", trade.Theme)
	}
}

func TestPlanThinSpreadScalesDownSizing(t *testing.T) {
	p := NewPlanner(testPlannerConfig(), nil, testLogger())

	opps := []domain.Opportunity{makeOpp("o1", "Hurricane landfall", 0.03, 20)}
	trades := p.Plan(opps, emptyBook(1000), time.Now())
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if !almost(trades[0].RiskAdjustment, 0.6) {
		t.Fatalf("risk adjustment got %.4f, want 0.6 (0.03/0.05)", trades[0].RiskAdjustment)
	}
}

func TestPlanDropsSpreadsBelowFloor(t *testing.T) {
	p := NewPlanner(testPlannerConfig(), nil, testLogger())

	opps := []domain.Opportunity{makeOpp("o1", "Trump wins", 0.015, 20)}
	if trades := p.Plan(opps, emptyBook(1000), time.Now()); len(trades) != 0 {
		t.Fatalf("kept %d trades below the spread floor", len(trades))
	}
}

func TestPlanRejectsHeavyOpenPositionOverlap(t *testing.T) {
	p := NewPlanner(testPlannerConfig(), nil, testLogger())

	opp := makeOpp("m1", "Trump wins 2024", 0.22, 20)
	snap := emptyBook(1000)
	// Three open positions on the exact buy market: overlap 0.9 > 0.8.
	for range 3 {
		snap.Positions = append(snap.Positions, domain.PortfolioPosition{
			VenueID:      domain.VenueKalshi,
			MarketKey:    opp.BuyListing.Key(),
			CurrentValue: 10,
		})
	}

	if trades := p.Plan([]domain.Opportunity{opp}, snap, time.Now()); len(trades) != 0 {
		t.Fatalf("kept %d trades despite heavy overlap", len(trades))
	}
}

func TestPlanBudgetScalesFirstOverflowThenStops(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.MaxPositionFraction = 0.15
	p := NewPlanner(cfg, nil, testLogger())

	// Distinct themes so no bucket penalty shrinks positions. Each trade sizes
	// to the 15% cap (150); the 80% budget of a 1000 book fits five plus a
	// 50-unit remainder.
	opps := make([]domain.Opportunity, 0, 7)
	for i := range 7 {
		title := fmt.Sprintf("market%02d resolves", i)
		opps = append(opps, makeOpp(fmt.Sprintf("o%d", i), title, 0.22, 20))
	}

	trades := p.Plan(opps, emptyBook(1000), time.Now())
	if len(trades) != 6 {
		t.Fatalf("got %d trades, want 6", len(trades))
	}

	var deployed float64
	for _, tr := range trades {
		deployed += tr.PositionValue
	}
	if !almost(deployed, 800) {
		t.Fatalf("deployed %.2f, want exactly the 800 budget", deployed)
	}
	if !almost(trades[5].PositionValue, 50) {
		t.Fatalf("final trade got %.2f, want scaled to 50", trades[5].PositionValue)
	}
}

func TestPlanSkipsOverflowTooSmallToScale(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.MaxPositionFraction = 0.2
	p := NewPlanner(cfg, nil, testLogger())

	// Four trades at the 20% cap (200) exactly fill the 800 budget; the fifth
	// has zero remaining capacity and is skipped.
	opps := make([]domain.Opportunity, 0, 5)
	for i := range 5 {
		title := fmt.Sprintf("market%02d resolves", i)
		opps = append(opps, makeOpp(fmt.Sprintf("o%d", i), title, 0.22, 20))
	}

	trades := p.Plan(opps, emptyBook(1000), time.Now())
	if len(trades) != 4 {
		t.Fatalf("got %d trades, want 4", len(trades))
	}
}
