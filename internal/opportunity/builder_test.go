package opportunity

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/pricing"
)

func testFees() pricing.FeeTable {
	return pricing.NewFeeTable(map[domain.VenueID]float64{
		domain.VenuePolymarket: 0.0,
		domain.VenueKalshi:     0.01,
	})
}

func testPair() domain.MatchedPair {
	kalshi := domain.Listing{
		VenueID: domain.VenueKalshi, ID: "TRUMP-24", Title: "Trump wins 2024 election",
		YesPrice: 0.42, NoPrice: 0.58, Liquidity: 500, Active: true,
	}
	poly := domain.Listing{
		VenueID: domain.VenuePolymarket, ID: "0xabc", Title: "Trump wins the 2024 election",
		YesPrice: 0.65, NoPrice: 0.35, Liquidity: 800, Active: true,
	}
	pair, _ := domain.NewMatchedPair(kalshi, poly, 0.9)
	return pair
}

func TestBuildCrossVenueYes(t *testing.T) {
	builder := NewBuilder(testFees(), BuilderConfig{
		SlippageFactor:  0.005,
		MinPositionSize: 10,
		MaxPositionSize: 1000,
	})

	now := time.Now()
	opp, err := builder.Build(testPair(), domain.OutcomeYes, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if opp.ID == "" {
		t.Fatal("missing opportunity id")
	}
	if opp.BuyVenue != domain.VenueKalshi || opp.SellVenue != domain.VenuePolymarket {
		t.Fatalf("wrong direction: buy=%s sell=%s", opp.BuyVenue, opp.SellVenue)
	}
	if opp.BuyListing.VenueID != domain.VenueKalshi {
		t.Fatalf("buy listing venue got %s, want kalshi", opp.BuyListing.VenueID)
	}

	wantBuy := 0.42 * 1.005
	wantSell := 0.65 * 0.995
	if math.Abs(opp.BuyPrice-wantBuy) > 1e-9 || math.Abs(opp.SellPrice-wantSell) > 1e-9 {
		t.Fatalf("prices got (%.6f, %.6f), want (%.6f, %.6f)", opp.BuyPrice, opp.SellPrice, wantBuy, wantSell)
	}
	if math.Abs(opp.Spread-(wantSell-wantBuy)) > 1e-9 {
		t.Fatalf("spread got %.6f, want %.6f", opp.Spread, wantSell-wantBuy)
	}

	// Less liquid side binds the size.
	if opp.RecommendedSize != 500 || opp.MaxSize != 500 {
		t.Fatalf("sizes got (%.0f, %.0f), want (500, 500)", opp.RecommendedSize, opp.MaxSize)
	}

	qty := 500.0
	wantProfit := (wantSell-wantBuy)*qty - 0.01*wantBuy*qty
	if math.Abs(opp.ExpectedProfit-wantProfit) > 1e-9 {
		t.Fatalf("profit got %.6f, want %.6f", opp.ExpectedProfit, wantProfit)
	}
	wantPct := wantProfit / (wantBuy * qty * 1.01)
	if math.Abs(opp.ExpectedProfitPct-wantPct) > 1e-9 {
		t.Fatalf("profit pct got %.6f, want %.6f", opp.ExpectedProfitPct, wantPct)
	}
	if opp.Confidence != 0.9 {
		t.Fatalf("confidence got %.2f, want 0.9", opp.Confidence)
	}
}

func TestBuildThinSpreadFloorsAtZeroButKeepsLoss(t *testing.T) {
	builder := NewBuilder(testFees(), BuilderConfig{
		SlippageFactor:  0.01,
		MinPositionSize: 10,
		MaxPositionSize: 1000,
	})

	kalshi := domain.Listing{VenueID: domain.VenueKalshi, ID: "m1", YesPrice: 0.50, NoPrice: 0.50, Liquidity: 100, Active: true}
	poly := domain.Listing{VenueID: domain.VenuePolymarket, ID: "m2", YesPrice: 0.505, NoPrice: 0.495, Liquidity: 100, Active: true}
	pair, _ := domain.NewMatchedPair(kalshi, poly, 0.8)

	opp, err := builder.Build(pair, domain.OutcomeYes, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if opp.Spread != 0 {
		t.Fatalf("spread got %.6f, want 0 after slippage crossed the legs", opp.Spread)
	}
	if opp.ExpectedProfit >= 0 {
		t.Fatalf("profit got %.6f, want negative so the scorer drops it", opp.ExpectedProfit)
	}
}

func TestBuildUnknownVenueFails(t *testing.T) {
	fees := pricing.NewFeeTable(map[domain.VenueID]float64{domain.VenueKalshi: 0.01})
	builder := NewBuilder(fees, BuilderConfig{SlippageFactor: 0.005, MinPositionSize: 10, MaxPositionSize: 1000})

	if _, err := builder.Build(testPair(), domain.OutcomeYes, time.Now()); !errors.Is(err, domain.ErrUnknownVenue) {
		t.Fatalf("expected ErrUnknownVenue, got %v", err)
	}
}

func TestBuildUsesEarliestExpiry(t *testing.T) {
	builder := NewBuilder(testFees(), BuilderConfig{SlippageFactor: 0.005, MinPositionSize: 10, MaxPositionSize: 1000})

	soon := time.Now().Add(24 * time.Hour)
	later := soon.Add(48 * time.Hour)
	pair := testPair()
	pair.A.ExpiresAt = &later
	pair.B.ExpiresAt = &soon

	opp, err := builder.Build(pair, domain.OutcomeYes, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if opp.ExpiresAt == nil || !opp.ExpiresAt.Equal(soon) {
		t.Fatalf("expiry got %v, want %v", opp.ExpiresAt, soon)
	}
}
