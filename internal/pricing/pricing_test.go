package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestForOutcomeBuysCheapSellsExpensive(t *testing.T) {
	a := domain.Listing{VenueID: domain.VenueKalshi, YesPrice: 0.42, NoPrice: 0.58}
	b := domain.Listing{VenueID: domain.VenuePolymarket, YesPrice: 0.65, NoPrice: 0.35}

	info := ForOutcome(a, b, domain.OutcomeYes)
	if info.BuyVenue != domain.VenueKalshi || info.SellVenue != domain.VenuePolymarket {
		t.Fatalf("wrong direction: buy=%s sell=%s", info.BuyVenue, info.SellVenue)
	}
	if !almostEqual(info.Spread(), 0.23) {
		t.Fatalf("spread got %.4f, want 0.23", info.Spread())
	}

	// NO side flips the direction.
	info = ForOutcome(a, b, domain.OutcomeNo)
	if info.BuyVenue != domain.VenuePolymarket || info.SellVenue != domain.VenueKalshi {
		t.Fatalf("NO side: buy=%s sell=%s", info.BuyVenue, info.SellVenue)
	}
	if !almostEqual(info.Spread(), 0.23) {
		t.Fatalf("NO spread got %.4f, want 0.23", info.Spread())
	}
}

func TestForOutcomeEqualPricesYieldZeroSpread(t *testing.T) {
	a := domain.Listing{VenueID: domain.VenueKalshi, YesPrice: 0.5, NoPrice: 0.5}
	b := domain.Listing{VenueID: domain.VenuePolymarket, YesPrice: 0.5, NoPrice: 0.5}

	info := ForOutcome(a, b, domain.OutcomeYes)
	if info.Spread() != 0 {
		t.Fatalf("spread got %.4f, want 0", info.Spread())
	}
	if info.Spread() < 0 {
		t.Fatal("spread must never be negative")
	}
}

func TestApplySlippageMovesBothLegsAgainstUs(t *testing.T) {
	info := PriceInfo{
		BuyVenue: domain.VenueKalshi, BuyPrice: 0.42,
		SellVenue: domain.VenuePolymarket, SellPrice: 0.65,
	}

	adj := ApplySlippage(info, 0.005)
	if !almostEqual(adj.BuyPrice, 0.42*1.005) {
		t.Fatalf("buy price got %.6f, want %.6f", adj.BuyPrice, 0.42*1.005)
	}
	if !almostEqual(adj.SellPrice, 0.65*0.995) {
		t.Fatalf("sell price got %.6f, want %.6f", adj.SellPrice, 0.65*0.995)
	}
	if adj.Spread() >= info.Spread() {
		t.Fatal("slippage must narrow the spread")
	}
}

func TestFeeTableUnknownVenueIsConfigurationError(t *testing.T) {
	table := NewFeeTable(map[domain.VenueID]float64{
		domain.VenuePolymarket: 0.0,
		domain.VenueKalshi:     0.01,
	})

	buy, sell, err := table.FeesForTrade(domain.VenueKalshi, domain.VenuePolymarket)
	if err != nil {
		t.Fatalf("known venues rejected: %v", err)
	}
	if buy != 0.01 || sell != 0.0 {
		t.Fatalf("fees got (%.3f, %.3f), want (0.010, 0.000)", buy, sell)
	}

	if _, _, err := table.FeesForTrade("betfair", domain.VenueKalshi); !errors.Is(err, domain.ErrUnknownVenue) {
		t.Fatalf("expected ErrUnknownVenue, got %v", err)
	}
}

func TestPositionSizeLiquidityAndGlobalBounds(t *testing.T) {
	bounds := SizeBounds{Min: 10, Max: 1000}

	tests := []struct {
		name     string
		liqA     float64
		liqB     float64
		wantRec  float64
		wantMax  float64
	}{
		{"less liquid side binds", 500, 300, 300, 300},
		{"global max caps", 5000, 8000, 1000, 1000},
		{"global min floors recommendation", 4, 6, 10, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := domain.Listing{Liquidity: tc.liqA}
			b := domain.Listing{Liquidity: tc.liqB}
			rec, max := PositionSize(a, b, bounds)
			if rec != tc.wantRec || max != tc.wantMax {
				t.Fatalf("got (%.0f, %.0f), want (%.0f, %.0f)", rec, max, tc.wantRec, tc.wantMax)
			}
		})
	}
}
