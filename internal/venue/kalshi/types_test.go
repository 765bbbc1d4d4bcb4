package kalshi

import (
	"testing"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func TestToListingNormalizesCents(t *testing.T) {
	m := APIMarket{
		Ticker:         "TRUMP-24",
		Title:          "Trump wins 2024 election",
		Status:         "open",
		YesBid:         41,
		YesAsk:         43,
		NoBid:          57,
		NoAsk:          59,
		Volume24H:      12000,
		Liquidity:      50000,
		Category:       "Politics",
		ExpirationTime: "2024-11-05T00:00:00Z",
	}

	listing := m.ToListing()
	if listing.VenueID != domain.VenueKalshi {
		t.Fatalf("venue got %s", listing.VenueID)
	}
	if listing.YesPrice != 0.42 {
		t.Fatalf("yes price got %.4f, want 0.42 mid", listing.YesPrice)
	}
	if listing.NoPrice != 0.58 {
		t.Fatalf("no price got %.4f, want 0.58 mid", listing.NoPrice)
	}
	if listing.Liquidity != 500 {
		t.Fatalf("liquidity got %.0f, want 500 (cents to units)", listing.Liquidity)
	}
	if !listing.Active {
		t.Fatal("open market should be active")
	}
	if listing.ExpiresAt == nil {
		t.Fatal("missing expiry")
	}
}

func TestToListingFallsBackToComplement(t *testing.T) {
	m := APIMarket{Ticker: "X", Status: "open", YesAsk: 30}
	listing := m.ToListing()
	if listing.YesPrice != 0.30 {
		t.Fatalf("yes price got %.4f, want 0.30 from lone ask", listing.YesPrice)
	}
	if listing.NoPrice != 0.70 {
		t.Fatalf("no price got %.4f, want 0.70 complement", listing.NoPrice)
	}
}

func TestToListingClosedMarketInactive(t *testing.T) {
	m := APIMarket{Ticker: "X", Status: "settled", YesBid: 100, YesAsk: 100}
	if m.ToListing().Active {
		t.Fatal("settled market should not be active")
	}
}
