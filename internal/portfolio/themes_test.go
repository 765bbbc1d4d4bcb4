package portfolio

import (
	"testing"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func TestExtractCuratedThemes(t *testing.T) {
	themer := NewThemer(nil)

	tests := []struct {
		name   string
		titleA string
		titleB string
		want   string
	}{
		{"political figure", "Trump wins 2024 election", "Trump wins the 2024 election", "politics"},
		{"monetary policy", "Fed cuts rates in September", "FOMC September decision", "monetary-policy"},
		{"crypto", "Bitcoin above $100k by year end", "BTC hits 100000", "crypto"},
		{"earnings", "NVDA beats earnings estimates", "Nvidia quarterly results", "earnings"},
		{"technology without earnings terms", "Nvidia ships new GPU", "Nvidia GPU launch", "technology"},
		{"fallback longest word", "Hurricane makes landfall", "Hurricane hits coast", "hurricane"},
		{"no significant words", "A b c", "d e f", ThemeGeneral},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := themer.Extract(tc.titleA, tc.titleB); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractFromPositionStripsVenuePrefix(t *testing.T) {
	themer := NewThemer(nil)
	pos := domain.PortfolioPosition{MarketKey: "kalshi:trump-wins-2024"}
	if got := themer.ExtractFromPosition(pos); got != "politics" {
		t.Fatalf("got %q, want politics", got)
	}
}
