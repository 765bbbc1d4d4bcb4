package kalshi

import (
	"strings"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// APIMarket represents a market as returned by the Kalshi REST API.
// Prices and liquidity arrive in cents.
type APIMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	Volume24H      int64   `json:"volume_24h"`
	Liquidity      int64   `json:"liquidity"`
	OpenInterest   int64   `json:"open_interest"`
	Category       string  `json:"category"`
	ExpirationTime string  `json:"expiration_time"`
	CloseTime      string  `json:"close_time"`
	Result         string  `json:"result"` // "yes", "no", "" (unsettled)
}

// ToListing converts an APIMarket to a domain.Listing, normalizing cent
// prices to [0,1]. Mid-quote is used when both sides are present; otherwise
// whichever side exists.
func (m *APIMarket) ToListing() domain.Listing {
	listing := domain.Listing{
		VenueID:   domain.VenueKalshi,
		ID:        m.Ticker,
		Title:     m.Title,
		YesPrice:  centMid(m.YesBid, m.YesAsk),
		NoPrice:   centMid(m.NoBid, m.NoAsk),
		Volume24h: float64(m.Volume24H),
		Liquidity: float64(m.Liquidity) / 100,
		Active:    m.Status == "open",
		Category:  strings.ToLower(m.Category),
	}
	if listing.NoPrice == 0 && listing.YesPrice > 0 {
		listing.NoPrice = 1 - listing.YesPrice
	}
	if t, err := time.Parse(time.RFC3339, m.ExpirationTime); err == nil {
		listing.ExpiresAt = &t
	}
	return listing
}

// centMid returns the bid/ask midpoint normalized from cents to [0,1].
func centMid(bid, ask float64) float64 {
	switch {
	case bid > 0 && ask > 0:
		return (bid + ask) / 2 / 100
	case ask > 0:
		return ask / 100
	default:
		return bid / 100
	}
}

// APIErrorResponse represents a Kalshi API error response.
type APIErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
