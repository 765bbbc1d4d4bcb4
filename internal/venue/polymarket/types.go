package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Slug          string   `json:"slug"`
	Active        flexBool `json:"active"` // API may send bool or "true"/"false" string
	Closed        bool     `json:"closed"`
	Outcomes      string   `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string   `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Volume24hr    float64  `json:"volume24hr"`
	Volume        string   `json:"volume"`
	Liquidity     string   `json:"liquidity"`
	Category      string   `json:"category"`
	EndDateISO    string   `json:"end_date_iso"`
}

// ToListing converts an APIMarket to a domain.Listing. Prices arrive as a
// JSON-encoded string array in Yes/No order; a missing No price falls back to
// the Yes complement.
func (m *APIMarket) ToListing() domain.Listing {
	listing := domain.Listing{
		VenueID:  domain.VenuePolymarket,
		ID:       m.ID,
		Title:    m.Question,
		Active:   bool(m.Active) && !m.Closed,
		Category: strings.ToLower(m.Category),
	}

	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err == nil {
		if len(prices) > 0 {
			listing.YesPrice, _ = strconv.ParseFloat(prices[0], 64)
		}
		if len(prices) > 1 {
			listing.NoPrice, _ = strconv.ParseFloat(prices[1], 64)
		} else if listing.YesPrice > 0 {
			listing.NoPrice = 1 - listing.YesPrice
		}
	}

	listing.Volume24h = m.Volume24hr
	if listing.Volume24h == 0 {
		listing.Volume24h, _ = strconv.ParseFloat(m.Volume, 64)
	}
	listing.Liquidity, _ = strconv.ParseFloat(m.Liquidity, 64)

	if t, err := time.Parse(time.RFC3339, m.EndDateISO); err == nil {
		listing.ExpiresAt = &t
	}

	return listing
}
