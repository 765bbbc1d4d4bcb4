// Package portfolio allocates capital to scored opportunities under
// portfolio-level risk constraints: correlation, concentration, liquidity,
// and platform exposure.
package portfolio

import (
	"sort"
	"strings"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/matching"
)

// ThemeGeneral is the bucket for titles matching no curated theme and
// containing no significant word.
const ThemeGeneral = "general"

// themeKeywords maps curated themes to membership keywords. Checked in a
// fixed order so overlapping titles bucket deterministically.
var themeOrder = []string{"politics", "monetary-policy", "crypto", "earnings", "technology"}

var themeKeywords = map[string][]string{
	"politics":        {"trump", "biden", "harris", "election", "president", "senate", "congress", "governor", "democrat", "republican"},
	"monetary-policy": {"fed", "fomc", "powell", "rate", "rates", "inflation", "cpi", "recession"},
	"crypto":          {"bitcoin", "btc", "ethereum", "eth", "crypto", "solana", "coinbase"},
	"earnings":        {"earnings", "revenue", "quarterly", "eps", "guidance"},
	"technology":      {"ai", "tech", "apple", "google", "nvidia", "microsoft", "tesla", "openai"},
}

// Themer buckets listings into coarse correlation themes from their titles.
type Themer struct {
	norm *matching.Normalizer
}

// NewThemer creates a Themer. A nil normalizer uses the default stop words.
func NewThemer(norm *matching.Normalizer) *Themer {
	if norm == nil {
		norm = matching.NewNormalizer(nil)
	}
	return &Themer{norm: norm}
}

// Extract returns the theme of a matched pair from the combined titles:
// first curated keyword membership, then the longest significant word over
// four characters, then ThemeGeneral.
func (t *Themer) Extract(titleA, titleB string) string {
	terms := t.norm.Process(titleA + " " + titleB)

	for _, theme := range themeOrder {
		for _, kw := range themeKeywords[theme] {
			if _, ok := terms[kw]; ok {
				return theme
			}
		}
	}

	longest := ""
	words := make([]string, 0, len(terms))
	for w := range terms {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		if len(w) > 4 && len(w) > len(longest) {
			longest = w
		}
	}
	if longest == "" {
		return ThemeGeneral
	}
	return longest
}

// ExtractFromOpportunity themes an opportunity by its two listing titles.
func (t *Themer) ExtractFromOpportunity(opp domain.Opportunity) string {
	return t.Extract(opp.BuyListing.Title, opp.SellListing.Title)
}

// ExtractFromPosition themes an open position. Positions carry only a
// venue-qualified market key, so the venue prefix is stripped before theming.
func (t *Themer) ExtractFromPosition(pos domain.PortfolioPosition) string {
	key := pos.MarketKey
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return t.Extract(key, "")
}
