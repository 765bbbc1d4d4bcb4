package matching

import (
	"log/slog"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// Matcher applies a similarity strategy pairwise across two venues' listing
// sets and keeps pairs scoring at or above the threshold.
type Matcher struct {
	strategy  Strategy
	threshold float64
	logger    *slog.Logger
}

// NewMatcher creates a Matcher with the given strategy and threshold.
func NewMatcher(strategy Strategy, threshold float64, logger *slog.Logger) *Matcher {
	return &Matcher{
		strategy:  strategy,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "matcher")),
	}
}

// FindMatches compares every listing in a against every listing in b.
// The comparison is exhaustive O(|a|·|b|); at current venue sizes correctness
// beats pruning. Output order follows the loops: outer over a, inner over b.
// Pairs below the threshold are routine non-matches, silently dropped.
func (m *Matcher) FindMatches(a, b []domain.Listing) []domain.MatchedPair {
	var pairs []domain.MatchedPair
	for _, la := range a {
		for _, lb := range b {
			score := m.strategy.Score(la, lb)
			if score < m.threshold {
				continue
			}
			pair, err := domain.NewMatchedPair(la, lb, score)
			if err != nil {
				// A strategy returning an out-of-range score is a programming
				// error in the strategy, not in the listings.
				m.logger.Error("matcher: strategy produced invalid score",
					slog.String("strategy", m.strategy.Name()),
					slog.Float64("score", score),
					slog.String("listing_a", la.Key()),
					slog.String("listing_b", lb.Key()),
				)
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	return pairs
}
