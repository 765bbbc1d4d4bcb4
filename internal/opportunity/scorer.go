package opportunity

import (
	"log/slog"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// ScorerConfig holds the screening thresholds.
type ScorerConfig struct {
	MinProfit    float64 // absolute currency floor, opportunities must exceed it
	MinProfitPct float64 // e.g. 0.02 for 2%
}

// Scorer filters a batch of built opportunities down to the actionable ones.
// Rejections here are routine, not exceptional: dropped opportunities are
// simply absent from the output.
type Scorer struct {
	cfg    ScorerConfig
	logger *slog.Logger
}

// NewScorer creates a Scorer with the given thresholds.
func NewScorer(cfg ScorerConfig, logger *slog.Logger) *Scorer {
	return &Scorer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "scorer")),
	}
}

// Filter keeps opportunities that are profitable, meet the minimum profit
// percentage, carry positive confidence, and have not expired at now.
func (s *Scorer) Filter(opps []domain.Opportunity, now time.Time) []domain.Opportunity {
	kept := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		switch {
		case opp.ExpectedProfit <= s.cfg.MinProfit:
		case opp.ExpectedProfitPct < s.cfg.MinProfitPct:
		case opp.Confidence <= 0:
		case opp.Expired(now):
		default:
			kept = append(kept, opp)
			continue
		}
		s.logger.Debug("scorer: dropped opportunity",
			slog.String("opp_id", opp.ID),
			slog.Float64("profit", opp.ExpectedProfit),
			slog.Float64("profit_pct", opp.ExpectedProfitPct),
			slog.Float64("confidence", opp.Confidence),
		)
	}
	return kept
}
