package portfolio

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// PlannerConfig holds the allocation thresholds.
type PlannerConfig struct {
	SpreadFloor         float64 // hard reject below this spread
	ThinSpread          float64 // linear sizing penalty below this spread
	MaxPositionFraction float64 // per-trade cap as a fraction of total value
	MaxPlatformFraction float64 // hard reject when a venue already exceeds this
	MinCashReservePct   float64 // fraction of total value kept undeployed
	KellyCap            float64 // upper clamp on the Kelly fraction
	MinPositionValue    float64 // smallest position worth placing, in units
}

// Planner turns a batch of scored opportunities into sized, budgeted planned
// trades. Four pure stages: risk filter, correlation grouping, Kelly sizing,
// greedy budget selection. It holds only configuration; each Plan call is
// independent and correlation buckets are recomputed from scratch.
type Planner struct {
	cfg    PlannerConfig
	themer *Themer
	logger *slog.Logger
}

// NewPlanner creates a Planner. A nil themer uses the defaults.
func NewPlanner(cfg PlannerConfig, themer *Themer, logger *slog.Logger) *Planner {
	if themer == nil {
		themer = NewThemer(nil)
	}
	return &Planner{
		cfg:    cfg,
		themer: themer,
		logger: logger.With(slog.String("component", "planner")),
	}
}

// Plan runs the full allocation pipeline. Empty input or a valueless
// portfolio yields an empty plan; no stage errors on empty batches.
func (p *Planner) Plan(opps []domain.Opportunity, snap domain.PortfolioSnapshot, now time.Time) []domain.PlannedTrade {
	if len(opps) == 0 || snap.TotalValue <= 0 {
		return nil
	}

	filtered := p.riskFilter(opps, snap)
	buckets := p.groupByTheme(filtered)
	sized := p.size(filtered, buckets, snap, now)
	return p.selectWithinBudget(sized, snap)
}

// riskFilter drops opportunities with spreads below the hard floor, on venues
// already past the platform exposure cap, or too correlated with open
// positions.
func (p *Planner) riskFilter(opps []domain.Opportunity, snap domain.PortfolioSnapshot) []domain.Opportunity {
	kept := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.Spread < p.cfg.SpreadFloor {
			p.logger.Debug("planner: spread below floor",
				slog.String("opp_id", opp.ID),
				slog.Float64("spread", opp.Spread),
			)
			continue
		}
		if p.venueOverexposed(opp.BuyVenue, snap) || p.venueOverexposed(opp.SellVenue, snap) {
			p.logger.Debug("planner: venue exposure cap reached", slog.String("opp_id", opp.ID))
			continue
		}
		if score := p.overlapScore(opp, snap); score > 0.8 {
			p.logger.Debug("planner: overlaps open positions",
				slog.String("opp_id", opp.ID),
				slog.Float64("overlap_score", score),
			)
			continue
		}
		kept = append(kept, opp)
	}
	return kept
}

func (p *Planner) venueOverexposed(venue domain.VenueID, snap domain.PortfolioSnapshot) bool {
	return snap.VenueExposure(venue)/snap.TotalValue > p.cfg.MaxPlatformFraction
}

// overlapScore accumulates +0.3 per open position on the exact same market
// and +0.1 per thematically related open position.
func (p *Planner) overlapScore(opp domain.Opportunity, snap domain.PortfolioSnapshot) float64 {
	theme := p.themer.ExtractFromOpportunity(opp)
	var score float64
	for _, pos := range snap.Positions {
		switch {
		case pos.MarketKey == opp.BuyListing.Key() || pos.MarketKey == opp.SellListing.Key():
			score += 0.3
		case p.themer.ExtractFromPosition(pos) == theme:
			score += 0.1
		}
	}
	return score
}

// groupByTheme buckets opportunities by theme. Buckets with more than two
// members signal elevated correlation and are logged, not dropped.
func (p *Planner) groupByTheme(opps []domain.Opportunity) map[string][]domain.Opportunity {
	buckets := make(map[string][]domain.Opportunity)
	for _, opp := range opps {
		theme := p.themer.ExtractFromOpportunity(opp)
		buckets[theme] = append(buckets[theme], opp)
	}
	for theme, members := range buckets {
		if len(members) > 2 {
			p.logger.Warn("planner: elevated correlation group",
				slog.String("theme", theme),
				slog.Int("members", len(members)),
			)
		}
	}
	return buckets
}

// kellyReferenceSize is the fixed position size the payoff ratio is computed
// against. The ratio is therefore independent of the recommended size; this
// is a known approximation kept for behavioral parity, not a sizing input.
const kellyReferenceSize = 100.0

func (p *Planner) size(opps []domain.Opportunity, buckets map[string][]domain.Opportunity, snap domain.PortfolioSnapshot, now time.Time) []domain.PlannedTrade {
	trades := make([]domain.PlannedTrade, 0, len(opps))
	for _, opp := range opps {
		theme := p.themer.ExtractFromOpportunity(opp)
		winProb := p.winProbability(opp)
		kelly := p.kellyFraction(opp, winProb)
		riskAdj := p.riskAdjustment(opp, len(buckets[theme]), snap)

		adjusted := kelly * riskAdj
		value := adjusted * snap.TotalValue
		if limit := p.cfg.MaxPositionFraction * snap.TotalValue; value > limit {
			value = limit
		}
		if value < p.cfg.MinPositionValue {
			value = p.cfg.MinPositionValue
		}

		trades = append(trades, domain.PlannedTrade{
			Opportunity:    opp,
			KellyFraction:  kelly,
			RiskAdjustment: riskAdj,
			WinProbability: winProb,
			PositionValue:  value,
			Theme:          theme,
			PlannedAt:      now,
		})
	}
	return trades
}

// winProbability starts from a 0.85 base and adds bonuses for wide spreads
// and deep books, capped at 0.95.
func (p *Planner) winProbability(opp domain.Opportunity) float64 {
	prob := 0.85

	spreadBonus := opp.Spread * 0.5
	if spreadBonus > 0.10 {
		spreadBonus = 0.10
	}
	prob += spreadBonus

	minLiq := opp.BuyListing.Liquidity
	if opp.SellListing.Liquidity < minLiq {
		minLiq = opp.SellListing.Liquidity
	}
	liqBonus := minLiq / 10000 * 0.05
	if liqBonus > 0.05 {
		liqBonus = 0.05
	}
	prob += liqBonus

	if prob > 0.95 {
		prob = 0.95
	}
	return prob
}

// kellyFraction computes f = (b*p - q)/b against the fixed reference position
// and clamps to [0, KellyCap].
func (p *Planner) kellyFraction(opp domain.Opportunity, winProb float64) float64 {
	if opp.RecommendedSize <= 0 {
		return 0
	}
	referenceProfit := opp.ExpectedProfit / opp.RecommendedSize * kellyReferenceSize
	b := referenceProfit / kellyReferenceSize
	if b <= 0 {
		return 0
	}

	q := 1 - winProb
	f := (b*winProb - q) / b
	if f < 0 {
		return 0
	}
	if f > p.cfg.KellyCap {
		return p.cfg.KellyCap
	}
	return f
}

// platformPenaltyThreshold is the venue exposure fraction above which sizing
// is penalized, distinct from the hard filter cap.
const platformPenaltyThreshold = 0.40

// riskAdjustment multiplies three penalties: oversized correlation buckets
// (10% per member beyond two, floor 0.5), platform concentration above 40%
// (floor 0.3), and thin spreads (linear below ThinSpread).
func (p *Planner) riskAdjustment(opp domain.Opportunity, bucketSize int, snap domain.PortfolioSnapshot) float64 {
	adj := 1.0

	if excess := bucketSize - 2; excess > 0 {
		factor := 1 - 0.1*float64(excess)
		if factor < 0.5 {
			factor = 0.5
		}
		adj *= factor
	}

	if frac := snap.VenueExposure(opp.BuyVenue) / snap.TotalValue; frac > platformPenaltyThreshold {
		factor := 1 - (frac - platformPenaltyThreshold)
		if factor < 0.3 {
			factor = 0.3
		}
		adj *= factor
	}

	if p.cfg.ThinSpread > 0 && opp.Spread < p.cfg.ThinSpread {
		adj *= opp.Spread / p.cfg.ThinSpread
	}

	return adj
}

// selectWithinBudget ranks trades by risk-adjusted expected return per unit
// of capital deployed and greedily accepts them until the cash-reserve budget
// is hit. The first trade that would overflow is scaled down to the remaining
// capacity when that still clears the minimum, otherwise skipped; selection
// stops either way.
func (p *Planner) selectWithinBudget(trades []domain.PlannedTrade, snap domain.PortfolioSnapshot) []domain.PlannedTrade {
	sort.SliceStable(trades, func(i, j int) bool {
		return tradeScore(trades[i]) > tradeScore(trades[j])
	})

	budget := snap.TotalValue * (1 - p.cfg.MinCashReservePct)
	accepted := make([]domain.PlannedTrade, 0, len(trades))
	var deployed float64
	for _, t := range trades {
		if deployed+t.PositionValue <= budget {
			deployed += t.PositionValue
			accepted = append(accepted, t)
			continue
		}
		if remaining := budget - deployed; remaining >= p.cfg.MinPositionValue {
			t.PositionValue = remaining
			deployed = budget
			accepted = append(accepted, t)
			p.logger.Info("planner: scaled final trade to remaining budget",
				slog.String("opp_id", t.Opportunity.ID),
				slog.Float64("position_value", t.PositionValue),
			)
		}
		break
	}

	if len(accepted) > 0 {
		p.logger.Info("planner: plan complete",
			slog.Int("candidates", len(trades)),
			slog.Int("accepted", len(accepted)),
			slog.Float64("deployed", deployed),
		)
	}
	return accepted
}

// tradeScore is the prioritization key: expected profit weighted by win
// probability and risk adjustment, per unit of capital deployed.
func tradeScore(t domain.PlannedTrade) float64 {
	if t.PositionValue <= 0 {
		return 0
	}
	return t.Opportunity.ExpectedProfit * t.WinProbability * t.RiskAdjustment / t.PositionValue
}
