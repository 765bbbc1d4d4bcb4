package portfolio

import (
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// Risk component weights. Correlation and concentration dominate; liquidity
// and platform exposure are secondary.
const (
	weightCorrelation   = 0.3
	weightConcentration = 0.3
	weightLiquidity     = 0.2
	weightPlatform      = 0.2
)

// RiskReport carries the component risk scores and their weighted sum.
// All scores are in [0, 1].
type RiskReport struct {
	Correlation   float64 `json:"correlation"`
	Concentration float64 `json:"concentration"`
	Liquidity     float64 `json:"liquidity"`
	Platform      float64 `json:"platform"`
	Overall       float64 `json:"overall"`
}

// RiskManager is a stateless calculator over a portfolio snapshot, optionally
// extended with a prospective batch of planned trades.
type RiskManager struct {
	themer *Themer
}

// NewRiskManager creates a RiskManager using the given themer for correlation
// bucketing. A nil themer uses the defaults.
func NewRiskManager(themer *Themer) *RiskManager {
	if themer == nil {
		themer = NewThemer(nil)
	}
	return &RiskManager{themer: themer}
}

// Assess computes the component risks for the snapshot plus any prospective
// trades. An empty portfolio scores zero across the board.
func (m *RiskManager) Assess(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade) RiskReport {
	total := snap.TotalValue
	for _, t := range prospective {
		total += t.PositionValue
	}
	if total <= 0 {
		return RiskReport{}
	}

	report := RiskReport{
		Correlation:   m.correlationRisk(snap, prospective, total),
		Concentration: m.concentrationRisk(snap, prospective, total),
		Liquidity:     m.liquidityRisk(snap, prospective),
		Platform:      m.platformRisk(snap, prospective, total),
	}
	report.Overall = weightCorrelation*report.Correlation +
		weightConcentration*report.Concentration +
		weightLiquidity*report.Liquidity +
		weightPlatform*report.Platform
	return report
}

// correlationRisk squares the largest theme's share of total exposure and
// scales by 2, so a single theme holding ~70% of the book saturates the score.
func (m *RiskManager) correlationRisk(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade, total float64) float64 {
	byTheme := make(map[string]float64)
	for _, pos := range snap.Positions {
		byTheme[m.themer.ExtractFromPosition(pos)] += pos.CurrentValue
	}
	for _, t := range prospective {
		theme := t.Theme
		if theme == "" {
			theme = m.themer.ExtractFromOpportunity(t.Opportunity)
		}
		byTheme[theme] += t.PositionValue
	}

	var maxShare float64
	for _, v := range byTheme {
		if share := v / total; share > maxShare {
			maxShare = share
		}
	}
	return clamp01(2 * maxShare * maxShare)
}

// concentrationRisk is 5x the largest single position's fraction of total
// value, so any position above 20% of the book saturates the score.
func (m *RiskManager) concentrationRisk(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade, total float64) float64 {
	var largest float64
	for _, pos := range snap.Positions {
		if pos.CurrentValue > largest {
			largest = pos.CurrentValue
		}
	}
	for _, t := range prospective {
		if t.PositionValue > largest {
			largest = t.PositionValue
		}
	}
	return clamp01(5 * largest / total)
}

// liquidityRisk is a crude position-count proxy, 0.1 per open position. It is
// not derived from order books.
func (m *RiskManager) liquidityRisk(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade) float64 {
	return clamp01(0.1 * float64(len(snap.Positions)+len(prospective)))
}

// platformRisk is 1.5x the largest single venue's fraction of total value.
func (m *RiskManager) platformRisk(snap domain.PortfolioSnapshot, prospective []domain.PlannedTrade, total float64) float64 {
	byVenue := make(map[domain.VenueID]float64)
	for _, pos := range snap.Positions {
		byVenue[pos.VenueID] += pos.CurrentValue
	}
	for _, t := range prospective {
		byVenue[t.Opportunity.BuyVenue] += t.PositionValue
	}

	var largest float64
	for _, v := range byVenue {
		if v > largest {
			largest = v
		}
	}
	return clamp01(1.5 * largest / total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
