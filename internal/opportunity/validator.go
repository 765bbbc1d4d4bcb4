package opportunity

import (
	"fmt"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/pricing"
)

// ValidatorConfig holds the final-gate thresholds.
type ValidatorConfig struct {
	MinProfitPct    float64
	MinConfidence   float64
	MinPositionSize float64
	MaxPositionSize float64
}

// CheckResult reports the outcome of the pre-execution gate. A failed check
// is an ordinary result, not an error; Reason explains the first failure.
type CheckResult struct {
	OK     bool
	Reason string
}

func fail(format string, args ...any) CheckResult {
	return CheckResult{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// Validator is the final safety gate re-checking the one opportunity selected
// for execution against the live portfolio. Checks run in order and
// short-circuit on the first failure.
type Validator struct {
	fees pricing.FeeTable
	cfg  ValidatorConfig
}

// NewValidator creates a Validator with the given fee table and thresholds.
func NewValidator(fees pricing.FeeTable, cfg ValidatorConfig) *Validator {
	return &Validator{fees: fees, cfg: cfg}
}

// Check re-validates profitability, listing state, expiry, confidence,
// capital sufficiency, and size bounds. It returns an error only for
// malformed input; an ordinary failed check comes back as CheckResult.
func (v *Validator) Check(opp domain.Opportunity, portfolio domain.PortfolioSnapshot, now time.Time) (CheckResult, error) {
	if opp.ID == "" {
		return CheckResult{}, fmt.Errorf("validator: %w: missing id", domain.ErrInvalidOpp)
	}
	if err := opp.Validate(); err != nil {
		return CheckResult{}, fmt.Errorf("validator: %w", err)
	}

	if opp.ExpectedProfit <= 0 {
		return fail("not profitable: expected profit %.4f", opp.ExpectedProfit), nil
	}
	if opp.ExpectedProfitPct < v.cfg.MinProfitPct {
		return fail("profit %.2f%% below threshold %.2f%%", opp.ExpectedProfitPct*100, v.cfg.MinProfitPct*100), nil
	}
	if !opp.BuyListing.Active {
		return fail("buy listing %s is closed", opp.BuyListing.Key()), nil
	}
	if !opp.SellListing.Active {
		return fail("sell listing %s is closed", opp.SellListing.Key()), nil
	}
	if opp.Expired(now) {
		return fail("opportunity expired at %s", opp.ExpiresAt.Format(time.RFC3339)), nil
	}
	if opp.Confidence < v.cfg.MinConfidence {
		return fail("confidence %.2f below minimum %.2f", opp.Confidence, v.cfg.MinConfidence), nil
	}

	buyFee, err := v.fees.Fee(opp.BuyVenue)
	if err != nil {
		return CheckResult{}, fmt.Errorf("validator: %w", err)
	}
	required := opp.CapitalRequired(buyFee)
	available := portfolio.Cash(opp.BuyVenue)
	if required > available {
		return fail("capital required %.2f exceeds available %.2f on %s", required, available, opp.BuyVenue), nil
	}

	if opp.RecommendedSize < v.cfg.MinPositionSize || opp.RecommendedSize > v.cfg.MaxPositionSize {
		return fail("size %.2f outside bounds [%.2f, %.2f]", opp.RecommendedSize, v.cfg.MinPositionSize, v.cfg.MaxPositionSize), nil
	}

	return CheckResult{OK: true}, nil
}
