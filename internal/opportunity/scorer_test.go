package opportunity

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseOpp() domain.Opportunity {
	return domain.Opportunity{
		ID:                "opp-1",
		ExpectedProfit:    5.0,
		ExpectedProfitPct: 0.05,
		Confidence:        0.8,
		Spread:            0.05,
		RecommendedSize:   100,
		MaxSize:           100,
	}
}

func TestScorerKeepsProfitableAndDropsThin(t *testing.T) {
	scorer := NewScorer(ScorerConfig{MinProfit: 0, MinProfitPct: 0.02}, testLogger())
	now := time.Now()

	good := baseOpp()
	thin := baseOpp()
	thin.ID = "opp-thin"
	thin.ExpectedProfitPct = 0.01

	kept := scorer.Filter([]domain.Opportunity{good, thin}, now)
	if len(kept) != 1 || kept[0].ID != "opp-1" {
		t.Fatalf("kept %d opportunities, want only opp-1", len(kept))
	}
}

func TestScorerDropsLossesExpiredAndZeroConfidence(t *testing.T) {
	scorer := NewScorer(ScorerConfig{MinProfit: 0, MinProfitPct: 0.02}, testLogger())
	now := time.Now()
	past := now.Add(-time.Hour)

	loss := baseOpp()
	loss.ExpectedProfit = -1.2

	noConf := baseOpp()
	noConf.Confidence = 0

	expired := baseOpp()
	expired.ExpiresAt = &past

	kept := scorer.Filter([]domain.Opportunity{loss, noConf, expired}, now)
	if len(kept) != 0 {
		t.Fatalf("kept %d opportunities, want 0", len(kept))
	}
}

func TestScorerEmptyInputYieldsEmptyOutput(t *testing.T) {
	scorer := NewScorer(ScorerConfig{MinProfit: 0, MinProfitPct: 0.02}, testLogger())
	if kept := scorer.Filter(nil, time.Now()); len(kept) != 0 {
		t.Fatalf("kept %d opportunities from nil input", len(kept))
	}
}
