package matching

import (
	"fmt"
	"math"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// Strategy scores how likely two listings describe the same event.
// Implementations are stateless after construction and safe for reuse across
// cycles. Scores are always in [0,1].
type Strategy interface {
	Name() string
	Score(a, b domain.Listing) float64
}

// defaultKeyTerms are named entities and event types whose shared presence in
// both titles is stronger evidence than an ordinary word overlap.
var defaultKeyTerms = []string{
	"trump", "biden", "harris", "putin", "zelensky", "musk", "powell",
	"election", "president", "presidential", "senate", "congress",
	"fed", "rate", "rates", "inflation", "recession", "gdp",
	"bitcoin", "btc", "ethereum", "eth", "halving", "etf",
	"superbowl", "olympics", "oscars", "grammys",
	"earnings", "ipo", "merger", "bankruptcy",
}

// JaccardConfig tunes the default similarity strategy.
type JaccardConfig struct {
	// KeyTermBonusCap caps the additive bonus for shared key terms.
	KeyTermBonusCap float64
	// KeyTerms overrides the built-in key-term list when non-nil.
	KeyTerms []string
}

// Jaccard scores title word-set overlap as |intersection| / |union|, plus a
// capped additive bonus when both titles share curated key terms. The total
// is clamped to 1.0.
type Jaccard struct {
	norm     *Normalizer
	keyTerms map[string]struct{}
	bonusCap float64
}

// NewJaccard creates the default similarity strategy.
func NewJaccard(norm *Normalizer, cfg JaccardConfig) *Jaccard {
	terms := cfg.KeyTerms
	if terms == nil {
		terms = defaultKeyTerms
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	bonusCap := cfg.KeyTermBonusCap
	if bonusCap < 0 {
		bonusCap = 0
	}
	return &Jaccard{norm: norm, keyTerms: set, bonusCap: bonusCap}
}

// Name returns the strategy identifier.
func (j *Jaccard) Name() string { return "jaccard" }

// Score computes the Jaccard index over processed title word sets. Empty
// word sets score 0.
func (j *Jaccard) Score(a, b domain.Listing) float64 {
	wa := j.norm.Process(a.Title)
	wb := j.norm.Process(b.Title)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	intersection := 0
	sharedKeyTerms := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			intersection++
			if _, key := j.keyTerms[w]; key {
				sharedKeyTerms++
			}
		}
	}
	union := len(wa) + len(wb) - intersection

	score := float64(intersection) / float64(union)

	// Each shared key term adds half the cap, up to the cap.
	if sharedKeyTerms > 0 && j.bonusCap > 0 {
		bonus := math.Min(j.bonusCap, float64(sharedKeyTerms)*j.bonusCap/2)
		score += bonus
	}

	if score > 1 {
		score = 1
	}
	return score
}

// Weighted pairs a sub-strategy with its weight in a composite score.
type Weighted struct {
	Strategy Strategy
	Weight   float64
}

// Composite combines sub-strategy scores as a weighted sum. Weights must sum
// to 1.0; anything else is a construction error.
type Composite struct {
	parts []Weighted
}

// NewComposite validates the weights and builds a Composite strategy.
func NewComposite(parts ...Weighted) (*Composite, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no sub-strategies", domain.ErrInvalidWeights)
	}
	var sum float64
	for _, p := range parts {
		if p.Weight < 0 {
			return nil, fmt.Errorf("%w: negative weight %.4f for %s", domain.ErrInvalidWeights, p.Weight, p.Strategy.Name())
		}
		sum += p.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("%w: got %.6f", domain.ErrInvalidWeights, sum)
	}
	return &Composite{parts: parts}, nil
}

// Name returns the strategy identifier.
func (c *Composite) Name() string { return "composite" }

// Score returns the weighted sum of the sub-strategy scores.
func (c *Composite) Score(a, b domain.Listing) float64 {
	var total float64
	for _, p := range c.parts {
		total += p.Weight * p.Strategy.Score(a, b)
	}
	if total > 1 {
		total = 1
	}
	return total
}

// CategoryGate wraps a strategy and returns 0 outright when both listings
// declare categories that differ. Listings without a category pass through.
type CategoryGate struct {
	inner Strategy
}

// NewCategoryGate wraps the given strategy with the category check.
func NewCategoryGate(inner Strategy) *CategoryGate {
	return &CategoryGate{inner: inner}
}

// Name returns the strategy identifier.
func (g *CategoryGate) Name() string { return "category_gate(" + g.inner.Name() + ")" }

// Score gates on category agreement, then delegates.
func (g *CategoryGate) Score(a, b domain.Listing) float64 {
	if a.Category != "" && b.Category != "" && a.Category != b.Category {
		return 0
	}
	return g.inner.Score(a, b)
}
