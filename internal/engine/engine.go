// Package engine runs the arbitrage pipeline: fetch listings from every
// venue, match cross-venue pairs, price and score opportunities, plan trades
// against the portfolio, and fan the results out to storage, the signal bus,
// notifications, and cold storage.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	s3blob "github.com/Divyesh-Thirukonda/quantshit-sub001/internal/blob/s3"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/matching"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/notify"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/opportunity"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/portfolio"
)

// CycleArchiver persists one cycle record to cold storage.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, rec s3blob.CycleRecord) error
}

// Config holds the engine's runtime parameters.
type Config struct {
	ScanInterval time.Duration
	MinVolume    float64

	// PlanTrades disables the planning and persistence stages when false
	// (scan-only operation).
	PlanTrades bool
}

// Engine coordinates one full pipeline cycle. All dependencies past the core
// pipeline stages (stores, cache, bus, notifier, archiver) are optional; nil
// entries disable the corresponding fan-out.
type Engine struct {
	cfg       Config
	sources   []domain.ListingSource
	matcher   *matching.Matcher
	builder   *opportunity.Builder
	scorer    *opportunity.Scorer
	validator *opportunity.Validator
	planner   *portfolio.Planner
	risk      *portfolio.RiskManager
	portfolio domain.PortfolioSource

	opps     domain.OpportunityStore
	trades   domain.PlannedTradeStore
	cache    domain.ListingCache
	bus      domain.SignalBus
	notifier *notify.Notifier
	archiver CycleArchiver

	logger *slog.Logger
}

// Core bundles the required pipeline stages.
type Core struct {
	Sources   []domain.ListingSource
	Matcher   *matching.Matcher
	Builder   *opportunity.Builder
	Scorer    *opportunity.Scorer
	Validator *opportunity.Validator
	Planner   *portfolio.Planner
	Risk      *portfolio.RiskManager
	Portfolio domain.PortfolioSource
}

// Sinks bundles the optional fan-out targets.
type Sinks struct {
	Opportunities domain.OpportunityStore
	Trades        domain.PlannedTradeStore
	Cache         domain.ListingCache
	Bus           domain.SignalBus
	Notifier      *notify.Notifier
	Archiver      CycleArchiver
}

// New creates an Engine from the given stages and sinks.
func New(cfg Config, core Core, sinks Sinks, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		sources:   core.Sources,
		matcher:   core.Matcher,
		builder:   core.Builder,
		scorer:    core.Scorer,
		validator: core.Validator,
		planner:   core.Planner,
		risk:      core.Risk,
		portfolio: core.Portfolio,
		opps:      sinks.Opportunities,
		trades:    sinks.Trades,
		cache:     sinks.Cache,
		bus:       sinks.Bus,
		notifier:  sinks.Notifier,
		archiver:  sinks.Archiver,
		logger:    logger.With(slog.String("component", "engine")),
	}
}

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	ListingCounts map[domain.VenueID]int
	Matches       int
	Opportunities []domain.Opportunity
	PlannedTrades []domain.PlannedTrade
	Risk          portfolio.RiskReport
}

// Run executes cycles on the configured interval until the context is
// cancelled. The first cycle runs immediately. Cycle errors are logged and
// reported, not fatal; the loop only exits on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting",
		slog.Duration("scan_interval", e.cfg.ScanInterval),
		slog.Int("sources", len(e.sources)),
	)

	e.runOnce(ctx)

	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return ctx.Err()
		case <-ticker.C:
			e.runOnce(ctx)
		}
	}
}

func (e *Engine) runOnce(ctx context.Context) {
	if _, err := e.Cycle(ctx); err != nil && ctx.Err() == nil {
		e.logger.Error("cycle failed", slog.String("error", err.Error()))
		if e.notifier != nil {
			_ = e.notifier.Error(ctx, "cycle", err)
		}
	}
}

// Cycle runs one full pipeline pass and returns its summary. An error from
// fetching or planning aborts the cycle; failures in the optional fan-out
// stages are logged and do not fail the cycle.
func (e *Engine) Cycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := e.logger.With(slog.String("cycle_id", result.CycleID))

	listings, err := e.fetchListings(ctx)
	if err != nil {
		return result, fmt.Errorf("engine: fetch listings: %w", err)
	}
	result.ListingCounts = make(map[domain.VenueID]int, len(listings))
	for venue, ls := range listings {
		result.ListingCounts[venue] = len(ls)
	}

	pairs := e.matchAll(listings)
	result.Matches = len(pairs)

	now := time.Now().UTC()
	built := e.buildOpportunities(pairs, now, logger)
	scored := e.scorer.Filter(built, now)

	logger.Info("scan complete",
		slog.Int("matches", len(pairs)),
		slog.Int("built", len(built)),
		slog.Int("scored", len(scored)),
	)

	if !e.cfg.PlanTrades {
		result.Opportunities = scored
		result.FinishedAt = time.Now().UTC()
		e.fanOut(ctx, result, logger)
		return result, nil
	}

	snap, err := e.portfolio.Snapshot(ctx)
	if err != nil {
		return result, fmt.Errorf("engine: portfolio snapshot: %w", err)
	}

	validated := e.validate(scored, snap, now, logger)
	result.Opportunities = validated

	planned := e.planner.Plan(validated, snap, now)
	result.PlannedTrades = planned
	result.Risk = e.risk.Assess(snap, planned)

	if err := e.persist(ctx, validated, planned, logger); err != nil {
		return result, err
	}

	result.FinishedAt = time.Now().UTC()
	e.fanOut(ctx, result, logger)

	logger.Info("cycle complete",
		slog.Int("opportunities", len(validated)),
		slog.Int("planned_trades", len(planned)),
		slog.Float64("overall_risk", result.Risk.Overall),
		slog.Duration("took", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// fetchListings pulls every venue's snapshot concurrently. One venue failing
// fails the cycle; a partial view would bias the matcher toward phantom
// spreads.
func (e *Engine) fetchListings(ctx context.Context) (map[domain.VenueID][]domain.Listing, error) {
	var mu sync.Mutex
	listings := make(map[domain.VenueID][]domain.Listing, len(e.sources))

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range e.sources {
		g.Go(func() error {
			ls, err := src.FetchListings(gctx, e.cfg.MinVolume)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Venue(), err)
			}
			mu.Lock()
			listings[src.Venue()] = ls
			mu.Unlock()

			if e.cache != nil {
				if err := e.cache.SetBatch(gctx, src.Venue(), ls); err != nil {
					e.logger.Warn("listing cache update failed",
						slog.String("venue", string(src.Venue())),
						slog.String("error", err.Error()),
					)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// matchAll runs the matcher over every unordered venue pair, in source order.
func (e *Engine) matchAll(listings map[domain.VenueID][]domain.Listing) []domain.MatchedPair {
	var pairs []domain.MatchedPair
	for i := range e.sources {
		for j := i + 1; j < len(e.sources); j++ {
			a := listings[e.sources[i].Venue()]
			b := listings[e.sources[j].Venue()]
			pairs = append(pairs, e.matcher.FindMatches(a, b)...)
		}
	}
	return pairs
}

// buildOpportunities prices both outcomes of each matched pair and keeps the
// more profitable side.
func (e *Engine) buildOpportunities(pairs []domain.MatchedPair, now time.Time, logger *slog.Logger) []domain.Opportunity {
	var opps []domain.Opportunity
	for _, pair := range pairs {
		var best *domain.Opportunity
		for _, outcome := range []domain.Outcome{domain.OutcomeYes, domain.OutcomeNo} {
			opp, err := e.builder.Build(pair, outcome, now)
			if err != nil {
				logger.Debug("build failed",
					slog.String("outcome", string(outcome)),
					slog.String("error", err.Error()),
				)
				continue
			}
			if best == nil || opp.ExpectedProfit > best.ExpectedProfit {
				best = &opp
			}
		}
		if best != nil {
			opps = append(opps, *best)
		}
	}
	return opps
}

// validate drops opportunities that fail portfolio-aware checks. Malformed
// opportunities are logged at error level; they indicate a builder bug.
func (e *Engine) validate(opps []domain.Opportunity, snap domain.PortfolioSnapshot, now time.Time, logger *slog.Logger) []domain.Opportunity {
	valid := opps[:0]
	for _, opp := range opps {
		res, err := e.validator.Check(opp, snap, now)
		if err != nil {
			logger.Error("malformed opportunity",
				slog.String("id", opp.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !res.OK {
			logger.Debug("opportunity rejected",
				slog.String("id", opp.ID),
				slog.String("reason", res.Reason),
			)
			continue
		}
		valid = append(valid, opp)
	}
	return valid
}

// persist writes opportunities and planned trades, marking planned ones.
func (e *Engine) persist(ctx context.Context, opps []domain.Opportunity, planned []domain.PlannedTrade, logger *slog.Logger) error {
	if e.opps != nil && len(opps) > 0 {
		if err := e.opps.InsertBatch(ctx, opps); err != nil {
			return fmt.Errorf("engine: persist opportunities: %w", err)
		}
	}
	if e.trades == nil {
		return nil
	}
	for _, trade := range planned {
		if err := e.trades.Insert(ctx, trade); err != nil {
			return fmt.Errorf("engine: persist trade %s: %w", trade.Opportunity.ID, err)
		}
		if e.opps != nil {
			if err := e.opps.MarkPlanned(ctx, trade.Opportunity.ID); err != nil {
				logger.Warn("mark planned failed",
					slog.String("id", trade.Opportunity.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return nil
}

// fanOut publishes cycle results to the signal bus, the notifier, and the
// archiver. All failures here are logged, never returned.
func (e *Engine) fanOut(ctx context.Context, result CycleResult, logger *slog.Logger) {
	if e.bus != nil {
		e.publish(ctx, result, logger)
	}

	if e.notifier != nil {
		for _, opp := range result.Opportunities {
			if err := e.notifier.OpportunityFound(ctx, opp); err != nil {
				logger.Warn("notify opportunity failed", slog.String("error", err.Error()))
			}
		}
		for _, trade := range result.PlannedTrades {
			if err := e.notifier.TradePlanned(ctx, trade); err != nil {
				logger.Warn("notify trade failed", slog.String("error", err.Error()))
			}
		}
	}

	if e.archiver != nil {
		rec := s3blob.CycleRecord{
			CycleID:       result.CycleID,
			StartedAt:     result.StartedAt,
			FinishedAt:    result.FinishedAt,
			ListingCounts: result.ListingCounts,
			Opportunities: result.Opportunities,
			PlannedTrades: result.PlannedTrades,
			Risk:          result.Risk,
		}
		if err := e.archiver.ArchiveCycle(ctx, rec); err != nil {
			logger.Warn("archive failed", slog.String("error", err.Error()))
		}
	}
}

// publish pushes per-item events over pub/sub and a cycle summary onto the
// durable stream.
func (e *Engine) publish(ctx context.Context, result CycleResult, logger *slog.Logger) {
	for _, opp := range result.Opportunities {
		payload, err := json.Marshal(opp)
		if err != nil {
			continue
		}
		if err := e.bus.Publish(ctx, domain.ChannelOpportunities, payload); err != nil {
			logger.Warn("publish opportunity failed", slog.String("error", err.Error()))
		}
	}
	for _, trade := range result.PlannedTrades {
		payload, err := json.Marshal(trade)
		if err != nil {
			continue
		}
		if err := e.bus.Publish(ctx, domain.ChannelTrades, payload); err != nil {
			logger.Warn("publish trade failed", slog.String("error", err.Error()))
		}
	}

	summary, err := json.Marshal(map[string]any{
		"cycle_id":       result.CycleID,
		"started_at":     result.StartedAt,
		"finished_at":    result.FinishedAt,
		"matches":        result.Matches,
		"opportunities":  len(result.Opportunities),
		"planned_trades": len(result.PlannedTrades),
		"overall_risk":   result.Risk.Overall,
	})
	if err != nil {
		return
	}
	if err := e.bus.StreamAppend(ctx, domain.StreamCycles, summary); err != nil {
		logger.Warn("stream append failed", slog.String("error", err.Error()))
	}
}
