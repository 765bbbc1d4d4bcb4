package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/config"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/engine"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/matching"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/opportunity"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/portfolio"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/pricing"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/server"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/server/handler"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/server/ws"
)

// apiRateLimit throttles monitoring API clients to this many requests per
// window.
const (
	apiRateLimit       = 60
	apiRateLimitWindow = time.Minute
)

// buildEngine assembles the pipeline stages from configuration.
func buildEngine(cfg *config.Config, deps *Dependencies, planTrades bool, logger *slog.Logger) *engine.Engine {
	norm := matching.NewNormalizer(cfg.Matching.StopWords)

	var strategy matching.Strategy = matching.NewJaccard(norm, matching.JaccardConfig{
		KeyTermBonusCap: cfg.Matching.KeyTermBonusCap,
		KeyTerms:        cfg.Matching.KeyTerms,
	})
	if cfg.Matching.RequireSameCategory {
		strategy = matching.NewCategoryGate(strategy)
	}

	fees := make(map[domain.VenueID]float64, len(cfg.Pricing.Fees))
	for v, pct := range cfg.Pricing.Fees {
		fees[domain.VenueID(v)] = pct
	}
	feeTable := pricing.NewFeeTable(fees)

	themer := portfolio.NewThemer(norm)

	core := engine.Core{
		Sources: deps.Sources,
		Matcher: matching.NewMatcher(strategy, cfg.Matching.SimilarityThreshold, logger),
		Builder: opportunity.NewBuilder(feeTable, opportunity.BuilderConfig{
			SlippageFactor:  cfg.Pricing.SlippageFactor,
			MinPositionSize: cfg.Pricing.MinPositionSize,
			MaxPositionSize: cfg.Pricing.MaxPositionSize,
		}),
		Scorer: opportunity.NewScorer(opportunity.ScorerConfig{
			MinProfit:    cfg.Opportunity.MinProfit,
			MinProfitPct: cfg.Opportunity.MinProfitPct,
		}, logger),
		Validator: opportunity.NewValidator(feeTable, opportunity.ValidatorConfig{
			MinProfitPct:    cfg.Opportunity.MinProfitPct,
			MinConfidence:   cfg.Opportunity.MinConfidence,
			MinPositionSize: cfg.Pricing.MinPositionSize,
			MaxPositionSize: cfg.Pricing.MaxPositionSize,
		}),
		Planner: portfolio.NewPlanner(portfolio.PlannerConfig{
			SpreadFloor:         cfg.Portfolio.SpreadFloor,
			ThinSpread:          cfg.Portfolio.ThinSpread,
			MaxPositionFraction: cfg.Portfolio.MaxPositionFraction,
			MaxPlatformFraction: cfg.Portfolio.MaxPlatformFraction,
			MinCashReservePct:   cfg.Portfolio.MinCashReservePct,
			KellyCap:            cfg.Portfolio.KellyCap,
			MinPositionValue:    cfg.Portfolio.MinPositionValue,
		}, themer, logger),
		Risk:      portfolio.NewRiskManager(themer),
		Portfolio: deps.Portfolio,
	}

	sinks := engine.Sinks{
		Opportunities: deps.Opportunities,
		Trades:        deps.Trades,
		Cache:         deps.Listings,
		Bus:           deps.Bus,
		Notifier:      deps.Notifier,
	}
	if deps.Archiver != nil {
		sinks.Archiver = deps.Archiver
	}

	return engine.New(engine.Config{
		ScanInterval: cfg.Engine.ScanInterval.Duration,
		MinVolume:    cfg.Engine.MinVolume,
		PlanTrades:   planTrades,
	}, core, sinks, logger)
}

// buildServer assembles the monitoring API and its WebSocket hub.
func buildServer(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*server.Server, *ws.Hub) {
	themer := portfolio.NewThemer(matching.NewNormalizer(cfg.Matching.StopWords))

	probes := map[string]handler.Pinger{
		"redis": deps.Redis,
	}
	if deps.Postgres != nil {
		probes["postgres"] = deps.Postgres
	}

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(probes, logger),
	}
	if deps.Opportunities != nil {
		handlers.Opportunities = handler.NewOpportunityHandler(deps.Opportunities, logger)
	}
	if deps.Trades != nil {
		handlers.Trades = handler.NewTradeHandler(deps.Trades, logger)
	}
	if deps.Portfolio != nil {
		handlers.Portfolio = handler.NewPortfolioHandler(deps.Portfolio, portfolio.NewRiskManager(themer), logger)
	}
	if deps.Listings != nil {
		handlers.Listings = handler.NewListingHandler(deps.Listings, logger)
	}
	if deps.Audit != nil {
		handlers.Audit = handler.NewAuditHandler(deps.Audit, logger)
	}
	if deps.BlobReader != nil {
		handlers.Archives = handler.NewArchiveHandler(deps.BlobReader, logger)
	}

	hub := ws.NewHub(deps.Bus, cfg.Mode, logger)

	srv := server.NewServer(server.Config{
		Port:            cfg.Server.Port,
		CORSOrigins:     cfg.Server.CORSOrigins,
		AuthToken:       cfg.Server.AuthToken,
		RateLimiter:     deps.RateLimiter,
		RateLimit:       apiRateLimit,
		RateLimitWindow: apiRateLimitWindow,
	}, handlers, hub, logger)

	return srv, hub
}

// ScanMode detects and publishes opportunities without planning or persisting
// trades.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	eng := buildEngine(a.cfg, deps, false, a.logger)
	return eng.Run(ctx)
}

// PlanMode runs one full cycle including planning and persistence, reports
// the outcome, and exits.
func (a *App) PlanMode(ctx context.Context, deps *Dependencies) error {
	eng := buildEngine(a.cfg, deps, true, a.logger)

	result, err := eng.Cycle(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("plan cycle finished",
		slog.String("cycle_id", result.CycleID),
		slog.Int("opportunities", len(result.Opportunities)),
		slog.Int("planned_trades", len(result.PlannedTrades)),
		slog.Float64("overall_risk", result.Risk.Overall),
	)
	for _, trade := range result.PlannedTrades {
		a.logger.Info("planned trade",
			slog.String("opportunity_id", trade.Opportunity.ID),
			slog.String("title", trade.Opportunity.BuyListing.Title),
			slog.String("buy_venue", string(trade.Opportunity.BuyVenue)),
			slog.String("sell_venue", string(trade.Opportunity.SellVenue)),
			slog.Float64("position_value", trade.PositionValue),
			slog.Float64("kelly_fraction", trade.KellyFraction),
			slog.Float64("win_probability", trade.WinProbability),
			slog.String("theme", trade.Theme),
		)
	}
	return nil
}

// MonitorMode serves the monitoring API over existing data without scanning.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	srv, hub := buildServer(a.cfg, deps, a.logger)
	return runServices(ctx, a.logger, srv, hub, nil)
}

// FullMode runs the pipeline and the monitoring API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	eng := buildEngine(a.cfg, deps, true, a.logger)

	if !a.cfg.Server.Enabled {
		return eng.Run(ctx)
	}

	srv, hub := buildServer(a.cfg, deps, a.logger)
	return runServices(ctx, a.logger, srv, hub, eng)
}

// runServices runs the server, hub, and optionally the engine concurrently,
// shutting the server down gracefully on context cancellation.
func runServices(ctx context.Context, logger *slog.Logger, srv *server.Server, hub *ws.Hub, eng *engine.Engine) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := srv.Start()
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if eng != nil {
		g.Go(func() error {
			err := eng.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
