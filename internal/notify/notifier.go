// Package notify delivers operator alerts for pipeline events over one or
// more channels (Telegram, Discord). Events are filtered by type so operators
// only receive the categories they opted into.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// Event types emitted by the pipeline.
const (
	EventOpportunityFound = "opportunity_found"
	EventTradePlanned     = "trade_planned"
	EventError            = "error"
)

// Sender is a single delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier fans alerts out to all registered senders, filtered by event type.
// An empty event list allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only events
// listed in events pass the filter; an empty list disables filtering.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// OpportunityFound alerts operators about a validated arbitrage opportunity.
func (n *Notifier) OpportunityFound(ctx context.Context, opp domain.Opportunity) error {
	title := fmt.Sprintf("Arb: %s/%s spread %.1f%%",
		opp.BuyListing.VenueID, opp.SellListing.VenueID, opp.Spread*100)
	message := fmt.Sprintf(
		"%s\nBuy %s @ %.3f on %s, sell @ %.3f on %s\nExpected profit %.2f (%.1f%%), confidence %.2f, size %.0f",
		opp.BuyListing.Title,
		opp.Outcome, opp.BuyPrice, opp.BuyListing.VenueID,
		opp.SellPrice, opp.SellListing.VenueID,
		opp.ExpectedProfit, opp.ExpectedProfitPct*100,
		opp.Confidence, opp.RecommendedSize,
	)
	return n.Notify(ctx, EventOpportunityFound, title, message)
}

// TradePlanned alerts operators that the planner committed capital to a trade.
func (n *Notifier) TradePlanned(ctx context.Context, trade domain.PlannedTrade) error {
	title := fmt.Sprintf("Planned: %.0f on %s", trade.PositionValue, trade.Opportunity.BuyListing.VenueID)
	message := fmt.Sprintf(
		"%s\nTheme %s, Kelly %.3f, risk adj %.2f, win prob %.2f",
		trade.Opportunity.BuyListing.Title,
		trade.Theme, trade.KellyFraction, trade.RiskAdjustment, trade.WinProbability,
	)
	return n.Notify(ctx, EventTradePlanned, title, message)
}

// Error alerts operators about a pipeline failure.
func (n *Notifier) Error(ctx context.Context, stage string, err error) error {
	return n.Notify(ctx, EventError,
		fmt.Sprintf("Pipeline error: %s", stage),
		err.Error(),
	)
}

// Notify sends to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// dispatch delivers to every sender. Individual failures are collected so one
// broken channel does not block the others.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
