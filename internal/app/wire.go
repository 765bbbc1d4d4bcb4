package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	s3blob "github.com/Divyesh-Thirukonda/quantshit-sub001/internal/blob/s3"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/cache/redis"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/config"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/notify"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/store/postgres"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/venue"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/venue/kalshi"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/venue/polymarket"
)

// Dependencies bundles every concrete dependency the modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores (nil when the mode runs without Postgres)
	Postgres      *postgres.Client
	Opportunities domain.OpportunityStore
	Trades        domain.PlannedTradeStore
	Audit         domain.AuditStore

	// Redis
	Redis       *redis.Client
	Listings    domain.ListingCache
	Bus         domain.SignalBus
	RateLimiter domain.RateLimiter

	// Blob storage (nil unless S3 is enabled for this mode)
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   *s3blob.CycleArchiver

	// Pipeline inputs
	Sources   []domain.ListingSource
	Portfolio domain.PortfolioSource

	// Notifications
	Notifier *notify.Notifier
}

// needsPostgres reports whether the mode persists pipeline output.
func needsPostgres(mode string) bool {
	switch mode {
	case "plan", "monitor", "full":
		return true
	default:
		return false
	}
}

// needsS3 reports whether the mode archives cycles to object storage.
func needsS3(mode string) bool {
	switch mode {
	case "plan", "full":
		return true
	default:
		return false
	}
}

// positionWindow is how far back planned trades count as open positions when
// building the portfolio snapshot.
const positionWindow = 24 * time.Hour

// Wire constructs all concrete implementations from the configuration and
// returns them with a cleanup function to be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	mode := strings.ToLower(cfg.Mode)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	if needsPostgres(mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Postgres = pgClient
		deps.Opportunities = postgres.NewOpportunityStore(pool)
		deps.Trades = postgres.NewPlannedTradeStore(pool)
		deps.Audit = postgres.NewAuditStore(pool)
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Redis = redisClient
	deps.Listings = redis.NewListingCache(redisClient)
	deps.Bus = redis.NewSignalBus(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)

	// --- S3 blob storage ---
	if cfg.S3.Enabled && needsS3(mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.Archiver = s3blob.NewCycleArchiver(deps.BlobWriter, deps.Audit, logger)
	}

	// --- Venue sources ---
	poly := polymarket.NewClient(cfg.Polymarket.GammaHost)
	deps.Sources = append(deps.Sources, poly)

	ks := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi rsa key: %w", err)
		}
		if err := ks.SetRSAPrivateKey(pemBytes); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi rsa key: %w", err)
		}
	}
	deps.Sources = append(deps.Sources, ks)

	// --- Portfolio ---
	cash := make(map[domain.VenueID]float64, len(cfg.Portfolio.Cash))
	for v, amount := range cfg.Portfolio.Cash {
		cash[domain.VenueID(v)] = amount
	}
	deps.Portfolio = venue.NewStaticPortfolioSource(cash, deps.Trades, positionWindow)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
