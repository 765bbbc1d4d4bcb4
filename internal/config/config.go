// Package config defines the top-level configuration for the arbitrage
// pipeline and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by QUANTARB_* environment variables.
type Config struct {
	Matching    MatchingConfig    `toml:"matching"`
	Pricing     PricingConfig     `toml:"pricing"`
	Opportunity OpportunityConfig `toml:"opportunity"`
	Portfolio   PortfolioConfig   `toml:"portfolio"`
	Polymarket  PolymarketConfig  `toml:"polymarket"`
	Kalshi      KalshiConfig      `toml:"kalshi"`
	Engine      EngineConfig      `toml:"engine"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Redis       RedisConfig       `toml:"redis"`
	S3          S3Config          `toml:"s3"`
	Server      ServerConfig      `toml:"server"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// MatchingConfig holds title-similarity parameters.
type MatchingConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	KeyTermBonusCap     float64 `toml:"key_term_bonus_cap"`
	// StopWords and KeyTerms override the built-in sets when non-empty.
	StopWords []string `toml:"stop_words"`
	KeyTerms  []string `toml:"key_terms"`
	// RequireSameCategory wraps the strategy in a category gate.
	RequireSameCategory bool `toml:"require_same_category"`
}

// PricingConfig holds fee, slippage, and sizing parameters.
type PricingConfig struct {
	SlippageFactor  float64            `toml:"slippage_factor"`
	Fees            map[string]float64 `toml:"fees"` // venue -> fee pct, e.g. 0.01
	MinPositionSize float64            `toml:"min_position_size"`
	MaxPositionSize float64            `toml:"max_position_size"`
}

// OpportunityConfig holds screening and final-validation thresholds.
type OpportunityConfig struct {
	MinProfit     float64 `toml:"min_profit"`
	MinProfitPct  float64 `toml:"min_profit_pct"`
	MinConfidence float64 `toml:"min_confidence"`
}

// PortfolioConfig holds planner and risk parameters plus the static cash
// balances used when no live portfolio source is wired.
type PortfolioConfig struct {
	MaxPositionFraction float64            `toml:"max_position_fraction"`
	MaxPlatformFraction float64            `toml:"max_platform_fraction"`
	MinCashReservePct   float64            `toml:"min_cash_reserve_pct"`
	SpreadFloor         float64            `toml:"spread_floor"`
	ThinSpread          float64            `toml:"thin_spread"`
	KellyCap            float64            `toml:"kelly_cap"`
	MinPositionValue    float64            `toml:"min_position_value"`
	Cash                map[string]float64 `toml:"cash"` // venue -> starting cash
}

// PolymarketConfig holds Polymarket Gamma API parameters.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// KalshiConfig holds Kalshi exchange API credentials.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
}

// EngineConfig holds scan-loop parameters.
type EngineConfig struct {
	ScanInterval duration `toml:"scan_interval"`
	MinVolume    float64  `toml:"min_volume"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for cycle archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP monitoring server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	AuthToken   string   `toml:"auth_token"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "1m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "1m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Matching: MatchingConfig{
			SimilarityThreshold: 0.5,
			KeyTermBonusCap:     0.2,
			RequireSameCategory: false,
		},
		Pricing: PricingConfig{
			SlippageFactor: 0.005,
			Fees: map[string]float64{
				"polymarket": 0.0,
				"kalshi":     0.01,
			},
			MinPositionSize: 10,
			MaxPositionSize: 1000,
		},
		Opportunity: OpportunityConfig{
			MinProfit:     0,
			MinProfitPct:  0.02,
			MinConfidence: 0.6,
		},
		Portfolio: PortfolioConfig{
			MaxPositionFraction: 0.1,
			MaxPlatformFraction: 0.6,
			MinCashReservePct:   0.2,
			SpreadFloor:         0.02,
			ThinSpread:          0.05,
			KellyCap:            0.25,
			MinPositionValue:    10,
			Cash: map[string]float64{
				"polymarket": 500,
				"kalshi":     500,
			},
		},
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Engine: EngineConfig{
			ScanInterval: duration{time.Minute},
			MinVolume:    1000,
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "quantarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "quantarb-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity_found", "trade_planned", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":    true,
	"plan":    true,
	"monitor": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, plan, monitor, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Matching
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Sprintf("matching: similarity_threshold must be in [0,1], got %g", c.Matching.SimilarityThreshold))
	}
	if c.Matching.KeyTermBonusCap < 0 || c.Matching.KeyTermBonusCap > 1 {
		errs = append(errs, fmt.Sprintf("matching: key_term_bonus_cap must be in [0,1], got %g", c.Matching.KeyTermBonusCap))
	}

	// Pricing
	if c.Pricing.SlippageFactor < 0 || c.Pricing.SlippageFactor >= 1 {
		errs = append(errs, fmt.Sprintf("pricing: slippage_factor must be in [0,1), got %g", c.Pricing.SlippageFactor))
	}
	if len(c.Pricing.Fees) == 0 {
		errs = append(errs, "pricing: fees must name at least one venue")
	}
	for venue, pct := range c.Pricing.Fees {
		if pct < 0 || pct >= 1 {
			errs = append(errs, fmt.Sprintf("pricing: fee for %s must be in [0,1), got %g", venue, pct))
		}
	}
	if c.Pricing.MinPositionSize <= 0 {
		errs = append(errs, "pricing: min_position_size must be > 0")
	}
	if c.Pricing.MaxPositionSize < c.Pricing.MinPositionSize {
		errs = append(errs, "pricing: max_position_size must not be below min_position_size")
	}

	// Opportunity
	if c.Opportunity.MinProfitPct < 0 {
		errs = append(errs, "opportunity: min_profit_pct must be >= 0")
	}
	if c.Opportunity.MinConfidence < 0 || c.Opportunity.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("opportunity: min_confidence must be in [0,1], got %g", c.Opportunity.MinConfidence))
	}

	// Portfolio
	if c.Portfolio.MaxPositionFraction <= 0 || c.Portfolio.MaxPositionFraction > 1 {
		errs = append(errs, "portfolio: max_position_fraction must be in (0,1]")
	}
	if c.Portfolio.MaxPlatformFraction <= 0 || c.Portfolio.MaxPlatformFraction > 1 {
		errs = append(errs, "portfolio: max_platform_fraction must be in (0,1]")
	}
	if c.Portfolio.MinCashReservePct < 0 || c.Portfolio.MinCashReservePct >= 1 {
		errs = append(errs, "portfolio: min_cash_reserve_pct must be in [0,1)")
	}
	if c.Portfolio.KellyCap <= 0 || c.Portfolio.KellyCap > 1 {
		errs = append(errs, "portfolio: kelly_cap must be in (0,1]")
	}
	if c.Portfolio.MinPositionValue <= 0 {
		errs = append(errs, "portfolio: min_position_value must be > 0")
	}

	// Venues
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}

	// Engine
	if c.Engine.ScanInterval.Duration <= 0 {
		errs = append(errs, "engine: scan_interval must be > 0")
	}
	if c.Engine.MinVolume < 0 {
		errs = append(errs, "engine: min_volume must be >= 0")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
