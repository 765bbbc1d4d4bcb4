package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies QUANTARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known QUANTARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Matching ──
	setFloat64(&cfg.Matching.SimilarityThreshold, "QUANTARB_MATCHING_SIMILARITY_THRESHOLD")
	setFloat64(&cfg.Matching.KeyTermBonusCap, "QUANTARB_MATCHING_KEY_TERM_BONUS_CAP")
	setBool(&cfg.Matching.RequireSameCategory, "QUANTARB_MATCHING_REQUIRE_SAME_CATEGORY")
	setStringSlice(&cfg.Matching.StopWords, "QUANTARB_MATCHING_STOP_WORDS")
	setStringSlice(&cfg.Matching.KeyTerms, "QUANTARB_MATCHING_KEY_TERMS")

	// ── Pricing ──
	setFloat64(&cfg.Pricing.SlippageFactor, "QUANTARB_PRICING_SLIPPAGE_FACTOR")
	setFloat64(&cfg.Pricing.MinPositionSize, "QUANTARB_PRICING_MIN_POSITION_SIZE")
	setFloat64(&cfg.Pricing.MaxPositionSize, "QUANTARB_PRICING_MAX_POSITION_SIZE")

	// ── Opportunity ──
	setFloat64(&cfg.Opportunity.MinProfit, "QUANTARB_OPPORTUNITY_MIN_PROFIT")
	setFloat64(&cfg.Opportunity.MinProfitPct, "QUANTARB_OPPORTUNITY_MIN_PROFIT_PCT")
	setFloat64(&cfg.Opportunity.MinConfidence, "QUANTARB_OPPORTUNITY_MIN_CONFIDENCE")

	// ── Portfolio ──
	setFloat64(&cfg.Portfolio.MaxPositionFraction, "QUANTARB_PORTFOLIO_MAX_POSITION_FRACTION")
	setFloat64(&cfg.Portfolio.MaxPlatformFraction, "QUANTARB_PORTFOLIO_MAX_PLATFORM_FRACTION")
	setFloat64(&cfg.Portfolio.MinCashReservePct, "QUANTARB_PORTFOLIO_MIN_CASH_RESERVE_PCT")
	setFloat64(&cfg.Portfolio.SpreadFloor, "QUANTARB_PORTFOLIO_SPREAD_FLOOR")
	setFloat64(&cfg.Portfolio.ThinSpread, "QUANTARB_PORTFOLIO_THIN_SPREAD")
	setFloat64(&cfg.Portfolio.KellyCap, "QUANTARB_PORTFOLIO_KELLY_CAP")
	setFloat64(&cfg.Portfolio.MinPositionValue, "QUANTARB_PORTFOLIO_MIN_POSITION_VALUE")

	// ── Venues ──
	setStr(&cfg.Polymarket.GammaHost, "QUANTARB_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Kalshi.ApiKey, "QUANTARB_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "QUANTARB_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "QUANTARB_KALSHI_BASE_URL")

	// ── Engine ──
	setDuration(&cfg.Engine.ScanInterval, "QUANTARB_ENGINE_SCAN_INTERVAL")
	setFloat64(&cfg.Engine.MinVolume, "QUANTARB_ENGINE_MIN_VOLUME")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "QUANTARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "QUANTARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "QUANTARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "QUANTARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "QUANTARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "QUANTARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "QUANTARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "QUANTARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "QUANTARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "QUANTARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "QUANTARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "QUANTARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "QUANTARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "QUANTARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "QUANTARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "QUANTARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "QUANTARB_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "QUANTARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "QUANTARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "QUANTARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "QUANTARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "QUANTARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "QUANTARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "QUANTARB_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "QUANTARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "QUANTARB_SERVER_PORT")
	setStr(&cfg.Server.AuthToken, "QUANTARB_SERVER_AUTH_TOKEN")
	setStringSlice(&cfg.Server.CORSOrigins, "QUANTARB_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "QUANTARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "QUANTARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "QUANTARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "QUANTARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "QUANTARB_MODE")
	setStr(&cfg.LogLevel, "QUANTARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
