// Package config defines the top-level configuration for the latency-arb bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYARB_* environment variables.
type Config struct {
	Binance    BinanceConfig    `toml:"binance"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Stream     StreamConfig     `toml:"stream"`
	Poll       PollConfig       `toml:"poll"`
	Signal     SignalConfig     `toml:"signal"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
	LogFile    string           `toml:"log_file"`
}

// BinanceConfig holds the spot trade-stream endpoint and watched symbols.
type BinanceConfig struct {
	WsHost  string   `toml:"ws_host"`
	Symbols []string `toml:"symbols"`
}

// PolymarketConfig holds Polymarket API endpoints and the spot-symbol to
// CLOB token mapping that links the two markets.
type PolymarketConfig struct {
	ClobHost  string            `toml:"clob_host"`
	GammaHost string            `toml:"gamma_host"`
	// Markets maps a spot symbol (e.g. "BTCUSDT") to the CLOB token ID whose
	// orderbook lags that symbol.
	Markets map[string]string `toml:"markets"`
	// RateLimitPerSec throttles CLOB REST requests.
	RateLimitPerSec float64 `toml:"rate_limit_per_sec"`
}

// StreamConfig holds streaming-feed windowing parameters.
type StreamConfig struct {
	ReturnWindowMs   int64   `toml:"return_window_ms"`
	SampleIntervalMs int64   `toml:"sample_interval_ms"`
	MoveThresholdBps float64 `toml:"move_threshold_bps"`
	ReportIntervalMs int64   `toml:"report_interval_ms"`
}

// PollConfig holds polling-feed cadence and backoff parameters.
type PollConfig struct {
	IntervalMs   int64 `toml:"interval_ms"`
	DepthLevels  int   `toml:"depth_levels"`
	MaxBackoffMs int64 `toml:"max_backoff_ms"`
}

// SignalConfig holds signal-engine gate thresholds.
type SignalConfig struct {
	MaxSpreadBps    float64 `toml:"max_spread_bps"`
	MinDepth        float64 `toml:"min_depth"`
	CooldownMs      int64   `toml:"cooldown_ms"`
	MinEdgeBps      float64 `toml:"min_edge_bps"`
	HistoryWindowMs int64   `toml:"history_window_ms"`
}

// RedisConfig holds Redis connection parameters for the signal bus and
// latest-price cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds connection parameters for the append-only signal store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
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

// S3Config holds S3-compatible object storage parameters for the signal
// archive.
type S3Config struct {
	Enabled           bool   `toml:"enabled"`
	Endpoint          string `toml:"endpoint"`
	Region            string `toml:"region"`
	Bucket            string `toml:"bucket"`
	AccessKey         string `toml:"access_key"`
	SecretKey         string `toml:"secret_key"`
	UseSSL            bool   `toml:"use_ssl"`
	ForcePathStyle    bool   `toml:"force_path_style"`
	ArchiveAfterHours int    `toml:"archive_after_hours"`
	ArchiveEveryMins  int    `toml:"archive_every_mins"`
}

// ServerConfig holds diagnostic HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Binance: BinanceConfig{
			WsHost:  "wss://stream.binance.com:9443",
			Symbols: []string{"BTCUSDT", "ETHUSDT"},
		},
		Polymarket: PolymarketConfig{
			ClobHost:        "https://clob.polymarket.com",
			GammaHost:       "https://gamma-api.polymarket.com",
			Markets:         map[string]string{},
			RateLimitPerSec: 5,
		},
		Stream: StreamConfig{
			ReturnWindowMs:   10_000,
			SampleIntervalMs: 500,
			MoveThresholdBps: 30,
			ReportIntervalMs: 30_000,
		},
		Poll: PollConfig{
			IntervalMs:   5_000,
			DepthLevels:  10,
			MaxBackoffMs: 30_000,
		},
		Signal: SignalConfig{
			MaxSpreadBps:    500,
			MinDepth:        100,
			CooldownMs:      60_000,
			MinEdgeBps:      50,
			HistoryWindowMs: 60_000,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "polyarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:           false,
			Endpoint:          "http://localhost:9000",
			Region:            "us-east-1",
			Bucket:            "polyarb-signals",
			ForcePathStyle:    true,
			ArchiveAfterHours: 24,
			ArchiveEveryMins:  60,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events: []string{"signal", "error"},
		},
		Mode:     "detect",
		LogLevel: "info",
		LogFile:  "",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"detect": true,
	"stream": true,
	"poll":   true,
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

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: detect, stream, poll)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Binance
	if c.Mode != "poll" {
		if c.Binance.WsHost == "" {
			errs = append(errs, "binance: ws_host must not be empty")
		}
		if len(c.Binance.Symbols) == 0 {
			errs = append(errs, "binance: at least one symbol is required")
		}
	}

	// Polymarket
	if c.Mode != "stream" {
		if c.Polymarket.ClobHost == "" {
			errs = append(errs, "polymarket: clob_host must not be empty")
		}
		if len(c.Polymarket.Markets) == 0 {
			errs = append(errs, "polymarket: at least one symbol -> token mapping is required")
		}
	}
	if c.Polymarket.RateLimitPerSec <= 0 {
		errs = append(errs, "polymarket: rate_limit_per_sec must be > 0")
	}

	// Stream windowing
	if c.Stream.ReturnWindowMs <= 0 {
		errs = append(errs, "stream: return_window_ms must be > 0")
	}
	if c.Stream.SampleIntervalMs <= 0 {
		errs = append(errs, "stream: sample_interval_ms must be > 0")
	}
	if c.Stream.SampleIntervalMs >= c.Stream.ReturnWindowMs {
		errs = append(errs, "stream: sample_interval_ms must be smaller than return_window_ms")
	}
	if c.Stream.MoveThresholdBps <= 0 {
		errs = append(errs, "stream: move_threshold_bps must be > 0")
	}

	// Poll cadence
	if c.Poll.IntervalMs <= 0 {
		errs = append(errs, "poll: interval_ms must be > 0")
	}
	if c.Poll.DepthLevels < 1 {
		errs = append(errs, "poll: depth_levels must be >= 1")
	}
	if c.Poll.MaxBackoffMs < c.Poll.IntervalMs {
		errs = append(errs, "poll: max_backoff_ms must be >= interval_ms")
	}

	// Signal gates
	if c.Signal.MaxSpreadBps <= 0 {
		errs = append(errs, "signal: max_spread_bps must be > 0")
	}
	if c.Signal.MinDepth < 0 {
		errs = append(errs, "signal: min_depth must be >= 0")
	}
	if c.Signal.CooldownMs < 0 {
		errs = append(errs, "signal: cooldown_ms must be >= 0")
	}
	if c.Signal.MinEdgeBps <= 0 {
		errs = append(errs, "signal: min_edge_bps must be > 0")
	}
	if c.Signal.HistoryWindowMs <= 0 {
		errs = append(errs, "signal: history_window_ms must be > 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
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
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
		if !c.Postgres.Enabled {
			errs = append(errs, "s3: archiving requires postgres.enabled (signals are archived from the store)")
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
