package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	s3blob "github.com/Healzy1/poly-latency-arb-bot/internal/blob/s3"
	"github.com/Healzy1/poly-latency-arb-bot/internal/cache/redis"
	"github.com/Healzy1/poly-latency-arb-bot/internal/config"
	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
	"github.com/Healzy1/poly-latency-arb-bot/internal/notify"
	"github.com/Healzy1/poly-latency-arb-bot/internal/store/postgres"
)

// Dependencies bundles the sinks the modes fan signals out to. All fields
// except Recent and Notifier are nil when the corresponding backend is
// disabled in configuration.
type Dependencies struct {
	SignalStore domain.SignalStore
	SignalBus   domain.SignalBus
	PriceCache  domain.PriceCache
	Archiver    *s3blob.Archiver
	Notifier    *notify.Notifier

	// Recent always exists; it backs the /api/signals endpoint when no
	// database is configured.
	Recent *RecentBuffer
}

// Wire constructs the configured dependency implementations and returns them
// with a cleanup function to be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Recent: NewRecentBuffer(256),
	}

	// --- PostgreSQL (append-only signal store) ---
	var archiveStore s3blob.SignalArchiveStore
	if cfg.Postgres.Enabled {
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

		store := postgres.NewSignalStore(pgClient.Pool())
		deps.SignalStore = store
		archiveStore = store
	}

	// --- Redis (signal bus + latest-price mirror) ---
	if cfg.Redis.Enabled {
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

		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.PriceCache = redis.NewPriceCache(redisClient)
	}

	// --- S3 (signal archive; requires the postgres store) ---
	if cfg.S3.Enabled {
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
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), archiveStore, logger)
	}

	// --- Notification channels ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
