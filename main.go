package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ebaysync/config"
	"ebaysync/internal/fetch"
	"ebaysync/internal/resolver"
	"ebaysync/logger"
	"ebaysync/services/cache"
	"ebaysync/services/publisher"
	"ebaysync/services/store"
	"ebaysync/services/worker"

	// Row store backends register themselves by kind.
	_ "ebaysync/services/store/csvfile"
	_ "ebaysync/services/store/postgres"
	_ "ebaysync/services/store/sqlite"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreKind).
		Str("fetch_mode", cfg.FetchMode).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Starting sync run")

	// run owns all deferred cleanup so collaborators are released on every
	// exit path, including aborts.
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Sync run failed")
	}

	log.Info().Msg("Sync run completed")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rowStore, err := store.New(ctx, store.Config{Kind: cfg.StoreKind, DSN: cfg.StoreDSN})
	if err != nil {
		return err
	}
	defer rowStore.Close()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		defer redisPub.Close()
		pub = redisPub
		logger.Info("Publishing records to Redis at %s (stream: %s)", cfg.RedisAddr, cfg.RedisStream)
	}

	res := resolver.New(fetcher, cfg.MaxAttempts)
	w := worker.NewWorker(res, rowStore, pub)

	_, err = w.Run(ctx)
	return err
}

// newFetcher builds the configured page fetcher: a headless-Chrome session
// by default, or the plain-HTTP fetcher with an optional memcache-backed
// cooldown cache.
func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	if cfg.FetchMode == "browser" {
		return fetch.NewBrowserFetcher(fetch.BrowserConfig{
			WarmupURL: cfg.WarmupURL,
			Wait:      cfg.FetchWait,
			RetryWait: cfg.RetryWait,
			Timeout:   cfg.FetchTimeout,
		})
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using cooldown cache at %s", cfg.MemcacheAddr)
	}

	return fetch.NewHTTPFetcher(fetch.HTTPConfig{
		Wait:      cfg.FetchWait,
		RetryWait: cfg.RetryWait,
		BlockTime: cfg.BlockTime,
	}, cacheSvc), nil
}
