package fetch

import (
	"context"
	"errors"
	"io"
	"net/url"
	"time"

	"ebaysync/helpers"
	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
	"ebaysync/services/cache"
)

// HTTPConfig holds configuration for the plain-HTTP fetcher.
type HTTPConfig struct {
	// Wait is the pause before each request; RetryWait replaces it when the
	// retry hint is set.
	Wait      time.Duration
	RetryWait time.Duration
	// BlockTime is how long a host stays on cooldown after a blocked or
	// rate-limited response.
	BlockTime time.Duration
}

// HTTPFetcher fetches listing pages with plain HTTP requests and randomized
// browser-like headers. After a block it marks the host in the cooldown
// cache so further fetches short-circuit for the block window. The cache is
// optional; a nil cache disables cooldown tracking.
type HTTPFetcher struct {
	cfg      HTTPConfig
	cacheSvc cache.CacheService
	log      *logger.Logger
}

// NewHTTPFetcher creates an HTTP fetcher with an optional cooldown cache.
func NewHTTPFetcher(cfg HTTPConfig, cacheSvc cache.CacheService) *HTTPFetcher {
	return &HTTPFetcher{
		cfg:      cfg,
		cacheSvc: cacheSvc,
		log:      logger.ForFetcher("http"),
	}
}

// Fetch retrieves the listing markup. Blocked pages, rate limits and hosts
// on cooldown all come back as fetch errors the caller may retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, retry bool) (string, error) {
	key := cooldownKey(rawURL)
	if f.cacheSvc != nil && key != "" {
		if _, err := f.cacheSvc.Get(key); err == nil {
			return "", apperr.NewFetch("http", "host is cooling down after a block", nil)
		}
	}

	wait := f.cfg.Wait
	if retry {
		wait = f.cfg.RetryWait
	}
	select {
	case <-ctx.Done():
		return "", apperr.NewFetch("http", "fetch aborted", ctx.Err())
	case <-time.After(wait):
	}

	body, err := helpers.FetchWithRandomHeaders(ctx, rawURL)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			f.setCooldown(key)
		}
		return "", apperr.NewFetch("http", "request failed", err)
	}

	markupBytes, err := io.ReadAll(body)
	if err != nil {
		return "", apperr.NewFetch("http", "failed to read response body", err)
	}

	markup := string(markupBytes)
	if IsBlockedPage(markup) {
		f.setCooldown(key)
		return "", apperr.NewFetch("http", "blocked or empty page", nil)
	}

	return markup, nil
}

// Close implements Fetcher; the HTTP fetcher holds no session state.
func (f *HTTPFetcher) Close() error {
	return nil
}

func (f *HTTPFetcher) setCooldown(key string) {
	if f.cacheSvc == nil || key == "" {
		return
	}
	if err := f.cacheSvc.Set(key, []byte("blocked"), f.cfg.BlockTime); err != nil {
		f.log.Warn().Str("key", key).Err(err).Msg("Failed to set cooldown")
	}
}

// cooldownKey derives the cooldown cache key from the listing URL's host.
func cooldownKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return "cooldown_" + u.Host
}
