package fetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
)

// BrowserConfig holds configuration for the browser fetcher.
type BrowserConfig struct {
	// WarmupURL is navigated once when the session is created, so the
	// marketplace sees a normal entry page before any listing request.
	WarmupURL string
	// Wait is the settle time after navigation; RetryWait replaces it when
	// the retry hint is set.
	Wait      time.Duration
	RetryWait time.Duration
	Timeout   time.Duration
	UserAgent string
}

// BrowserFetcher fetches listing pages through a single headless-Chrome
// session. The session is owned by this fetcher and must be released with
// Close.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     BrowserConfig
	log     *logger.Logger
}

// NewBrowserFetcher launches headless Chrome, connects to it and performs
// the warm-up navigation.
func NewBrowserFetcher(cfg BrowserConfig) (*BrowserFetcher, error) {
	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, apperr.NewFetch("browser", "failed to launch chrome", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, apperr.NewFetch("browser", "failed to connect to chrome", err)
	}

	f := &BrowserFetcher{
		browser: browser,
		cfg:     cfg,
		log:     logger.ForFetcher("browser"),
	}

	if cfg.WarmupURL != "" {
		f.warmup()
	}

	return f, nil
}

// warmup navigates the session to the marketplace entry page. Failures are
// logged, not fatal; the first real fetch may still succeed.
func (f *BrowserFetcher) warmup() {
	page, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		f.log.Warn().Err(err).Msg("Warm-up page creation failed")
		return
	}
	defer page.Close()

	page = page.Timeout(f.cfg.Timeout)
	if err := page.Navigate(f.cfg.WarmupURL); err != nil {
		f.log.Warn().Str("url", f.cfg.WarmupURL).Err(err).Msg("Warm-up navigation failed")
		return
	}
	time.Sleep(f.cfg.Wait)
	f.log.Debug().Str("url", f.cfg.WarmupURL).Msg("Warm-up navigation done")
}

// Fetch navigates to the listing URL, waits for the page to settle and
// returns the rendered markup. Anti-bot interstitials come back as fetch
// errors.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, retry bool) (string, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", apperr.NewFetch("browser", "failed to create page", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.cfg.Timeout)

	if f.cfg.UserAgent != "" {
		_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.cfg.UserAgent,
		})
	}

	if err := page.Navigate(url); err != nil {
		return "", apperr.NewFetch("browser", "navigation failed", err)
	}

	wait := f.cfg.Wait
	if retry {
		wait = f.cfg.RetryWait
	}
	select {
	case <-ctx.Done():
		return "", apperr.NewFetch("browser", "fetch aborted", ctx.Err())
	case <-time.After(wait):
	}

	markup, err := page.HTML()
	if err != nil {
		return "", apperr.NewFetch("browser", "failed to read page markup", err)
	}

	if IsBlockedPage(markup) {
		return "", apperr.NewFetch("browser", "blocked or empty page", nil)
	}

	return markup, nil
}

// Close shuts the browser session down.
func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}
