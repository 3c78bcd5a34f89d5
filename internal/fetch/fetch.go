// Package fetch retrieves raw listing markup. The page fetcher is a
// stateful external collaborator: one browsing session serves all fetches
// sequentially and anti-bot interstitials are reported as fetch errors the
// resolver recovers from by retrying.
package fetch

import (
	"context"
	"strings"
)

// Fetcher retrieves the raw markup of a listing page. retry signals that
// the caller is on a second or later attempt; fetchers may use it to wait
// longer before reading the page. A blocked or empty response is returned
// as a fetch-typed error.
type Fetcher interface {
	Fetch(ctx context.Context, url string, retry bool) (string, error)
	Close() error
}

// Signatures of the marketplace's anti-bot interstitial pages.
var badSignatures = []string{
	"Checking your browser before accessing",
	"Service Unavailable - Zero size object",
	"To continue, please verify that you are not a robot",
}

// IsBlockedPage reports whether the markup is empty or an anti-bot
// interstitial rather than a listing page.
func IsBlockedPage(markup string) bool {
	if strings.TrimSpace(markup) == "" {
		return true
	}
	for _, sig := range badSignatures {
		if strings.Contains(markup, sig) {
			return true
		}
	}
	return false
}
