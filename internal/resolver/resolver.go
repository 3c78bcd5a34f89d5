// Package resolver drives the per-listing fetch+parse retry loop.
package resolver

import (
	"context"

	"ebaysync/internal/fetch"
	"ebaysync/internal/listing"
	"ebaysync/internal/parser"
	"ebaysync/logger"
)

// DefaultAttempts is the fetch+parse attempt bound used when no explicit
// count is configured.
const DefaultAttempts = 3

// ItemResolver turns one listing link into a best-effort record.
type ItemResolver interface {
	Resolve(ctx context.Context, link string) *listing.Record
}

// Resolver resolves listings through a page fetcher with a bounded number
// of attempts per listing.
type Resolver struct {
	fetcher  fetch.Fetcher
	attempts int
	log      *logger.Logger
}

// New creates a resolver. attempts below 1 falls back to DefaultAttempts.
func New(fetcher fetch.Fetcher, attempts int) *Resolver {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	return &Resolver{
		fetcher:  fetcher,
		attempts: attempts,
		log:      logger.ForResolver(),
	}
}

// Resolve runs up to the configured number of fetch+parse cycles for the
// link. The second and later attempts pass the retry hint to the fetcher.
// The first attempt that parses wins and ends the loop; an empty or blocked
// fetch and a parse failure both just advance to the next attempt. Resolve
// never fails: exhausting all attempts still yields the record, with
// whatever fields were parsed (possibly none).
func (r *Resolver) Resolve(ctx context.Context, link string) *listing.Record {
	record := listing.NewRecord(link)

	for attempt := 1; attempt <= r.attempts; attempt++ {
		if ctx.Err() != nil {
			return record
		}

		markup, err := r.fetcher.Fetch(ctx, link, attempt > 1)
		if err != nil {
			r.log.Warn().
				Str("link", link).
				Int("attempt", attempt).
				Int("attempts", r.attempts).
				Err(err).
				Msg("Empty or blocked page")
			continue
		}

		extractor, err := parser.New(markup)
		if err != nil {
			r.log.Warn().
				Str("link", link).
				Int("attempt", attempt).
				Int("attempts", r.attempts).
				Err(err).
				Msg("Parsing error")
			continue
		}

		record.Fields = extractor.Extract()
		r.log.Info().
			Str("link", link).
			Int("attempt", attempt).
			Str("title", stringOrEmpty(record.Title)).
			Msg("Parsed listing")
		return record
	}

	r.log.Warn().
		Str("link", link).
		Int("attempts", r.attempts).
		Msg("Failed to parse after all attempts")
	return record
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
