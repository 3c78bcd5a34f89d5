// Package worker drives one full synchronization pass: read links from the
// row store, resolve each listing, write the aggregate back in one batch.
package worker

import (
	"context"

	"ebaysync/internal/listing"
	"ebaysync/internal/resolver"
	"ebaysync/logger"
	"ebaysync/services/publisher"
	"ebaysync/services/store"
)

// linkPreviewLen bounds the link length in progress logs.
const linkPreviewLen = 37

// Worker is the batch orchestrator.
type Worker struct {
	resolver  resolver.ItemResolver
	store     store.RowStore
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a worker. The publisher is optional and may be nil.
func NewWorker(res resolver.ItemResolver, st store.RowStore, pub publisher.Publisher) *Worker {
	return &Worker{
		resolver:  res,
		store:     st,
		publisher: pub,
		log:       logger.ForWorker(),
	}
}

// Run executes one pass. The schema check runs before the first fetch so a
// misconfigured store aborts immediately. Listings are processed
// sequentially in stored order; a repeated link keeps only its last
// resolution. The aggregate is written back in a single bulk call and
// returned alongside any error.
func (w *Worker) Run(ctx context.Context) (listing.Aggregate, error) {
	if err := w.store.CheckSchema(ctx); err != nil {
		return nil, err
	}

	links, err := w.store.Links(ctx)
	if err != nil {
		return nil, err
	}
	w.log.Info().Int("count", len(links)).Msg("Found links in the row store")

	records := listing.Aggregate{}
	for i, link := range links {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}

		w.log.Info().
			Int("position", i+1).
			Int("total", len(links)).
			Str("link", truncate(link, linkPreviewLen)).
			Msg("Processing listing")

		record := w.resolver.Resolve(ctx, link)
		records[link] = record

		if w.publisher != nil {
			if err := w.publisher.Publish(ctx, record); err != nil {
				w.log.Warn().Str("link", link).Err(err).Msg("Failed to publish record")
			}
		}
	}

	if err := w.store.WriteRecords(ctx, records); err != nil {
		return records, err
	}
	w.log.Info().Int("records", len(records)).Msg("Row store update completed")

	return records, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
