package publisher

import (
	"context"

	"ebaysync/internal/listing"
)

// Publisher pushes resolved records to downstream consumers. Publishing is
// best-effort and never blocks the run: the row store write-back is the
// authoritative output.
type Publisher interface {
	// Publish publishes one resolved record
	Publish(ctx context.Context, record *listing.Record) error

	// Close closes the publisher connection
	Close() error
}
