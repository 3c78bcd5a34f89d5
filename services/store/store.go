// Package store defines the row store contract: the tabular persistence
// that holds both the input listing links and the parsed output fields,
// addressed by column name rather than position. Backends register
// themselves by kind and are selected through configuration.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ebaysync/internal/listing"
	apperr "ebaysync/pkg/errors"
)

// Column headers of the row store.
const (
	ColumnLink      = "link"
	ColumnPrice     = "price"
	ColumnShipping  = "shipping price"
	ColumnDelivery  = "delivery time"
	ColumnTitle     = "title"
	ColumnCondition = "condition"
	ColumnMPN       = "mpn"
	ColumnBrand     = "brand"
	ColumnModel     = "model"
)

// OutputColumns lists the written columns in write order.
var OutputColumns = []string{
	ColumnPrice,
	ColumnShipping,
	ColumnDelivery,
	ColumnTitle,
	ColumnCondition,
	ColumnMPN,
	ColumnBrand,
	ColumnModel,
}

// RequiredColumns returns every column the store must carry: the link
// column plus all output columns.
func RequiredColumns() []string {
	return append([]string{ColumnLink}, OutputColumns...)
}

// RowStore is the external tabular persistence.
type RowStore interface {
	// CheckSchema verifies that every required column exists. A missing
	// column is a schema error and fatal for the whole run; callers check
	// the schema before the first fetch.
	CheckSchema(ctx context.Context) error

	// Links returns the listing links in stored order, skipping rows with
	// an empty link cell.
	Links(ctx context.Context) ([]string, error)

	// WriteRecords performs one bulk write covering all output columns for
	// every stored link that has an aggregate entry. Aggregate entries
	// without a matching row are silently skipped; no rows are inserted.
	WriteRecords(ctx context.Context, records listing.Aggregate) error

	Close() error
}

// Values returns the output cell values of a record in OutputColumns order.
// Unparsed fields are nil; free shipping is the integer 0.
func Values(rec *listing.Record) []any {
	return []any{
		ptrValue(rec.Price),
		shippingValue(rec.Shipping),
		ptrValue(rec.Delivery),
		ptrValue(rec.Title),
		ptrValue(rec.Condition),
		ptrValue(rec.MPN),
		ptrValue(rec.Brand),
		ptrValue(rec.Model),
	}
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func shippingValue(c *listing.ShippingCost) any {
	if c == nil {
		return nil
	}
	return c.Value()
}

// Config is the minimal configuration needed to open a row store.
type Config struct {
	Kind string
	DSN  string
}

type factory func(ctx context.Context, cfg Config) (RowStore, error)

var (
	registryMu sync.Mutex
	registry   = map[string]factory{}
)

// Register makes a backend available under the given kind. Backends call
// this from their init function.
func Register(kind string, fn factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("store: duplicate backend kind %q", kind))
	}
	registry[kind] = fn
}

// New opens a row store of the configured kind.
func New(ctx context.Context, cfg Config) (RowStore, error) {
	registryMu.Lock()
	fn, ok := registry[cfg.Kind]
	registryMu.Unlock()
	if !ok {
		return nil, apperr.NewConfiguration(
			fmt.Sprintf("unknown store kind %q (known: %v)", cfg.Kind, Kinds()), nil)
	}
	return fn(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
