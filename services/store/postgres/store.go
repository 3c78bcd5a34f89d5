// Package postgres implements the row store on a Postgres listings table
// with the same header-name addressing as the other backends.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ebaysync/internal/listing"
	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
	"ebaysync/services/store"
)

const tableName = "listings"

func init() {
	store.Register("postgres", New)
}

// Store is the Postgres-backed row store.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New connects to the database at cfg.DSN.
func New(ctx context.Context, cfg store.Config) (store.RowStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, apperr.NewStorage("postgres", "failed to create pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.NewStorage("postgres", "failed to ping database", err)
	}
	return &Store{pool: pool, log: logger.ForStore("postgres")}, nil
}

// CheckSchema verifies every required column against information_schema.
func (s *Store) CheckSchema(ctx context.Context) error {
	rows, err := s.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = $1`, tableName)
	if err != nil {
		return apperr.NewStorage("postgres", "failed to read column names", err)
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return apperr.NewStorage("postgres", "failed to scan column name", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return apperr.NewStorage("postgres", "failed to iterate column names", err)
	}

	for _, column := range store.RequiredColumns() {
		if !present[column] {
			return apperr.NewSchema("postgres", column)
		}
	}
	return nil
}

// Links returns the non-empty link cells. The table carries no explicit
// ordering column, so physical order (ctid) stands in for stored order.
func (s *Store) Links(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE btrim(%s) <> '' ORDER BY ctid`,
		sqlIdent(store.ColumnLink), tableName, sqlIdent(store.ColumnLink))
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, apperr.NewStorage("postgres", "failed to read links", err)
	}
	defer rows.Close()

	var links []string
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, apperr.NewStorage("postgres", "failed to scan link", err)
		}
		links = append(links, strings.TrimSpace(link))
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStorage("postgres", "failed to iterate links", err)
	}
	return links, nil
}

// WriteRecords updates the output columns for every stored link with an
// aggregate entry, batched inside one transaction.
func (s *Store) WriteRecords(ctx context.Context, records listing.Aggregate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.NewStorage("postgres", "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	sql := updateSQL()
	batch := &pgx.Batch{}
	for link, rec := range records {
		args := append(store.Values(rec), link)
		batch.Queue(sql, args...)
	}

	var updated int64
	results := tx.SendBatch(ctx, batch)
	for range records {
		ct, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return apperr.NewStorage("postgres", "failed to update row", err)
		}
		updated += ct.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return apperr.NewStorage("postgres", "failed to close batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.NewStorage("postgres", "failed to commit", err)
	}
	s.log.Info().
		Int("records", len(records)).
		Int64("rows", updated).
		Msg("Row store write-back completed")
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func updateSQL() string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(tableName)
	b.WriteString(" SET ")
	for i, column := range store.OutputColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = $%d", sqlIdent(column), i+1)
	}
	// Links trims the stored cells, so the aggregate is keyed by the
	// trimmed link; match the same way or padded cells never update.
	fmt.Fprintf(&b, " WHERE btrim(%s) = $%d", sqlIdent(store.ColumnLink), len(store.OutputColumns)+1)
	return b.String()
}

func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
