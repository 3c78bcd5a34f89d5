// Package sqlite implements the row store on a local SQLite database.
// The listings table mirrors the sheet layout: one row per listing with
// the link column plus the eight output columns, addressed by name.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"ebaysync/internal/listing"
	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
	"ebaysync/services/store"
)

const tableName = "listings"

func init() {
	store.Register("sqlite", New)
}

// Store is the SQLite-backed row store.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// New opens the database at cfg.DSN.
func New(ctx context.Context, cfg store.Config) (store.RowStore, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, apperr.NewStorage("sqlite", "failed to open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.NewStorage("sqlite", "failed to ping database", err)
	}
	return &Store{db: db, log: logger.ForStore("sqlite")}, nil
}

// CheckSchema verifies every required column against the table definition.
func (s *Store) CheckSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, tableName)
	if err != nil {
		return apperr.NewStorage("sqlite", "failed to read table info", err)
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return apperr.NewStorage("sqlite", "failed to scan column name", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return apperr.NewStorage("sqlite", "failed to iterate table info", err)
	}

	for _, column := range store.RequiredColumns() {
		if !present[column] {
			return apperr.NewSchema("sqlite", column)
		}
	}
	return nil
}

// Links returns the non-empty link cells in rowid order.
func (s *Store) Links(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE TRIM(%s) <> '' ORDER BY rowid`,
		sqlIdent(store.ColumnLink), tableName, sqlIdent(store.ColumnLink))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, apperr.NewStorage("sqlite", "failed to read links", err)
	}
	defer rows.Close()

	var links []string
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, apperr.NewStorage("sqlite", "failed to scan link", err)
		}
		links = append(links, strings.TrimSpace(link))
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStorage("sqlite", "failed to iterate links", err)
	}
	return links, nil
}

// WriteRecords updates the output columns for every stored link with an
// aggregate entry, in one transaction. Links without a row update nothing
// and are skipped silently.
func (s *Store) WriteRecords(ctx context.Context, records listing.Aggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewStorage("sqlite", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, updateSQL())
	if err != nil {
		return apperr.NewStorage("sqlite", "failed to prepare update", err)
	}
	defer stmt.Close()

	var updated int64
	for link, rec := range records {
		args := append(store.Values(rec), link)
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return apperr.NewStorage("sqlite", "failed to update row for "+link, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += n
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.NewStorage("sqlite", "failed to commit", err)
	}
	s.log.Info().
		Int("records", len(records)).
		Int64("rows", updated).
		Msg("Row store write-back completed")
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
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
		b.WriteString(sqlIdent(column))
		b.WriteString(" = ?")
	}
	// Links trims the stored cells, so the aggregate is keyed by the
	// trimmed link; match the same way or padded cells never update.
	b.WriteString(" WHERE TRIM(")
	b.WriteString(sqlIdent(store.ColumnLink))
	b.WriteString(") = ?")
	return b.String()
}

// sqlIdent quotes a column name; "shipping price" and "delivery time"
// carry spaces.
func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
