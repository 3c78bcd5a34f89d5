// Package csvfile implements the row store on a local CSV file, the
// spreadsheet analog for development runs and tests. The first row is the
// header; columns are resolved by header name.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ebaysync/internal/listing"
	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
	"ebaysync/services/store"
)

func init() {
	store.Register("csv", New)
}

// Store holds the parsed CSV content in memory; WriteRecords rewrites the
// whole file in one pass, matching the row store's batch-write contract.
type Store struct {
	path    string
	headers []string
	rows    [][]string
	index   map[string]int
	log     *logger.Logger
}

// New reads and parses the CSV file at cfg.DSN.
func New(_ context.Context, cfg store.Config) (store.RowStore, error) {
	f, err := os.Open(cfg.DSN)
	if err != nil {
		return nil, apperr.NewStorage("csv", "failed to open file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.NewStorage("csv", "failed to parse file", err)
	}
	if len(all) == 0 {
		return nil, apperr.NewStorage("csv", "file has no header row", nil)
	}

	headers := all[0]
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}

	return &Store{
		path:    cfg.DSN,
		headers: headers,
		rows:    all[1:],
		index:   index,
		log:     logger.ForStore("csv"),
	}, nil
}

// CheckSchema verifies every required column against the header row.
func (s *Store) CheckSchema(_ context.Context) error {
	for _, column := range store.RequiredColumns() {
		if _, ok := s.index[column]; !ok {
			return apperr.NewSchema("csv", column)
		}
	}
	return nil
}

// Links returns the non-empty link cells in file order.
func (s *Store) Links(_ context.Context) ([]string, error) {
	linkIdx, ok := s.index[store.ColumnLink]
	if !ok {
		return nil, apperr.NewSchema("csv", store.ColumnLink)
	}

	var links []string
	for _, row := range s.rows {
		if linkIdx >= len(row) {
			continue
		}
		link := strings.TrimSpace(row[linkIdx])
		if link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

// WriteRecords fills the output cells for every row whose link has an
// aggregate entry and rewrites the file atomically.
func (s *Store) WriteRecords(_ context.Context, records listing.Aggregate) error {
	linkIdx, ok := s.index[store.ColumnLink]
	if !ok {
		return apperr.NewSchema("csv", store.ColumnLink)
	}

	width := len(s.headers)
	updated := 0
	for i, row := range s.rows {
		if linkIdx >= len(row) {
			continue
		}
		rec, ok := records[strings.TrimSpace(row[linkIdx])]
		if !ok {
			continue
		}

		// Pad short rows so every output column has a cell.
		for len(row) < width {
			row = append(row, "")
		}
		values := store.Values(rec)
		for j, column := range store.OutputColumns {
			row[s.index[column]] = cellString(values[j])
		}
		s.rows[i] = row
		updated++
	}

	if err := s.flush(); err != nil {
		return err
	}
	s.log.Info().
		Int("records", len(records)).
		Int("rows", updated).
		Msg("Row store write-back completed")
	return nil
}

func (s *Store) Close() error {
	return nil
}

// flush rewrites the file through a temp file plus rename, so a crashed
// write never leaves a half-written store behind.
func (s *Store) flush() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return apperr.NewStorage("csv", "failed to create temp file", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(s.headers); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.NewStorage("csv", "failed to write header row", err)
	}
	if err := writer.WriteAll(s.rows); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.NewStorage("csv", "failed to write rows", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.NewStorage("csv", "failed to flush rows", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.NewStorage("csv", "failed to close temp file", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperr.NewStorage("csv", "failed to replace file", err)
	}
	return nil
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
