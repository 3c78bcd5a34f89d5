package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebaysync/internal/listing"
	apperr "ebaysync/pkg/errors"
)

// mockStore is an in-memory row store for testing
type mockStore struct {
	links      []string
	schemaErr  error
	written    listing.Aggregate
	writeCalls int
	linkCalls  int
}

func (m *mockStore) CheckSchema(_ context.Context) error {
	return m.schemaErr
}

func (m *mockStore) Links(_ context.Context) ([]string, error) {
	m.linkCalls++
	return m.links, nil
}

func (m *mockStore) WriteRecords(_ context.Context, records listing.Aggregate) error {
	m.writeCalls++
	m.written = records
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

// mockResolver counts calls and stamps each record's title with the call
// number, so tests can tell resolutions apart.
type mockResolver struct {
	calls int
}

func (m *mockResolver) Resolve(_ context.Context, link string) *listing.Record {
	m.calls++
	record := listing.NewRecord(link)
	title := fmt.Sprintf("resolution-%d", m.calls)
	record.Title = &title
	return record
}

// mockPublisher records the published links
type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(_ context.Context, record *listing.Record) error {
	m.published = append(m.published, record.Link)
	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}

func TestWorker_Run(t *testing.T) {
	st := &mockStore{links: []string{
		"https://example.com/itm/1",
		"https://example.com/itm/2",
	}}
	res := &mockResolver{}
	pub := &mockPublisher{}

	records, err := NewWorker(res, st, pub).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, 2, res.calls)
	assert.Equal(t, 1, st.writeCalls)
	assert.Equal(t, records, st.written)
	assert.Equal(t, st.links, pub.published)

	record := records["https://example.com/itm/1"]
	require.NotNil(t, record)
	assert.Equal(t, "https://example.com/itm/1", record.Link)
}

func TestWorker_SchemaMismatchAbortsBeforeResolving(t *testing.T) {
	st := &mockStore{
		links:     []string{"https://example.com/itm/1"},
		schemaErr: apperr.NewSchema("mock", "mpn"),
	}
	res := &mockResolver{}

	records, err := NewWorker(res, st, nil).Run(context.Background())

	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrorTypeSchema))
	assert.Contains(t, err.Error(), "mpn")
	assert.Nil(t, records)

	// the abort happens before any link is read or resolved
	assert.Equal(t, 0, st.linkCalls)
	assert.Equal(t, 0, res.calls)
	assert.Equal(t, 0, st.writeCalls)
}

func TestWorker_DuplicateLinkKeepsLastResolution(t *testing.T) {
	st := &mockStore{links: []string{
		"https://example.com/itm/1",
		"https://example.com/itm/2",
		"https://example.com/itm/1",
	}}
	res := &mockResolver{}

	records, err := NewWorker(res, st, nil).Run(context.Background())
	require.NoError(t, err)

	// one aggregate entry per link; the repeated link keeps its last
	// resolution (the third call)
	assert.Len(t, records, 2)
	assert.Equal(t, 3, res.calls)

	record := records["https://example.com/itm/1"]
	require.NotNil(t, record)
	require.NotNil(t, record.Title)
	assert.Equal(t, "resolution-3", *record.Title)
}

func TestWorker_NilPublisher(t *testing.T) {
	st := &mockStore{links: []string{"https://example.com/itm/1"}}

	_, err := NewWorker(&mockResolver{}, st, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.writeCalls)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 37))
	long := "https://example.com/itm/1234567890123456789012345678901234567890"
	assert.Len(t, truncate(long, 37), 37)
}
