package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/catalog"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// scriptedClient returns predefined pages in order and records fetch calls.
type scriptedClient struct {
	pages []catalog.Page
	errAt int // 1-based call index that fails; 0 means never
	calls int
}

func (c *scriptedClient) FetchPage(_ context.Context, _ string, pageSize int) (*catalog.Page, error) {
	c.calls++
	if c.errAt > 0 && c.calls == c.errAt {
		return nil, errors.RemoteFetch(502, "upstream exploded")
	}
	if c.calls > len(c.pages) {
		return &catalog.Page{}, nil
	}
	page := c.pages[c.calls-1]
	if len(page.Items) > pageSize {
		return nil, fmt.Errorf("page larger than requested size %d", pageSize)
	}
	return &page, nil
}

// makePage builds a full or partial page of n items with sequential IDs and
// a next token unless last.
func makePage(start, n int, tags []string, last bool) catalog.Page {
	page := catalog.Page{}
	for i := 0; i < n; i++ {
		page.Items = append(page.Items, domain.Product{
			ID:    strconv.Itoa(start + i),
			Title: "Item " + strconv.Itoa(start+i),
			Tags:  tags,
		})
	}
	if !last {
		page.NextToken = "cursor-" + strconv.Itoa(start+n)
	}
	return page
}

// loopingClient always returns a full page with a next token.
type loopingClient struct {
	calls int
}

func (c *loopingClient) FetchPage(_ context.Context, _ string, pageSize int) (*catalog.Page, error) {
	c.calls++
	page := makePage(c.calls*1000, pageSize, nil, false)
	return &page, nil
}

func TestCollect_TerminatesOnShortPage(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{
		makePage(0, 250, nil, false),
		makePage(250, 250, nil, false),
		makePage(500, 100, nil, false), // short page ends the run even with a token
	}}
	s := New(client, 250, 500, testLogger())

	items, err := s.Collect(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 3, client.calls, "must stop after the short page")
	assert.Len(t, items, 600)
}

func TestCollect_TerminatesOnEmptyPage(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{
		makePage(0, 250, nil, false),
		{}, // empty page
	}}
	s := New(client, 250, 500, testLogger())

	items, err := s.Collect(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Len(t, items, 250)
}

func TestCollect_TerminatesOnExhaustedToken(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{
		makePage(0, 250, nil, true), // full page, no next token
	}}
	s := New(client, 250, 500, testLogger())

	items, err := s.Collect(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Len(t, items, 250)
}

func TestCollect_SafetyBound(t *testing.T) {
	const maxPages = 7
	client := &loopingClient{}
	s := New(client, 250, maxPages, testLogger())

	_, err := s.Collect(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSyncIncomplete))
	assert.Equal(t, maxPages, client.calls, "must abort after exactly the bounded number of calls")
}

func TestCollect_AllOrNothingOnFailure(t *testing.T) {
	client := &scriptedClient{
		pages: []catalog.Page{makePage(0, 250, nil, false)},
		errAt: 2,
	}
	s := New(client, 250, 500, testLogger())

	items, err := s.Collect(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, items, "no partial results on failure")
	assert.True(t, errors.Is(err, errors.ErrRemoteFetch))
}

func TestCollect_StatusFilter(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{{
		Items: []domain.Product{
			{ID: "1", Tags: []string{"status_approved"}},
			{ID: "2", Tags: []string{"status_pending"}},
			{ID: "3", Tags: nil}, // no status tag counts as pending
			{ID: "4", Tags: []string{"status_modified"}},
		},
	}}}
	s := New(client, 250, 500, testLogger())

	approved, err := s.Collect(context.Background(), "approved")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "1", approved[0].Product.ID)

	client.calls = 0
	pending, err := s.Collect(context.Background(), "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	client.calls = 0
	all, err := s.Collect(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCount_FilteredCountOnly(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{{
		Items: []domain.Product{
			{ID: "1", Tags: []string{"status_approved"}},
			{ID: "2"},
			{ID: "3", Tags: []string{"status_pending"}},
		},
	}}}
	s := New(client, 250, 500, testLogger())

	count, err := s.Count(context.Background(), "pending")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSearch_TermOverTitleDescriptionAndCode(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{{
		Items: []domain.Product{
			{ID: "1", Title: "Blue Shirt"},
			{ID: "2", Title: "Red Hat", Tags: []string{"code_1234"}},
			{ID: "3", Title: "Socks", BodyHTML: "<p>Contains 1236 fibers</p>"},
		},
	}}}
	s := New(client, 250, 500, testLogger())

	items, total, err := s.Search(context.Background(), "", "123", 20)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].Product.ID)
	assert.Equal(t, "3", items[1].Product.ID)
}

func TestSearch_CapsResultsButCountsAll(t *testing.T) {
	page := catalog.Page{}
	for i := 0; i < 30; i++ {
		page.Items = append(page.Items, domain.Product{
			ID:    strconv.Itoa(i),
			Title: "Widget " + strconv.Itoa(i),
		})
	}
	client := &scriptedClient{pages: []catalog.Page{page}}
	s := New(client, 250, 500, testLogger())

	items, total, err := s.Search(context.Background(), "", "widget", 20)

	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, 30, total)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	client := &scriptedClient{pages: []catalog.Page{{
		Items: []domain.Product{{ID: "1", Title: "ORGANIC Cotton Tee"}},
	}}}
	s := New(client, 250, 500, testLogger())

	items, total, err := s.Search(context.Background(), "", "organic", 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
}
