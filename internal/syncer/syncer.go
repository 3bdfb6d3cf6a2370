// Package syncer drives full-collection retrieval against the remote
// catalog. It repeatedly fetches pages, decodes classification metadata per
// item, applies an optional status filter, and accumulates a complete result
// set. Three output modes share one loop: full item list, count only, and
// search-narrowed list.
package syncer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tarifflyapp/tariffly-server/internal/catalog"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/htmltext"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// Item is one catalog product paired with its decoded metadata. Accumulated
// results are owned exclusively by the call that produced them.
type Item struct {
	Product domain.Product
	Meta    tagmeta.Metadata
}

// Syncer runs the pagination loop. One Syncer is constructed per request;
// it holds no state across calls.
type Syncer struct {
	client   catalog.Client
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// New creates a Syncer. pageSize is requested on every fetch and is capped
// by the client; maxPages is the safety bound on fetch calls per run.
func New(client catalog.Client, pageSize, maxPages int, logger *slog.Logger) *Syncer {
	return &Syncer{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Collect retrieves the full collection and returns every item passing the
// status filter. Any fetch error aborts the whole run; partial results are
// never returned.
func (s *Syncer) Collect(ctx context.Context, filter string) ([]Item, error) {
	var items []Item
	err := s.run(ctx, filter, func(it Item) {
		items = append(items, it)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Count retrieves the full collection and returns only the number of items
// passing the status filter.
func (s *Syncer) Count(ctx context.Context, filter string) (int, error) {
	count := 0
	err := s.run(ctx, filter, func(Item) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Search retrieves the full collection, keeps items passing the status
// filter whose title, stripped description, or decoded code contains term
// (case-insensitive), and returns at most limit items. The returned total is
// the number of matches before capping. limit <= 0 means no cap.
func (s *Syncer) Search(ctx context.Context, filter, term string, limit int) ([]Item, int, error) {
	term = strings.ToLower(strings.TrimSpace(term))

	var items []Item
	total := 0
	err := s.run(ctx, filter, func(it Item) {
		if term != "" && !matchesTerm(it, term) {
			return
		}
		total++
		if limit <= 0 || len(items) < limit {
			items = append(items, it)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// run is the shared pagination loop. Termination: empty page, short page
// (even when a next token was returned), or exhausted token. A run that
// exceeds the page bound without terminating fails with a sync incomplete
// error; pages are always fetched strictly in order.
func (s *Syncer) run(ctx context.Context, filter string, emit func(Item)) error {
	token := ""
	for page := 0; ; page++ {
		if page >= s.maxPages {
			s.logger.Error("catalog sync exceeded page bound",
				"max_pages", s.maxPages,
				"filter", filter,
			)
			return errors.SyncIncomplete(s.maxPages)
		}

		result, err := s.client.FetchPage(ctx, token, s.pageSize)
		if err != nil {
			return err
		}

		for _, product := range result.Items {
			it := Item{Product: product, Meta: tagmeta.Decode(product.Tags)}
			if tagmeta.Matches(it.Meta, filter) {
				emit(it)
			}
		}

		if len(result.Items) == 0 || len(result.Items) < s.pageSize || result.NextToken == "" {
			return nil
		}
		token = result.NextToken
	}
}

// matchesTerm reports whether term occurs in the item's title, stripped
// description, or decoded code.
func matchesTerm(it Item, term string) bool {
	if strings.Contains(strings.ToLower(it.Product.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(htmltext.Strip(it.Product.BodyHTML)), term) {
		return true
	}
	if it.Meta.Code != nil && strings.Contains(strings.ToLower(*it.Meta.Code), term) {
		return true
	}
	return false
}
