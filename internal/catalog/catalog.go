// Package catalog provides clients for the remote shop Admin API. Two page
// client implementations cover the two wire styles the API exposes: cursor
// pagination over GraphQL and since-id pagination over REST. Both yield the
// same normalized Page so callers never branch on the style.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
)

// MaxPageSize is the hard per-page ceiling imposed by the Admin API.
const MaxPageSize = 250

// requestTimeout bounds each remote page fetch independently of the
// surrounding request.
const requestTimeout = 30 * time.Second

// Page is one page of catalog items. An empty NextToken means the listing is
// exhausted; callers also treat an empty or short page as end-of-collection.
type Page struct {
	Items     []domain.Product
	NextToken string
}

// Client fetches one page of catalog items at a time. Implementations are
// bound to a single shop and credential, perform no retries, and never
// mutate caller state.
type Client interface {
	FetchPage(ctx context.Context, pageToken string, pageSize int) (*Page, error)
}

// NewHTTPClient returns the process-wide transport for Admin API calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// NewPageClient returns the page client for the configured pagination style.
// Config validation guarantees the style is one of cursor/offset.
func NewPageClient(cfg config.CatalogConfig, httpClient *http.Client, limiter *ratelimit.KeyedRateLimiter, shop, credential string) Client {
	if cfg.PaginationStyle == "offset" {
		return NewRESTClient(httpClient, limiter, cfg.APIVersion, shop, credential)
	}
	return NewGraphQLClient(httpClient, limiter, cfg.APIVersion, shop, credential)
}

// checkPageSize validates the requested page size against the API ceiling.
func checkPageSize(pageSize int) error {
	if pageSize < 1 || pageSize > MaxPageSize {
		return errors.Validationf("page size %d out of range 1-%d", pageSize, MaxPageSize)
	}
	return nil
}
