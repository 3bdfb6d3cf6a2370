package service

import (
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testCreds() ShopCredentials {
	return ShopCredentials{ShopDomain: "demo.myshopify.com", AccessToken: "shpat_test"}
}

// testCatalogConfig uses the REST client with a tiny page size so pagination
// tests exercise multiple fetches without hundreds of fixtures.
func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		APIVersion:        "2024-10",
		PaginationStyle:   "offset",
		PageSize:          2,
		MaxPages:          10,
		RequestsPerSecond: 1000,
	}
}

func newTestLimiter(t *testing.T) *ratelimit.KeyedRateLimiter {
	t.Helper()
	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)
	return limiter
}

func newProductService(t *testing.T, baseURL string) *ProductService {
	t.Helper()
	svc := NewProductService(testCatalogConfig(), &http.Client{}, newTestLimiter(t), testLogger())
	if baseURL != "" {
		svc = svc.WithBaseURL(baseURL)
	}
	return svc
}
