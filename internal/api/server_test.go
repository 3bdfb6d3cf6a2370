package api

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/auth"
	"github.com/tarifflyapp/tariffly-server/internal/billing"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/duties"
	"github.com/tarifflyapp/tariffly-server/internal/mail"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/service"
	"github.com/tarifflyapp/tariffly-server/internal/store"
	"github.com/tarifflyapp/tariffly-server/internal/store/sqlite"
)

// 32 bytes hex-encoded, fixed so tokens are reproducible across the test run.
const testTokenKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// newBackend fakes the Admin REST API with a two-page catalog. Page one
// holds an approved and a pending product, page two a pending one.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "shpat_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/api/2024-10/products.json":
			switch r.URL.Query().Get("since_id") {
			case "":
				fmt.Fprint(w, `{"products":[
					{"id":101,"title":"Alpha Shirt","vendor":"Nike","tags":"eco, code_6109, status_approved","variants":[{"price":"19.99"}]},
					{"id":102,"title":"Beta Hat","tags":"status_pending"}
				]}`)
			case "102":
				fmt.Fprint(w, `{"products":[{"id":103,"title":"Gamma Socks","tags":""}]}`)
			default:
				fmt.Fprint(w, `{"products":[]}`)
			}
		case r.Method == http.MethodGet && r.URL.Path == "/admin/api/2024-10/products/101.json":
			fmt.Fprint(w, `{"product":{"id":101,"title":"Alpha Shirt","vendor":"Nike","tags":"eco, code_6109, status_approved"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":"Not Found"}`)
		}
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// setupTestServer wires the full stack against a fake catalog backend and
// returns the server plus a humatest API for driving it.
func setupTestServer(t *testing.T) (*Server, humatest.TestAPI) {
	t.Helper()

	backend := newBackend(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	history, err := sqlite.Open(filepath.Join(t.TempDir(), "calculations.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	tokens, err := auth.NewTokenService(testTokenKeyHex, time.Hour)
	require.NoError(t, err)

	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)

	catalogCfg := config.CatalogConfig{
		APIVersion:        "2024-10",
		PaginationStyle:   "offset",
		PageSize:          2,
		MaxPages:          10,
		RequestsPerSecond: 1000,
	}

	products := service.NewProductService(catalogCfg, &http.Client{}, limiter, logger).WithBaseURL(backend.URL)
	biller := billing.NewShopifyBiller(config.BillingConfig{ShopifyTest: true, ReturnURL: "https://app.example.com/billing/return"})

	services := &Services{
		Auth:           service.NewAuthService(st, tokens, logger),
		Products:       products,
		Classification: service.NewClassificationService(products, duties.New(backend.URL, "test-key", logger), st, logger),
		LandedCost:     service.NewLandedCostService(history, logger),
		ESG:            service.NewESGService(products, st, mail.New(config.MailConfig{}, logger), logger),
		Billing:        service.NewBillingService(catalogCfg, biller, nil, st, &http.Client{}, limiter, logger).WithBaseURL(backend.URL),
		Documents:      nil,
	}

	cfg := &config.Config{Server: config.ServerConfig{Name: "Tariffly Test"}}
	s := NewServer(cfg, st, services, logger)
	t.Cleanup(s.Close)

	return s, humatest.Wrap(t, s.api)
}

// decodeEnvelope parses a recorded response body into the envelope map.
func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestListProducts_ApprovedFilterEndToEnd(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/list", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"filter":     "approved",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope(t, resp.Body.Bytes())
	assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])

	items := data["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	product := item["product"].(map[string]any)
	assert.Equal(t, "101", product["id"])
	metadata := item["metadata"].(map[string]any)
	assert.Equal(t, "approved", metadata["status"])
	assert.Equal(t, "6109", metadata["code"])
}

func TestListProducts_NoFilterWalksBothPages(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/list", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.Equal(t, float64(3), data["count"])
}

func TestCountProducts_NoFilterDefaultsToPending(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/count", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	// Beta Hat is tagged pending and Gamma Socks carries no status tag, so
	// both count as pending. Alpha Shirt is approved and stays out.
	assert.Equal(t, float64(2), data["count"])
}

func TestCountProducts_ExplicitFilter(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/count", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"filter":     "approved",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
}

func TestListProducts_MissingCredentialRejected(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/list", map[string]any{
		"shop": "demo.myshopify.com",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decodeEnvelope(t, resp.Body.Bytes())
	assert.Equal(t, false, envelope["success"])
}

func TestListProducts_BadTokenMapsToUpstreamError(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/list", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_wrong",
	})

	// An upstream 401 means our caller's credential is bad, not ours.
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestWrongMethodGets405WithAllow(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/list", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodPost)
}

func TestSearchProducts(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/search", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"term":       "alpha",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
}

func TestGetProduct_DecodesMetadata(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/get", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"product_id": "gid://shopify/Product/101",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	product := data["product"].(map[string]any)
	assert.Equal(t, "101", product["id"])
	metadata := data["metadata"].(map[string]any)
	assert.Equal(t, "6109", metadata["code"])
}

func TestGetProduct_NotFoundEnvelope(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/products/get", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"product_id": "999",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	envelope := decodeEnvelope(t, resp.Body.Bytes())
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
}

func TestHealth(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Get("/api/v1/health")

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, Version, data["version"])
}

func TestLandedCostCalculate(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/landed-cost/calculate", map[string]any{
		"shop":          "demo.myshopify.com",
		"destination":   "GB",
		"product_value": 100,
		"quantity":      2,
		"shipping_cost": 10,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	estimate := data["estimate"].(map[string]any)
	assert.InDelta(t, 263.28, estimate["total_landed_cost"].(float64), 0.001)

	history := api.Post("/api/v1/landed-cost/history", map[string]any{
		"shop": "demo.myshopify.com",
	})
	require.Equal(t, http.StatusOK, history.Code)
	rows := decodeEnvelope(t, history.Body.Bytes())["data"].(map[string]any)["calculations"].([]any)
	assert.Len(t, rows, 1)
}

func TestLandedCostCountries(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Get("/api/v1/landed-cost/countries")

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.Len(t, data["countries"].([]any), 7)
}

func TestBillingPlans(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Get("/api/v1/billing/plans")

	require.Equal(t, http.StatusOK, resp.Code)
	plans := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)["plans"].([]any)
	require.Len(t, plans, 3)
	assert.Equal(t, "Starter", plans[0].(map[string]any)["name"])
}

func TestBillingSubscribe_RequiresAuth(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/billing/subscribe", map[string]any{
		"shop":       "demo.myshopify.com",
		"credential": "shpat_test",
		"plan":       "starter",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDocumentsUnconfigured(t *testing.T) {
	_, api := setupTestServer(t)
	token := signupAndToken(t, api)

	resp := api.Post("/api/v1/documents/upload",
		"Authorization: Bearer "+token,
		map[string]any{
			"shop":    "demo.myshopify.com",
			"payload": "JVBERi0=",
		})

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	envelope := decodeEnvelope(t, resp.Body.Bytes())
	assert.Contains(t, envelope["error"], "not configured")
}

func TestESGGet_NotFound(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Post("/api/v1/esg/get", map[string]any{
		"shop":       "demo.myshopify.com",
		"product_id": "999",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
