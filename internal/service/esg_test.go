package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/mail"
	"github.com/tarifflyapp/tariffly-server/internal/store"
)

func newESGFixture(t *testing.T) (*ESGService, *store.Store) {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/api/2024-10/products/101.json":
			fmt.Fprint(w, `{"product":{"id":101,"title":"Alpha Shirt","vendor":"Nike"}}`)
		case "/admin/api/2024-10/products/102.json":
			fmt.Fprint(w, `{"product":{"id":102,"title":"Beta Hat","vendor":"Obscure Brand Co"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	st := newTestStore(t)
	products := newProductService(t, server.URL)
	mailer := mail.New(config.MailConfig{}, testLogger()) // disabled
	return NewESGService(products, st, mailer, testLogger()), st
}

func TestScore_KnownVendor(t *testing.T) {
	svc, st := newESGFixture(t)
	ctx := context.Background()

	result, err := svc.Score(ctx, testCreds(), "101")

	require.NoError(t, err)
	assert.Empty(t, result.Warning)

	score := result.Score
	require.NotNil(t, score)
	assert.Equal(t, "Nike", score.Vendor)
	assert.Equal(t, "NKE", score.VendorSymbol)
	assert.InDelta(t, 61.2, score.Overall, 0.001)
	assert.Equal(t, domain.ESGRiskMedium, score.RiskLevel)

	stored, err := st.GetESGScoreForProduct(ctx, "101", "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "NKE", stored.VendorSymbol)
}

func TestScore_UnknownVendorGetsNeutralProfile(t *testing.T) {
	svc, _ := newESGFixture(t)

	result, err := svc.Score(context.Background(), testCreds(), "102")

	require.NoError(t, err)
	score := result.Score
	assert.Empty(t, score.VendorSymbol)
	assert.InDelta(t, 55.0, score.Overall, 0.001)
	assert.Equal(t, domain.ESGRiskMedium, score.RiskLevel)
}

func TestGetScore(t *testing.T) {
	svc, _ := newESGFixture(t)
	ctx := context.Background()

	_, err := svc.Score(ctx, testCreds(), "101")
	require.NoError(t, err)

	score, err := svc.GetScore(ctx, "demo.myshopify.com", "gid://shopify/Product/101")
	require.NoError(t, err)
	assert.Equal(t, "101", score.ProductID)

	_, err = svc.GetScore(ctx, "demo.myshopify.com", "999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = svc.GetScore(ctx, "", "101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSummary(t *testing.T) {
	svc, _ := newESGFixture(t)
	ctx := context.Background()

	_, err := svc.Score(ctx, testCreds(), "101")
	require.NoError(t, err)
	_, err = svc.Score(ctx, testCreds(), "102")
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scored)
	assert.Equal(t, 2, summary.MediumRisk)
	assert.Equal(t, 0, summary.LowRisk)
	assert.Equal(t, 0, summary.HighRisk)
	assert.InDelta(t, 58.1, summary.AvgOverall, 0.001)
	assert.NotEmpty(t, summary.LastUpdated)

	empty, err := svc.Summary(ctx, "other.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Scored)
}

func TestContact_Validation(t *testing.T) {
	svc, _ := newESGFixture(t)
	ctx := context.Background()

	err := svc.Contact(ctx, testCreds(), ContactRequest{VendorEmail: "vendor@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_id")

	err = svc.Contact(ctx, testCreds(), ContactRequest{ProductID: "101", VendorEmail: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// Mail is not configured in this fixture; a valid request surfaces that.
	err = svc.Contact(ctx, testCreds(), ContactRequest{ProductID: "101", VendorEmail: "vendor@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail is not configured")
}
