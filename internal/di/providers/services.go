package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/tarifflyapp/tariffly-server/internal/auth"
	"github.com/tarifflyapp/tariffly-server/internal/billing"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/documents"
	"github.com/tarifflyapp/tariffly-server/internal/duties"
	"github.com/tarifflyapp/tariffly-server/internal/logger"
	"github.com/tarifflyapp/tariffly-server/internal/mail"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// RateLimiterHandle wraps the per-shop rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the outbound rate limiter, keyed by shop
// domain so one busy shop never starves another.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Catalog.RequestsPerSecond, 2),
	}, nil
}

// ProvideHTTPClient provides the shared outbound HTTP client.
func ProvideHTTPClient(i do.Injector) (*http.Client, error) {
	return &http.Client{Timeout: 30 * time.Second}, nil
}

// ProvideProductService provides the catalog product service.
func ProvideProductService(i do.Injector) (*service.ProductService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	httpClient := do.MustInvoke[*http.Client](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProductService(cfg.Catalog, httpClient, limiter.KeyedRateLimiter, log.Logger), nil
}

// ProvideAuthService provides the operator account service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideDutiesClient provides the HS-code lookup provider client.
func ProvideDutiesClient(i do.Injector) (*duties.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return duties.New(cfg.Duties.BaseURL, cfg.Duties.APIKey, log.Logger), nil
}

// ProvideClassificationService provides the HS-code classification service.
func ProvideClassificationService(i do.Injector) (*service.ClassificationService, error) {
	products := do.MustInvoke[*service.ProductService](i)
	dutiesClient := do.MustInvoke[*duties.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewClassificationService(products, dutiesClient, storeHandle.Store, log.Logger), nil
}

// ProvideLandedCostService provides the landed cost estimation service.
func ProvideLandedCostService(i do.Injector) (*service.LandedCostService, error) {
	history := do.MustInvoke[*HistoryHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLandedCostService(history.Store, log.Logger), nil
}

// ProvideMailer provides the outbound mailer. All mail settings empty
// disables sending.
func ProvideMailer(i do.Injector) (*mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return mail.New(cfg.Mail, log.Logger), nil
}

// ProvideESGService provides the vendor sustainability service.
func ProvideESGService(i do.Injector) (*service.ESGService, error) {
	products := do.MustInvoke[*service.ProductService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[*mail.Mailer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewESGService(products, storeHandle.Store, mailer, log.Logger), nil
}

// ProvideBillingService provides the subscription billing service.
func ProvideBillingService(i do.Injector) (*service.BillingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	httpClient := do.MustInvoke[*http.Client](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	biller := billing.NewShopifyBiller(cfg.Billing)
	stripe := billing.NewStripeCheckout(cfg.Billing)
	if stripe == nil {
		log.Info("Stripe checkout disabled, no secret key configured")
	}

	return service.NewBillingService(cfg.Catalog, biller, stripe, storeHandle.Store, httpClient, limiter.KeyedRateLimiter, log.Logger), nil
}

// DocumentsHandle wraps the optional document storage service. Service is
// nil when no S3 bucket is configured.
type DocumentsHandle struct {
	Service *documents.Service
}

// ProvideDocuments provides the customs document storage service.
func ProvideDocuments(i do.Injector) (*DocumentsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Storage.Bucket == "" {
		log.Info("Document storage disabled, no S3 bucket configured")
		return &DocumentsHandle{}, nil
	}

	svc, err := documents.New(context.Background(), cfg.Storage, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Document storage ready", "bucket", cfg.Storage.Bucket, "prefix", cfg.Storage.KeyPrefix)

	return &DocumentsHandle{Service: svc}, nil
}
