// Package di provides dependency injection configuration for the Tariffly
// server.
package di

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tarifflyapp/tariffly-server/internal/auth"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/di/providers"
	"github.com/tarifflyapp/tariffly-server/internal/duties"
	"github.com/tarifflyapp/tariffly-server/internal/logger"
	"github.com/tarifflyapp/tariffly-server/internal/mail"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideHistory)

	// Outbound plumbing
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPClient)
	do.Provide(injector, providers.ProvideDutiesClient)
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideDocuments)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProductService)
	do.Provide(injector, providers.ProvideClassificationService)
	do.Provide(injector, providers.ProvideLandedCostService)
	do.Provide(injector, providers.ProvideESGService)
	do.Provide(injector, providers.ProvideBillingService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.HistoryHandle](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*http.Client](injector)
	_ = do.MustInvoke[*duties.Client](injector)
	_ = do.MustInvoke[*mail.Mailer](injector)
	_ = do.MustInvoke[*providers.DocumentsHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProductService](injector)
	_ = do.MustInvoke[*service.ClassificationService](injector)
	_ = do.MustInvoke[*service.LandedCostService](injector)
	_ = do.MustInvoke[*service.ESGService](injector)
	_ = do.MustInvoke[*service.BillingService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
