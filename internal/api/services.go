package api

import (
	"github.com/tarifflyapp/tariffly-server/internal/documents"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// Services holds the application services the handlers dispatch to.
// Documents is nil when object storage is not configured.
type Services struct {
	Auth           *service.AuthService
	Products       *service.ProductService
	Classification *service.ClassificationService
	LandedCost     *service.LandedCostService
	ESG            *service.ESGService
	Billing        *service.BillingService
	Documents      *documents.Service
}
