package service

import (
	"context"
	"log/slog"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/landedcost"
	"github.com/tarifflyapp/tariffly-server/internal/store/sqlite"
)

// LandedCostService computes landed-cost estimates and keeps an append-only
// history with SQL-side stats.
type LandedCostService struct {
	history *sqlite.Store
	logger  *slog.Logger
}

// NewLandedCostService creates a new landed cost service.
func NewLandedCostService(history *sqlite.Store, logger *slog.Logger) *LandedCostService {
	return &LandedCostService{history: history, logger: logger}
}

// CalculateRequest is one estimate request.
type CalculateRequest struct {
	Destination   string  `json:"destination" validate:"required,len=2"`
	ProductValue  float64 `json:"product_value" validate:"required,gt=0"`
	ShippingCost  float64 `json:"shipping_cost" validate:"gte=0"`
	Quantity      int     `json:"quantity"`
	MarginPercent float64 `json:"margin_percent" validate:"gte=0"`
	ProductID     string  `json:"product_id,omitempty"`
	HSCode        string  `json:"hs_code,omitempty"`
}

// CalculateResult carries the estimate plus a warning when history
// persistence failed. The estimate itself is never withheld.
type CalculateResult struct {
	Estimate *landedcost.Estimate `json:"estimate"`
	Warning  string               `json:"warning,omitempty"`
}

// Calculate computes an estimate and appends it to the shop's history.
func (s *LandedCostService) Calculate(ctx context.Context, shopDomain string, req CalculateRequest) (*CalculateResult, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	est, err := landedcost.Calculate(landedcost.Input{
		Destination:   req.Destination,
		ProductValue:  req.ProductValue,
		ShippingCost:  req.ShippingCost,
		Quantity:      req.Quantity,
		MarginPercent: req.MarginPercent,
	})
	if err != nil {
		return nil, err
	}

	// History rows record the effective quantity.
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	result := &CalculateResult{Estimate: est}

	calc := &domain.Calculation{
		ShopDomain:      shopDomain,
		ProductID:       domain.NormalizeProductID(req.ProductID),
		HSCode:          req.HSCode,
		Destination:     est.Destination,
		ProductValue:    req.ProductValue,
		ShippingCost:    req.ShippingCost,
		Quantity:        req.Quantity,
		DutyRate:        est.DutyRate,
		DutyAmount:      est.DutyAmount,
		VATRate:         est.VATRate,
		VATAmount:       est.VATAmount,
		MarginPercent:   req.MarginPercent,
		TotalLandedCost: est.TotalLandedCost,
	}
	if err := s.history.SaveCalculation(ctx, calc); err != nil {
		s.logger.Warn("Failed to persist calculation", "shop", shopDomain, "error", err)
		result.Warning = persistWarning
	}

	return result, nil
}

// History returns a shop's recent calculations, newest first.
func (s *LandedCostService) History(ctx context.Context, shopDomain string, limit int) ([]*domain.Calculation, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	return s.history.ListCalculations(ctx, shopDomain, limit)
}

// Stats aggregates a shop's calculation history.
func (s *LandedCostService) Stats(ctx context.Context, shopDomain string) (*domain.CalculationStats, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	return s.history.GetCalculationStats(ctx, shopDomain)
}

// SupportedCountries lists destinations with explicit duty and VAT rates.
func (s *LandedCostService) SupportedCountries() []string {
	return landedcost.SupportedCountries()
}
