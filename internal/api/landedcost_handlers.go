package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/landedcost"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// CalculateInput estimates the landed cost of importing a product.
type CalculateInput struct {
	Body struct {
		ShopOnly
		Destination   string  `json:"destination" minLength:"2" maxLength:"2" doc:"ISO 3166-1 alpha-2 destination country"`
		ProductValue  float64 `json:"product_value" doc:"Unit value in the shop currency"`
		ShippingCost  float64 `json:"shipping_cost,omitempty" minimum:"0"`
		Quantity      int     `json:"quantity,omitempty" minimum:"0" doc:"Defaults to 1"`
		MarginPercent float64 `json:"margin_percent,omitempty" minimum:"0"`
		ProductID     string  `json:"product_id,omitempty" doc:"Recorded with the history row"`
		HSCode        string  `json:"hs_code,omitempty" doc:"Recorded with the history row"`
	}
}

// CalculateOutput returns the estimate. The warning is set when the history
// row could not be written; the estimate itself is never withheld.
type CalculateOutput struct {
	Body struct {
		Estimate *landedcost.Estimate `json:"estimate"`
		Warning  string               `json:"warning,omitempty"`
	}
}

// CalculationHistoryInput lists a shop's recent calculations.
type CalculationHistoryInput struct {
	Body struct {
		ShopOnly
		Limit int `json:"limit,omitempty" minimum:"0" maximum:"500"`
	}
}

// CalculationHistoryOutput returns history rows, newest first.
type CalculationHistoryOutput struct {
	Body struct {
		Calculations []*domain.Calculation `json:"calculations"`
	}
}

// CalculationStatsOutput aggregates a shop's calculation history.
type CalculationStatsOutput struct {
	Body struct {
		Stats *domain.CalculationStats `json:"stats"`
	}
}

// CountriesOutput lists the destinations with duty and VAT tables.
type CountriesOutput struct {
	Body struct {
		Countries []string `json:"countries"`
	}
}

// registerLandedCostRoutes registers the landed cost estimation endpoints.
func (s *Server) registerLandedCostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "landed-cost-calculate",
		Method:      http.MethodPost,
		Path:        "/api/v1/landed-cost/calculate",
		Summary:     "Calculate landed cost",
		Description: "Estimates duty and VAT for a destination country and appends the result to the shop's history.",
		Tags:        []string{"LandedCost"},
	}, func(ctx context.Context, input *CalculateInput) (*CalculateOutput, error) {
		result, err := s.services.LandedCost.Calculate(ctx, input.Body.Shop, service.CalculateRequest{
			Destination:   input.Body.Destination,
			ProductValue:  input.Body.ProductValue,
			ShippingCost:  input.Body.ShippingCost,
			Quantity:      input.Body.Quantity,
			MarginPercent: input.Body.MarginPercent,
			ProductID:     input.Body.ProductID,
			HSCode:        input.Body.HSCode,
		})
		if err != nil {
			return nil, huma.Error400BadRequest("Calculation failed", err)
		}
		resp := &CalculateOutput{}
		resp.Body.Estimate = result.Estimate
		resp.Body.Warning = result.Warning
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "landed-cost-history",
		Method:      http.MethodPost,
		Path:        "/api/v1/landed-cost/history",
		Summary:     "Calculation history",
		Tags:        []string{"LandedCost"},
	}, func(ctx context.Context, input *CalculationHistoryInput) (*CalculationHistoryOutput, error) {
		rows, err := s.services.LandedCost.History(ctx, input.Body.Shop, input.Body.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("Loading history failed", err)
		}
		resp := &CalculationHistoryOutput{}
		resp.Body.Calculations = rows
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "landed-cost-stats",
		Method:      http.MethodPost,
		Path:        "/api/v1/landed-cost/stats",
		Summary:     "Calculation statistics",
		Tags:        []string{"LandedCost"},
	}, func(ctx context.Context, input *struct{ Body ShopOnly }) (*CalculationStatsOutput, error) {
		stats, err := s.services.LandedCost.Stats(ctx, input.Body.Shop)
		if err != nil {
			return nil, huma.Error500InternalServerError("Loading stats failed", err)
		}
		resp := &CalculationStatsOutput{}
		resp.Body.Stats = stats
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "landed-cost-countries",
		Method:      http.MethodGet,
		Path:        "/api/v1/landed-cost/countries",
		Summary:     "Supported destinations",
		Tags:        []string{"LandedCost"},
	}, func(_ context.Context, _ *struct{}) (*CountriesOutput, error) {
		resp := &CountriesOutput{}
		resp.Body.Countries = s.services.LandedCost.SupportedCountries()
		return resp, nil
	})
}
