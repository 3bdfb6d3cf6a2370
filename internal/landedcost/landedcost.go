// Package landedcost estimates the total landed cost of shipping a product
// to a destination country: product value plus import duty, VAT, shipping
// and an optional margin.
package landedcost

import (
	"math"
	"strings"

	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

// dutyRates holds import duty percentages by destination country.
var dutyRates = map[string]float64{
	"US": 3.5,
	"GB": 4.7,
	"DE": 5.1,
	"FR": 5.3,
	"CA": 4.2,
	"AU": 5.0,
	"JP": 6.1,
}

const defaultDutyRate = 5.0

// vatRates holds VAT/GST percentages by destination country.
var vatRates = map[string]float64{
	"US": 0,
	"GB": 20,
	"DE": 19,
	"FR": 20,
	"CA": 5,
	"AU": 10,
	"JP": 10,
}

const defaultVATRate = 15

// Input describes one estimate request.
type Input struct {
	Destination   string  // ISO 3166-1 alpha-2
	ProductValue  float64 // unit value
	ShippingCost  float64
	Quantity      int
	MarginPercent float64
}

// Estimate is the computed landed cost breakdown.
type Estimate struct {
	Destination     string  `json:"destination"`
	Subtotal        float64 `json:"subtotal"`
	DutyRate        float64 `json:"duty_rate"`
	DutyAmount      float64 `json:"duty_amount"`
	VATRate         float64 `json:"vat_rate"`
	VATAmount       float64 `json:"vat_amount"`
	ShippingCost    float64 `json:"shipping_cost"`
	MarginAmount    float64 `json:"margin_amount,omitempty"`
	TotalLandedCost float64 `json:"total_landed_cost"`
}

// Calculate computes the landed cost for the given input. Duty applies to
// the product subtotal; VAT applies to subtotal plus duty plus shipping.
func Calculate(in Input) (*Estimate, error) {
	if in.ProductValue <= 0 {
		return nil, errors.Validation("product value must be positive")
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	if in.ShippingCost < 0 {
		return nil, errors.Validation("shipping cost cannot be negative")
	}

	dest := strings.ToUpper(strings.TrimSpace(in.Destination))
	if len(dest) != 2 {
		return nil, errors.Validation("destination must be a two-letter country code")
	}

	dutyRate, ok := dutyRates[dest]
	if !ok {
		dutyRate = defaultDutyRate
	}
	vatRate, ok := vatRates[dest]
	if !ok {
		vatRate = defaultVATRate
	}

	subtotal := in.ProductValue * float64(in.Quantity)
	duty := subtotal * dutyRate / 100
	vatBase := subtotal + duty + in.ShippingCost
	vat := vatBase * vatRate / 100

	total := subtotal + duty + vat + in.ShippingCost
	var margin float64
	if in.MarginPercent > 0 {
		margin = total * in.MarginPercent / 100
		total += margin
	}

	return &Estimate{
		Destination:     dest,
		Subtotal:        round2(subtotal),
		DutyRate:        dutyRate,
		DutyAmount:      round2(duty),
		VATRate:         vatRate,
		VATAmount:       round2(vat),
		ShippingCost:    round2(in.ShippingCost),
		MarginAmount:    round2(margin),
		TotalLandedCost: round2(total),
	}, nil
}

// SupportedCountries lists the destinations with explicit rate entries.
func SupportedCountries() []string {
	return []string{"US", "GB", "DE", "FR", "CA", "AU", "JP"}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
