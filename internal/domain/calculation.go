package domain

import "time"

// Calculation is one landed-cost estimate kept in the history store.
type Calculation struct {
	ID              string    `json:"id"`
	ShopDomain      string    `json:"shop_domain"`
	ProductID       string    `json:"product_id,omitempty"`
	HSCode          string    `json:"hs_code,omitempty"`
	Destination     string    `json:"destination"` // ISO 3166-1 alpha-2
	ProductValue    float64   `json:"product_value"`
	ShippingCost    float64   `json:"shipping_cost"`
	Quantity        int       `json:"quantity"`
	DutyRate        float64   `json:"duty_rate"` // percent
	DutyAmount      float64   `json:"duty_amount"`
	VATRate         float64   `json:"vat_rate"` // percent
	VATAmount       float64   `json:"vat_amount"`
	MarginPercent   float64   `json:"margin_percent,omitempty"`
	TotalLandedCost float64   `json:"total_landed_cost"`
	CreatedAt       time.Time `json:"created_at"`
}

// CalculationStats aggregates a shop's calculation history.
type CalculationStats struct {
	ShopDomain      string  `json:"shop_domain"`
	Count           int     `json:"count"`
	TotalLandedCost float64 `json:"total_landed_cost"`
	TotalDuty       float64 `json:"total_duty"`
	TotalVAT        float64 `json:"total_vat"`
	AvgDutyRate     float64 `json:"avg_duty_rate"`
}
