package domain

import "time"

// ESGRisk buckets an overall ESG score into a risk level.
type ESGRisk string

const (
	ESGRiskLow    ESGRisk = "low"
	ESGRiskMedium ESGRisk = "medium"
	ESGRiskHigh   ESGRisk = "high"
)

// ESGScore is the persisted sustainability rating for one product's vendor.
// Uniqueness: one record per (ProductID, ShopDomain).
type ESGScore struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ShopDomain    string    `json:"shop_domain"`
	Vendor        string    `json:"vendor"`
	VendorSymbol  string    `json:"vendor_symbol,omitempty"`
	Environmental float64   `json:"environmental"`
	Social        float64   `json:"social"`
	Governance    float64   `json:"governance"`
	Overall       float64   `json:"overall"`
	RiskLevel     ESGRisk   `json:"risk_level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (s *ESGScore) Touch() {
	s.UpdatedAt = time.Now()
}

// UpsertKey returns the compound identity used by the persistence gateway.
func (s *ESGScore) UpsertKey() string {
	return s.ProductID + "|" + s.ShopDomain
}

// ESGSummary aggregates a shop's persisted ESG scores.
type ESGSummary struct {
	ShopDomain  string  `json:"shop_domain"`
	Scored      int     `json:"scored"`
	AvgOverall  float64 `json:"avg_overall"`
	LowRisk     int     `json:"low_risk"`
	MediumRisk  int     `json:"medium_risk"`
	HighRisk    int     `json:"high_risk"`
	LastUpdated string  `json:"last_updated,omitempty"`
}
