// Package esg rates product vendors on environmental, social and governance
// criteria. Ratings come from a static table keyed by the vendor's stock
// symbol; unknown vendors fall back to a neutral profile.
package esg

import "github.com/tarifflyapp/tariffly-server/internal/domain"

// Rating is one vendor's ESG profile.
type Rating struct {
	Overall       float64
	Environmental float64
	Social        float64
	Governance    float64
}

// vendorSymbols maps well-known vendor names to stock symbols.
var vendorSymbols = map[string]string{
	"Nike":      "NKE",
	"Apple":     "AAPL",
	"Microsoft": "MSFT",
	"Amazon":    "AMZN",
	"Google":    "GOOGL",
	"Alphabet":  "GOOGL",
	"Tesla":     "TSLA",
	"Meta":      "META",
	"Netflix":   "NFLX",
}

// ratings holds ESG profiles by stock symbol.
var ratings = map[string]Rating{
	"NKE":   {Overall: 61.2, Environmental: 73.1, Social: 68.5, Governance: 42.0},
	"AAPL":  {Overall: 56.04, Environmental: 73.21, Social: 45.81, Governance: 56.06},
	"MSFT":  {Overall: 64.8, Environmental: 71.2, Social: 62.1, Governance: 61.1},
	"AMZN":  {Overall: 52.3, Environmental: 68.9, Social: 48.2, Governance: 39.8},
	"GOOGL": {Overall: 58.7, Environmental: 69.4, Social: 52.3, Governance: 54.4},
	"TSLA":  {Overall: 45.2, Environmental: 62.1, Social: 41.8, Governance: 31.7},
}

// neutralRating is used for vendors without a known profile.
var neutralRating = Rating{Overall: 55.0, Environmental: 65.0, Social: 50.0, Governance: 50.0}

// Symbol returns the stock symbol for a vendor name, or empty when unknown.
func Symbol(vendor string) string {
	return vendorSymbols[vendor]
}

// Rate returns the ESG profile for a stock symbol. Unknown symbols (and the
// empty symbol) get the neutral profile.
func Rate(symbol string) Rating {
	if r, ok := ratings[symbol]; ok {
		return r
	}
	return neutralRating
}

// RiskLevel buckets an overall score: 70 and above is low risk, 50 and above
// is medium, anything below is high.
func RiskLevel(overall float64) domain.ESGRisk {
	switch {
	case overall >= 70:
		return domain.ESGRiskLow
	case overall >= 50:
		return domain.ESGRiskMedium
	default:
		return domain.ESGRiskHigh
	}
}
