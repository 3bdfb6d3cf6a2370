package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// ESGScoreInput rates one product's vendor.
type ESGScoreInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1"`
	}
}

// ESGScoreOutput returns the stored score. The warning is set when the score
// could not be persisted.
type ESGScoreOutput struct {
	Body struct {
		Score   *domain.ESGScore `json:"score"`
		Warning string           `json:"warning,omitempty"`
	}
}

// ESGGetInput reads a stored score without touching the remote catalog.
type ESGGetInput struct {
	Body struct {
		ShopOnly
		ProductID string `json:"product_id" minLength:"1"`
	}
}

// ESGSummaryOutput aggregates a shop's scores by risk level.
type ESGSummaryOutput struct {
	Body struct {
		Summary *domain.ESGSummary `json:"summary"`
	}
}

// ESGContactInput asks a vendor for their ESG scores by email.
type ESGContactInput struct {
	Body struct {
		ShopAuth
		ProductID   string `json:"product_id" minLength:"1"`
		VendorEmail string `json:"vendor_email" format:"email"`
	}
}

// registerESGRoutes registers the vendor sustainability endpoints.
func (s *Server) registerESGRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "esg-score",
		Method:      http.MethodPost,
		Path:        "/api/v1/esg/score",
		Summary:     "Score product vendor",
		Description: "Rates the product's vendor and stores the result. Vendors without a known rating profile get the neutral one.",
		Tags:        []string{"ESG"},
	}, func(ctx context.Context, input *ESGScoreInput) (*ESGScoreOutput, error) {
		result, err := s.services.ESG.Score(ctx, input.Body.Creds(), input.Body.ProductID)
		if err != nil {
			return nil, huma.Error502BadGateway("Scoring failed", err)
		}
		resp := &ESGScoreOutput{}
		resp.Body.Score = result.Score
		resp.Body.Warning = result.Warning
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "esg-get",
		Method:      http.MethodPost,
		Path:        "/api/v1/esg/get",
		Summary:     "Get stored score",
		Tags:        []string{"ESG"},
	}, func(ctx context.Context, input *ESGGetInput) (*ESGScoreOutput, error) {
		score, err := s.services.ESG.GetScore(ctx, input.Body.Shop, input.Body.ProductID)
		if err != nil {
			return nil, huma.Error404NotFound("Score not found", err)
		}
		resp := &ESGScoreOutput{}
		resp.Body.Score = score
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "esg-summary",
		Method:      http.MethodPost,
		Path:        "/api/v1/esg/summary",
		Summary:     "ESG summary",
		Tags:        []string{"ESG"},
	}, func(ctx context.Context, input *struct{ Body ShopOnly }) (*ESGSummaryOutput, error) {
		summary, err := s.services.ESG.Summary(ctx, input.Body.Shop)
		if err != nil {
			return nil, huma.Error500InternalServerError("Loading summary failed", err)
		}
		resp := &ESGSummaryOutput{}
		resp.Body.Summary = summary
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "esg-contact",
		Method:      http.MethodPost,
		Path:        "/api/v1/esg/contact",
		Summary:     "Contact vendor",
		Description: "Sends the vendor outreach mail for one product. Requires an authenticated operator.",
		Tags:        []string{"ESG"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *ESGContactInput) (*MessageOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		err := s.services.ESG.Contact(ctx, input.Body.Creds(), service.ContactRequest{
			ProductID:   input.Body.ProductID,
			VendorEmail: input.Body.VendorEmail,
		})
		if err != nil {
			return nil, huma.Error502BadGateway("Contacting vendor failed", err)
		}
		return messageOutput("vendor contacted"), nil
	})
}
