package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/duties"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// DetectInput classifies one product.
type DetectInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1"`
	}
}

// DetectOutput returns the stored classification and every provider
// suggestion. The warning is set when the result could not be persisted.
type DetectOutput struct {
	Body struct {
		Classification *domain.Classification `json:"classification"`
		Suggestions    []duties.Suggestion    `json:"suggestions"`
		Warning        string                 `json:"warning,omitempty"`
	}
}

// ReviewInput records a merchant's verdict on a detected classification.
type ReviewInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1"`
		Status    string `json:"status" enum:"approved,modified" doc:"Review verdict"`
		Code      string `json:"code,omitempty" doc:"Replacement HS code, required when status is modified"`
	}
}

// ClassificationOutput returns one classification row.
type ClassificationOutput struct {
	Body struct {
		Classification *domain.Classification `json:"classification"`
	}
}

// ClassificationHistoryOutput lists a shop's classifications.
type ClassificationHistoryOutput struct {
	Body struct {
		Classifications []*domain.Classification `json:"classifications"`
	}
}

// registerClassificationRoutes registers HS-code detection and review.
func (s *Server) registerClassificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "classification-detect",
		Method:      http.MethodPost,
		Path:        "/api/v1/classification/detect",
		Summary:     "Detect HS code",
		Description: "Classifies one product: strips markup from its description, asks the duties provider for suggestions, stores the top one and rewrites the product's metadata tags.",
		Tags:        []string{"Classification"},
	}, func(ctx context.Context, input *DetectInput) (*DetectOutput, error) {
		result, err := s.services.Classification.Detect(ctx, input.Body.Creds(), input.Body.ProductID)
		if err != nil {
			return nil, huma.Error502BadGateway("Detection failed", err)
		}
		resp := &DetectOutput{}
		resp.Body.Classification = result.Classification
		resp.Body.Suggestions = result.Suggestions
		resp.Body.Warning = result.Warning
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "classification-review",
		Method:      http.MethodPost,
		Path:        "/api/v1/classification/review",
		Summary:     "Review classification",
		Description: "Approves the detected code or replaces it. Modified verdicts require a replacement code.",
		Tags:        []string{"Classification"},
	}, func(ctx context.Context, input *ReviewInput) (*ClassificationOutput, error) {
		cls, err := s.services.Classification.Review(ctx, input.Body.Creds(), input.Body.ProductID, service.ReviewRequest{
			Status: input.Body.Status,
			Code:   input.Body.Code,
		})
		if err != nil {
			return nil, huma.Error502BadGateway("Review failed", err)
		}
		resp := &ClassificationOutput{}
		resp.Body.Classification = cls
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "classification-history",
		Method:      http.MethodPost,
		Path:        "/api/v1/classification/history",
		Summary:     "Classification history",
		Description: "Lists the shop's stored classifications. Reads local state only.",
		Tags:        []string{"Classification"},
	}, func(ctx context.Context, input *struct{ Body ShopOnly }) (*ClassificationHistoryOutput, error) {
		rows, err := s.services.Classification.History(ctx, input.Body.Shop)
		if err != nil {
			return nil, huma.Error500InternalServerError("Loading history failed", err)
		}
		resp := &ClassificationHistoryOutput{}
		resp.Body.Classifications = rows
		return resp, nil
	})
}
