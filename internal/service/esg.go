package service

import (
	"context"
	"log/slog"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/esg"
	"github.com/tarifflyapp/tariffly-server/internal/mail"
	"github.com/tarifflyapp/tariffly-server/internal/store"
)

// ESGService rates product vendors and handles vendor outreach.
type ESGService struct {
	products *ProductService
	store    *store.Store
	mailer   *mail.Mailer
	logger   *slog.Logger
}

// NewESGService creates a new ESG service.
func NewESGService(products *ProductService, st *store.Store, mailer *mail.Mailer, logger *slog.Logger) *ESGService {
	return &ESGService{
		products: products,
		store:    st,
		mailer:   mailer,
		logger:   logger,
	}
}

// ScoreResult carries the score plus a warning when persistence failed.
type ScoreResult struct {
	Score   *domain.ESGScore `json:"score"`
	Warning string           `json:"warning,omitempty"`
}

// Score rates one product's vendor and stores the result. Vendors without a
// known rating profile get the neutral one.
func (s *ESGService) Score(ctx context.Context, creds ShopCredentials, productID string) (*ScoreResult, error) {
	p, err := s.products.GetProduct(ctx, creds, productID)
	if err != nil {
		return nil, err
	}

	symbol := esg.Symbol(p.Vendor)
	rating := esg.Rate(symbol)

	score := &domain.ESGScore{
		ProductID:     p.ID,
		ShopDomain:    creds.ShopDomain,
		Vendor:        p.Vendor,
		VendorSymbol:  symbol,
		Environmental: rating.Environmental,
		Social:        rating.Social,
		Governance:    rating.Governance,
		Overall:       rating.Overall,
		RiskLevel:     esg.RiskLevel(rating.Overall),
	}

	result := &ScoreResult{}
	if _, err := s.store.UpsertESGScore(ctx, score); err != nil {
		s.logger.Warn("Failed to persist ESG score", "product", p.ID, "error", err)
		result.Warning = persistWarning
	}
	result.Score = score

	return result, nil
}

// GetScore returns a previously stored score for one product.
func (s *ESGService) GetScore(ctx context.Context, shopDomain, productID string) (*domain.ESGScore, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	return s.store.GetESGScoreForProduct(ctx, domain.NormalizeProductID(productID), shopDomain)
}

// Summary aggregates a shop's stored scores into risk buckets.
func (s *ESGService) Summary(ctx context.Context, shopDomain string) (*domain.ESGSummary, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	return s.store.SummarizeESGScores(ctx, shopDomain)
}

// ContactRequest asks a vendor for their ESG scores by email.
type ContactRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	VendorEmail string `json:"vendor_email" validate:"required,email"`
}

// Contact sends the vendor outreach mail for one product.
func (s *ESGService) Contact(ctx context.Context, creds ShopCredentials, req ContactRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	p, err := s.products.GetProduct(ctx, creds, req.ProductID)
	if err != nil {
		return err
	}

	return s.mailer.SendESGRequest(mail.ESGRequest{
		VendorEmail: req.VendorEmail,
		VendorName:  p.Vendor,
		ProductName: p.Title,
	})
}
