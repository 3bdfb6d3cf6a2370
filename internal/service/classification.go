package service

import (
	"context"
	"log/slog"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/duties"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/htmltext"
	"github.com/tarifflyapp/tariffly-server/internal/store"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// persistWarning is attached to responses when the classification succeeded
// but a write failed. The computed result is still returned.
const persistWarning = "result computed but could not be saved"

// ClassificationService runs HS-code detection against the duties provider
// and keeps the results in both the local store and the product's tags.
type ClassificationService struct {
	products *ProductService
	duties   *duties.Client
	store    *store.Store
	logger   *slog.Logger
}

// NewClassificationService creates a new classification service.
func NewClassificationService(products *ProductService, dutiesClient *duties.Client, st *store.Store, logger *slog.Logger) *ClassificationService {
	return &ClassificationService{
		products: products,
		duties:   dutiesClient,
		store:    st,
		logger:   logger,
	}
}

// DetectResult is the outcome of one detection run. Warning is set when the
// classification was computed but persisting it failed.
type DetectResult struct {
	Classification *domain.Classification `json:"classification"`
	Suggestions    []duties.Suggestion    `json:"suggestions"`
	Warning        string                 `json:"warning,omitempty"`
}

// Detect classifies one product: fetches it, strips markup from the
// description, asks the duties provider for HS-code suggestions, stores the
// top suggestion and rewrites the product's metadata tags.
func (s *ClassificationService) Detect(ctx context.Context, creds ShopCredentials, productID string) (*DetectResult, error) {
	p, err := s.products.GetProduct(ctx, creds, productID)
	if err != nil {
		return nil, err
	}

	description := p.BodyHTML
	if htmltext.ContainsHTML(description) {
		description = htmltext.Strip(description)
	}

	suggestions, err := s.duties.Classify(ctx, p.Title, description, p.ProductType)
	if err != nil {
		return nil, err
	}

	top := suggestions[0]
	cls := &domain.Classification{
		ProductID:   p.ID,
		ShopDomain:  creds.ShopDomain,
		Title:       p.Title,
		Code:        top.Code,
		Confidence:  top.Confidence,
		Status:      string(tagmeta.StatusPending),
		Description: top.Description,
	}

	result := &DetectResult{Suggestions: suggestions}

	if _, err := s.store.UpsertClassification(ctx, cls); err != nil {
		s.logger.Warn("Failed to persist classification", "product", p.ID, "error", err)
		result.Warning = persistWarning
	}
	result.Classification = cls

	md := tagmeta.Metadata{
		Code:       &top.Code,
		Confidence: &top.Confidence,
		Status:     tagmeta.StatusPending,
	}
	if _, err := s.products.UpdateProductTags(ctx, creds, p.ID, tagmeta.Encode(p.Tags, md)); err != nil {
		s.logger.Warn("Failed to write metadata tags", "product", p.ID, "error", err)
		result.Warning = persistWarning
	}

	return result, nil
}

// ReviewRequest updates a classification's review state. A modified review
// carries the corrected code.
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved modified pending"`
	Code   string `json:"code,omitempty"`
}

// Review records a merchant's review decision: the store row and the
// product's status tag both move to the new state. A "modified" review
// replaces the code as well.
func (s *ClassificationService) Review(ctx context.Context, creds ShopCredentials, productID string, req ReviewRequest) (*domain.Classification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if req.Status == string(tagmeta.StatusModified) && req.Code == "" {
		return nil, errors.Validation("code is required for a modified review")
	}

	productID = domain.NormalizeProductID(productID)
	cls, err := s.store.GetClassificationForProduct(ctx, productID, creds.ShopDomain)
	if err != nil {
		return nil, err
	}

	cls.Status = req.Status
	if req.Code != "" {
		cls.Code = req.Code
	}
	if _, err := s.store.UpsertClassification(ctx, cls); err != nil {
		return nil, err
	}

	p, err := s.products.GetProduct(ctx, creds, productID)
	if err != nil {
		return nil, err
	}

	md := tagmeta.Decode(p.Tags)
	md.Code = &cls.Code
	md.Status = tagmeta.Status(req.Status)
	if _, err := s.products.UpdateProductTags(ctx, creds, p.ID, tagmeta.Encode(p.Tags, md)); err != nil {
		return nil, err
	}

	return cls, nil
}

// History returns a shop's stored classifications, newest first.
func (s *ClassificationService) History(ctx context.Context, shopDomain string) ([]*domain.Classification, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	return s.store.ListClassifications(ctx, shopDomain)
}
