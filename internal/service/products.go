package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/tarifflyapp/tariffly-server/internal/catalog"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/syncer"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// searchLimit caps search responses; matching beyond the cap only counts.
const searchLimit = 20

// maxImageBytes caps decoded base64 image attachments.
const maxImageBytes = 20 * 1024 * 1024

// ProductService exposes the remote catalog: full-collection synchronization,
// product CRUD, tag metadata and image management. Clients are built per
// request from the caller's shop credentials.
type ProductService struct {
	cfg        config.CatalogConfig
	httpClient *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	baseURL    string // test override; empty in production
}

// NewProductService creates a new product service.
func NewProductService(cfg config.CatalogConfig, httpClient *http.Client, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *ProductService {
	return &ProductService{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// WithBaseURL redirects all catalog traffic to a fixed base URL. Test hook.
func (s *ProductService) WithBaseURL(base string) *ProductService {
	s.baseURL = base
	return s
}

// pageClient builds the configured pagination client for one shop.
func (s *ProductService) pageClient(creds ShopCredentials) catalog.Client {
	client := catalog.NewPageClient(s.cfg, s.httpClient, s.limiter, creds.ShopDomain, creds.AccessToken)
	if s.baseURL != "" {
		switch c := client.(type) {
		case *catalog.RESTClient:
			return c.WithBaseURL(s.baseURL)
		case *catalog.GraphQLClient:
			return c.WithBaseURL(s.baseURL)
		}
	}
	return client
}

// restClient builds the REST client used for CRUD regardless of the
// configured pagination style.
func (s *ProductService) restClient(creds ShopCredentials) *catalog.RESTClient {
	c := catalog.NewRESTClient(s.httpClient, s.limiter, s.cfg.APIVersion, creds.ShopDomain, creds.AccessToken)
	if s.baseURL != "" {
		c = c.WithBaseURL(s.baseURL)
	}
	return c
}

// newSyncer builds a syncer bound to one shop's page client.
func (s *ProductService) newSyncer(creds ShopCredentials) *syncer.Syncer {
	return syncer.New(s.pageClient(creds), s.cfg.PageSize, s.cfg.MaxPages, s.logger)
}

// ListProducts walks the full collection and returns items passing the
// status filter, each with its decoded metadata.
func (s *ProductService) ListProducts(ctx context.Context, creds ShopCredentials, filter string) ([]syncer.Item, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.newSyncer(creds).Collect(ctx, filter)
}

// CountProducts walks the full collection and counts items passing the filter.
func (s *ProductService) CountProducts(ctx context.Context, creds ShopCredentials, filter string) (int, error) {
	if err := requireCredentials(creds); err != nil {
		return 0, err
	}
	return s.newSyncer(creds).Count(ctx, filter)
}

// SearchProducts walks the full collection and returns up to 20 matches for
// the term, plus the total match count.
func (s *ProductService) SearchProducts(ctx context.Context, creds ShopCredentials, filter, term string) ([]syncer.Item, int, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, 0, err
	}
	if term == "" {
		return nil, 0, errors.Validation("search term is required")
	}
	return s.newSyncer(creds).Search(ctx, filter, term, searchLimit)
}

// GetProduct fetches one product by ID.
func (s *ProductService) GetProduct(ctx context.Context, creds ShopCredentials, productID string) (*domain.Product, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.restClient(creds).GetProduct(ctx, domain.NormalizeProductID(productID))
}

// GetMetadata fetches one product and decodes its tag metadata.
func (s *ProductService) GetMetadata(ctx context.Context, creds ShopCredentials, productID string) (*domain.Product, tagmeta.Metadata, error) {
	p, err := s.GetProduct(ctx, creds, productID)
	if err != nil {
		return nil, tagmeta.Metadata{}, err
	}
	return p, tagmeta.Decode(p.Tags), nil
}

// SaveMetadata rewrites a product's metadata tags from the given values and
// returns the updated product with its decoded metadata.
func (s *ProductService) SaveMetadata(ctx context.Context, creds ShopCredentials, productID string, md tagmeta.Metadata) (*domain.Product, tagmeta.Metadata, error) {
	switch md.Status {
	case "", tagmeta.StatusPending, tagmeta.StatusApproved, tagmeta.StatusModified:
	default:
		return nil, tagmeta.Metadata{}, errors.Validation("status must be one of: pending, approved, modified")
	}
	p, err := s.GetProduct(ctx, creds, productID)
	if err != nil {
		return nil, tagmeta.Metadata{}, err
	}
	updated, err := s.UpdateProductTags(ctx, creds, p.ID, tagmeta.Encode(p.Tags, md))
	if err != nil {
		return nil, tagmeta.Metadata{}, err
	}
	return updated, tagmeta.Decode(updated.Tags), nil
}

// CreateProduct creates a product in the remote catalog.
func (s *ProductService) CreateProduct(ctx context.Context, creds ShopCredentials, p domain.Product) (*domain.Product, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, errors.Validation("title is required")
	}
	return s.restClient(creds).CreateProduct(ctx, p)
}

// UpdateProduct updates a product in the remote catalog.
func (s *ProductService) UpdateProduct(ctx context.Context, creds ShopCredentials, p domain.Product) (*domain.Product, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, errors.Validation("product ID is required")
	}
	p.ID = domain.NormalizeProductID(p.ID)
	return s.restClient(creds).UpdateProduct(ctx, p)
}

// UpdateProductTags replaces a product's tag list wholesale.
func (s *ProductService) UpdateProductTags(ctx context.Context, creds ShopCredentials, productID string, tags []string) (*domain.Product, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.restClient(creds).UpdateProductTags(ctx, domain.NormalizeProductID(productID), tags)
}

// DeleteProduct removes a product from the remote catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, creds ShopCredentials, productID string) error {
	if err := requireCredentials(creds); err != nil {
		return err
	}
	return s.restClient(creds).DeleteProduct(ctx, domain.NormalizeProductID(productID))
}

// ListImages lists a product's images.
func (s *ProductService) ListImages(ctx context.Context, creds ShopCredentials, productID string) ([]domain.ProductImage, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.restClient(creds).ListImages(ctx, domain.NormalizeProductID(productID))
}

// CreateImageRequest attaches an image to a product, either by source URL or
// as a base64 attachment.
type CreateImageRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	Src        string `json:"src,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Alt        string `json:"alt,omitempty"`
}

// CreateImage attaches an image to a product. Base64 attachments are capped
// at 20MB decoded.
func (s *ProductService) CreateImage(ctx context.Context, creds ShopCredentials, req CreateImageRequest) (*domain.ProductImage, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if req.Src == "" && req.Attachment == "" {
		return nil, errors.Validation("either src or attachment is required")
	}
	if req.Attachment != "" {
		data, err := base64.StdEncoding.DecodeString(req.Attachment)
		if err != nil {
			return nil, errors.Validation("attachment is not valid base64")
		}
		if len(data) > maxImageBytes {
			return nil, errors.Validation("attachment exceeds the 20MB limit")
		}
	}
	return s.restClient(creds).CreateImage(ctx, domain.NormalizeProductID(req.ProductID), req.Src, req.Attachment, req.Alt)
}

// UpdateImage updates an image's position or alt text.
func (s *ProductService) UpdateImage(ctx context.Context, creds ShopCredentials, productID, imageID string, position int, alt string) (*domain.ProductImage, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.restClient(creds).UpdateImage(ctx, domain.NormalizeProductID(productID), imageID, position, alt)
}

// DeleteImage removes an image from a product.
func (s *ProductService) DeleteImage(ctx context.Context, creds ShopCredentials, productID, imageID string) error {
	if err := requireCredentials(creds); err != nil {
		return err
	}
	return s.restClient(creds).DeleteImage(ctx, domain.NormalizeProductID(productID), imageID)
}

// ListOrders fetches one page of orders.
func (s *ProductService) ListOrders(ctx context.Context, creds ShopCredentials, pageToken string, pageSize int) ([]domain.Order, string, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, "", err
	}
	if pageSize <= 0 || pageSize > catalog.MaxPageSize {
		pageSize = s.cfg.PageSize
	}
	return s.restClient(creds).FetchOrdersPage(ctx, pageToken, pageSize)
}

// GetOrder fetches one order by ID.
func (s *ProductService) GetOrder(ctx context.Context, creds ShopCredentials, orderID string) (*domain.Order, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}
	return s.restClient(creds).GetOrder(ctx, orderID)
}
