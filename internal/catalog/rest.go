package catalog

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// RESTClient talks to the Admin REST API. It implements Client with
// since-id pagination and additionally carries the product, image and order
// operations the REST surface is used for regardless of pagination style.
type RESTClient struct {
	http       *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	apiVersion string
	shop       string
	credential string
	baseURL    string // overridable for tests
}

// NewRESTClient creates a REST client bound to one shop and credential.
func NewRESTClient(httpClient *http.Client, limiter *ratelimit.KeyedRateLimiter, apiVersion, shop, credential string) *RESTClient {
	return &RESTClient{
		http:       httpClient,
		limiter:    limiter,
		apiVersion: apiVersion,
		shop:       shop,
		credential: credential,
		baseURL:    "https://" + shop,
	}
}

// WithBaseURL overrides the shop base URL. Test hook for httptest servers.
func (c *RESTClient) WithBaseURL(base string) *RESTClient {
	c.baseURL = base
	return c
}

// rawProduct matches the REST wire shape of a product.
type rawProduct struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	BodyHTML    string      `json:"body_html"`
	Vendor      string      `json:"vendor"`
	ProductType string      `json:"product_type"`
	Tags        string      `json:"tags"`
	CreatedAt   time.Time   `json:"created_at,omitzero"`
	UpdatedAt   time.Time   `json:"updated_at,omitzero"`
	Variants    []rawVariant `json:"variants,omitempty"`
	Image       *rawImage    `json:"image,omitempty"`
}

type rawVariant struct {
	Price string `json:"price"`
}

type rawImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Position  int       `json:"position"`
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type rawOrder struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	TotalPrice        string    `json:"total_price"`
	Currency          string    `json:"currency"`
	FinancialStatus   string    `json:"financial_status"`
	FulfillmentStatus string    `json:"fulfillment_status"`
	CreatedAt         time.Time `json:"created_at,omitzero"`
}

func (p rawProduct) toDomain() domain.Product {
	out := domain.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Tags:        tagmeta.Normalize(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Variants) > 0 {
		out.Price = p.Variants[0].Price
	}
	if p.Image != nil {
		out.Image = p.Image.Src
	}
	return out
}

func (i rawImage) toDomain() domain.ProductImage {
	return domain.ProductImage{
		ID:        strconv.FormatInt(i.ID, 10),
		ProductID: strconv.FormatInt(i.ProductID, 10),
		Position:  i.Position,
		Src:       i.Src,
		Alt:       i.Alt,
		Width:     i.Width,
		Height:    i.Height,
		CreatedAt: i.CreatedAt,
	}
}

func (o rawOrder) toDomain() domain.Order {
	return domain.Order{
		ID:                strconv.FormatInt(o.ID, 10),
		Name:              o.Name,
		Email:             o.Email,
		TotalPrice:        o.TotalPrice,
		Currency:          o.Currency,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		CreatedAt:         o.CreatedAt,
	}
}

// FetchPage implements Client using since-id pagination. The next token is
// the numeric ID of the last item on the page.
func (c *RESTClient) FetchPage(ctx context.Context, pageToken string, pageSize int) (*Page, error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}

	query := url.Values{"limit": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		query.Set("since_id", pageToken)
	}

	var payload struct {
		Products []rawProduct `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products.json", query, nil, &payload); err != nil {
		return nil, err
	}

	page := &Page{Items: make([]domain.Product, 0, len(payload.Products))}
	for _, p := range payload.Products {
		page.Items = append(page.Items, p.toDomain())
	}
	if len(page.Items) > 0 {
		page.NextToken = page.Items[len(page.Items)-1].ID
	}
	return page, nil
}

// GetProduct fetches a single product by canonical ID.
func (c *RESTClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var payload struct {
		Product rawProduct `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+domain.NormalizeProductID(id)+".json", nil, nil, &payload); err != nil {
		return nil, err
	}
	out := payload.Product.toDomain()
	return &out, nil
}

// CreateProduct creates a product with the given passthrough fields.
func (c *RESTClient) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	body := map[string]any{"product": map[string]any{
		"title":        p.Title,
		"body_html":    p.BodyHTML,
		"vendor":       p.Vendor,
		"product_type": p.ProductType,
		"tags":         tagmeta.Join(p.Tags),
	}}
	var payload struct {
		Product rawProduct `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/products.json", nil, body, &payload); err != nil {
		return nil, err
	}
	out := payload.Product.toDomain()
	return &out, nil
}

// UpdateProduct updates the passthrough fields of an existing product.
func (c *RESTClient) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	id := domain.NormalizeProductID(p.ID)
	body := map[string]any{"product": map[string]any{
		"id":           id,
		"title":        p.Title,
		"body_html":    p.BodyHTML,
		"vendor":       p.Vendor,
		"product_type": p.ProductType,
		"tags":         tagmeta.Join(p.Tags),
	}}
	var payload struct {
		Product rawProduct `json:"product"`
	}
	if err := c.do(ctx, http.MethodPut, "/products/"+id+".json", nil, body, &payload); err != nil {
		return nil, err
	}
	out := payload.Product.toDomain()
	return &out, nil
}

// UpdateProductTags replaces only the tag set of a product. Used after
// re-encoding classification metadata.
func (c *RESTClient) UpdateProductTags(ctx context.Context, id string, tags []string) (*domain.Product, error) {
	nid := domain.NormalizeProductID(id)
	body := map[string]any{"product": map[string]any{
		"id":   nid,
		"tags": tagmeta.Join(tags),
	}}
	var payload struct {
		Product rawProduct `json:"product"`
	}
	if err := c.do(ctx, http.MethodPut, "/products/"+nid+".json", nil, body, &payload); err != nil {
		return nil, err
	}
	out := payload.Product.toDomain()
	return &out, nil
}

// DeleteProduct removes a product.
func (c *RESTClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+domain.NormalizeProductID(id)+".json", nil, nil, nil)
}

// ListImages returns all images of a product.
func (c *RESTClient) ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	var payload struct {
		Images []rawImage `json:"images"`
	}
	path := "/products/" + domain.NormalizeProductID(productID) + "/images.json"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.ProductImage, 0, len(payload.Images))
	for _, img := range payload.Images {
		out = append(out, img.toDomain())
	}
	return out, nil
}

// GetImage returns a single product image.
func (c *RESTClient) GetImage(ctx context.Context, productID, imageID string) (*domain.ProductImage, error) {
	var payload struct {
		Image rawImage `json:"image"`
	}
	path := "/products/" + domain.NormalizeProductID(productID) + "/images/" + imageID + ".json"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	out := payload.Image.toDomain()
	return &out, nil
}

// CreateImage attaches an image to a product. Exactly one of src or
// attachment (base64 content) must be set; the service layer validates size.
func (c *RESTClient) CreateImage(ctx context.Context, productID, src, attachment, alt string) (*domain.ProductImage, error) {
	image := map[string]any{}
	if src != "" {
		image["src"] = src
	}
	if attachment != "" {
		image["attachment"] = attachment
	}
	if alt != "" {
		image["alt"] = alt
	}
	body := map[string]any{"image": image}

	var payload struct {
		Image rawImage `json:"image"`
	}
	path := "/products/" + domain.NormalizeProductID(productID) + "/images.json"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &payload); err != nil {
		return nil, err
	}
	out := payload.Image.toDomain()
	return &out, nil
}

// UpdateImage updates an image's position or alt text.
func (c *RESTClient) UpdateImage(ctx context.Context, productID, imageID string, position int, alt string) (*domain.ProductImage, error) {
	image := map[string]any{"id": imageID}
	if position > 0 {
		image["position"] = position
	}
	if alt != "" {
		image["alt"] = alt
	}
	body := map[string]any{"image": image}

	var payload struct {
		Image rawImage `json:"image"`
	}
	path := "/products/" + domain.NormalizeProductID(productID) + "/images/" + imageID + ".json"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &payload); err != nil {
		return nil, err
	}
	out := payload.Image.toDomain()
	return &out, nil
}

// DeleteImage removes an image from a product.
func (c *RESTClient) DeleteImage(ctx context.Context, productID, imageID string) error {
	path := "/products/" + domain.NormalizeProductID(productID) + "/images/" + imageID + ".json"
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FetchOrdersPage returns one page of orders using since-id pagination.
// Same contract as FetchPage.
func (c *RESTClient) FetchOrdersPage(ctx context.Context, pageToken string, pageSize int) ([]domain.Order, string, error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, "", err
	}

	query := url.Values{"limit": {strconv.Itoa(pageSize)}, "status": {"any"}}
	if pageToken != "" {
		query.Set("since_id", pageToken)
	}

	var payload struct {
		Orders []rawOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders.json", query, nil, &payload); err != nil {
		return nil, "", err
	}

	orders := make([]domain.Order, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		orders = append(orders, o.toDomain())
	}
	var next string
	if len(orders) > 0 {
		next = orders[len(orders)-1].ID
	}
	return orders, next, nil
}

// GetOrder returns a single order.
func (c *RESTClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var payload struct {
		Order rawOrder `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/"+id+".json", nil, nil, &payload); err != nil {
		return nil, err
	}
	out := payload.Order.toDomain()
	return &out, nil
}

// do executes one Admin REST call with rate limiting and maps non-success
// statuses to domain errors.
func (c *RESTClient) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if err := c.limiter.Wait(ctx, c.shop); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + "/admin/api/" + c.apiVersion + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Shopify-Access-Token", c.credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "catalog request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "read catalog response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.NotFound("catalog item not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.RemoteFetch(resp.StatusCode, string(raw))
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "decode catalog response")
	}
	return nil
}
