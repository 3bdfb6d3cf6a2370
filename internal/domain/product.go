package domain

import (
	"strings"
	"time"
)

// Product represents one catalog item fetched from the remote shop.
// Tags carry side-channel classification metadata; everything else is
// passed through to clients unchanged.
type Product struct {
	ID          string    `json:"id"` // canonical numeric string, see NormalizeProductID
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	ProductType string    `json:"product_type,omitempty"`
	Price       string    `json:"price,omitempty"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"` // primary image URL
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

const productGIDPrefix = "gid://shopify/Product/"

// NormalizeProductID accepts either a bare numeric ID or the URI-style
// global identifier and returns the canonical numeric form.
func NormalizeProductID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), productGIDPrefix)
}

// ProductGID returns the URI-style global identifier for a canonical ID.
func ProductGID(id string) string {
	if strings.HasPrefix(id, productGIDPrefix) {
		return id
	}
	return productGIDPrefix + id
}

// ProductImage represents one image attached to a catalog product.
type ProductImage struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Position  int       `json:"position,omitempty"`
	Src       string    `json:"src"`
	Alt       string    `json:"alt,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Order represents one order fetched from the remote shop. Passed through
// to clients opaquely; the server never mutates orders.
type Order struct {
	ID                string    `json:"id"`
	Name              string    `json:"name,omitempty"`
	Email             string    `json:"email,omitempty"`
	TotalPrice        string    `json:"total_price,omitempty"`
	Currency          string    `json:"currency,omitempty"`
	FinancialStatus   string    `json:"financial_status,omitempty"`
	FulfillmentStatus string    `json:"fulfillment_status,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitzero"`
}
