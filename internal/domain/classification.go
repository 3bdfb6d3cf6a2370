package domain

import "time"

// Classification is the persisted result of an HS-code lookup for one
// product in one shop. Uniqueness: one record per (ProductID, ShopDomain);
// a repeat classification overwrites in place.
type Classification struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ShopDomain  string    `json:"shop_domain"`
	Title       string    `json:"title,omitempty"`
	Code        string    `json:"code"`
	Confidence  int       `json:"confidence"` // 0-100
	Status      string    `json:"status"`     // pending, approved, modified
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Classification) Touch() {
	c.UpdatedAt = time.Now()
}

// UpsertKey returns the compound identity used by the persistence gateway.
func (c *Classification) UpsertKey() string {
	return c.ProductID + "|" + c.ShopDomain
}
