package domain

import (
	"strings"
	"time"
)

// Plan is one billing tier offered through Shopify Billing.
type Plan struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"` // USD per 30 days
	SubUsers int     `json:"sub_users"`
}

// Plans lists the offered billing tiers, keyed by plan name.
var Plans = map[string]Plan{
	"starter":      {Name: "Starter", Price: 1, SubUsers: 1},
	"professional": {Name: "Professional", Price: 25, SubUsers: 5},
	"enterprise":   {Name: "Enterprise", Price: 299, SubUsers: 999},
}

// Subscription tracks a shop's app subscription. RemoteID is always the
// canonical numeric Shopify subscription ID; the URI form is stripped on
// write so lookups never need fallback matching.
type Subscription struct {
	ID              string    `json:"id"`
	ShopDomain      string    `json:"shop_domain"`
	Plan            string    `json:"plan"`
	Status          string    `json:"status"` // pending, active, cancelled, expired
	RemoteID        string    `json:"remote_id"`
	ConfirmationURL string    `json:"confirmation_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (s *Subscription) Touch() {
	s.UpdatedAt = time.Now()
}

const subscriptionGIDPrefix = "gid://shopify/AppSubscription/"

// NormalizeSubscriptionID accepts either a bare numeric ID or the URI-style
// global identifier and returns the canonical numeric form.
func NormalizeSubscriptionID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), subscriptionGIDPrefix)
}

// SubscriptionGID returns the URI-style global identifier for a canonical ID.
func SubscriptionGID(id string) string {
	if strings.HasPrefix(id, subscriptionGIDPrefix) {
		return id
	}
	return subscriptionGIDPrefix + id
}
