// Package billing talks to the two payment rails: Shopify Billing for
// in-admin app subscriptions and Stripe Checkout for card payments.
package billing

import (
	"context"
	"strings"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

// GraphQLPoster posts one GraphQL document to a shop's Admin API.
// Satisfied by catalog.GraphQLClient.
type GraphQLPoster interface {
	PostGraphQL(ctx context.Context, query string, variables map[string]any, dest any) error
}

const appSubscriptionCreateMutation = `
mutation appSubscriptionCreate($name: String!, $returnUrl: URL!, $test: Boolean, $lineItems: [AppSubscriptionLineItemInput!]!) {
	appSubscriptionCreate(name: $name, returnUrl: $returnUrl, test: $test, lineItems: $lineItems) {
		userErrors {
			field
			message
		}
		confirmationUrl
		appSubscription {
			id
			status
		}
	}
}`

const appSubscriptionStatusQuery = `
query appSubscriptionStatus($id: ID!) {
	node(id: $id) {
		... on AppSubscription {
			id
			status
			name
		}
	}
}`

// PendingSubscription is the result of creating an app subscription: the
// merchant still has to approve it at the confirmation URL.
type PendingSubscription struct {
	RemoteID        string
	ConfirmationURL string
	Plan            string
}

// ShopifyBiller creates and inspects app subscriptions through the Admin API.
type ShopifyBiller struct {
	cfg config.BillingConfig
}

// NewShopifyBiller returns a biller with the given configuration.
func NewShopifyBiller(cfg config.BillingConfig) *ShopifyBiller {
	return &ShopifyBiller{cfg: cfg}
}

// CreateSubscription starts an app subscription for the named plan. Returns
// the confirmation URL the merchant must visit to approve the charge.
func (b *ShopifyBiller) CreateSubscription(ctx context.Context, poster GraphQLPoster, planName string) (*PendingSubscription, error) {
	plan, ok := domain.Plans[strings.ToLower(strings.TrimSpace(planName))]
	if !ok {
		return nil, errors.Validationf("unknown plan %q", planName)
	}

	variables := map[string]any{
		"name":      plan.Name + " Plan",
		"returnUrl": b.cfg.ReturnURL,
		"test":      b.cfg.ShopifyTest,
		"lineItems": []map[string]any{
			{
				"plan": map[string]any{
					"appRecurringPricingDetails": map[string]any{
						"price": map[string]any{
							"amount":       plan.Price,
							"currencyCode": "USD",
						},
						"interval": "EVERY_30_DAYS",
					},
				},
			},
		},
	}

	var result struct {
		AppSubscriptionCreate struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
			ConfirmationURL string `json:"confirmationUrl"`
			AppSubscription struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"appSubscription"`
		} `json:"appSubscriptionCreate"`
	}

	if err := poster.PostGraphQL(ctx, appSubscriptionCreateMutation, variables, &result); err != nil {
		return nil, err
	}

	created := result.AppSubscriptionCreate
	if len(created.UserErrors) > 0 {
		msgs := make([]string, len(created.UserErrors))
		for i, ue := range created.UserErrors {
			msgs[i] = ue.Message
		}
		return nil, errors.Validationf("subscription creation failed: %s", strings.Join(msgs, ", "))
	}
	if created.ConfirmationURL == "" {
		return nil, errors.RemoteFetch(502, "no confirmation URL received")
	}

	return &PendingSubscription{
		RemoteID:        domain.NormalizeSubscriptionID(created.AppSubscription.ID),
		ConfirmationURL: created.ConfirmationURL,
		Plan:            strings.ToLower(strings.TrimSpace(planName)),
	}, nil
}

// FetchStatus looks up the current status of an app subscription. The
// remoteID may be the numeric or the URI form.
func (b *ShopifyBiller) FetchStatus(ctx context.Context, poster GraphQLPoster, remoteID string) (string, error) {
	variables := map[string]any{
		"id": domain.SubscriptionGID(domain.NormalizeSubscriptionID(remoteID)),
	}

	var result struct {
		Node struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Name   string `json:"name"`
		} `json:"node"`
	}

	if err := poster.PostGraphQL(ctx, appSubscriptionStatusQuery, variables, &result); err != nil {
		return "", err
	}

	if result.Node.ID == "" {
		return "", errors.NotFoundf("subscription %s not found", remoteID)
	}

	// Shopify reports ACTIVE, CANCELLED, etc.
	return strings.ToLower(result.Node.Status), nil
}
