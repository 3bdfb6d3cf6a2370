package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/billing"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// SubscribeInput starts an app subscription for a named plan.
type SubscribeInput struct {
	Body struct {
		ShopAuth
		Plan string `json:"plan" minLength:"1" doc:"Plan name: starter, professional or enterprise"`
	}
}

// SubscribeOutput returns the pending subscription and the confirmation URL
// where the merchant approves the charge.
type SubscribeOutput struct {
	Body struct {
		Subscription    *domain.Subscription `json:"subscription"`
		ConfirmationURL string               `json:"confirmation_url"`
		Warning         string               `json:"warning,omitempty"`
	}
}

// BillingStatusInput reads a shop's subscription state. With a credential
// present the state is refreshed from the remote first.
type BillingStatusInput struct {
	Body struct {
		Shop       string `json:"shop" minLength:"1" doc:"Shop domain"`
		Credential string `json:"credential,omitempty" doc:"Optional Admin API token; enables a remote refresh"`
	}
}

// BillingStatusOutput reports whether the shop has a subscription and which
// plan it is on.
type BillingStatusOutput struct {
	Body struct {
		HasSubscription bool                 `json:"has_subscription"`
		Subscription    *domain.Subscription `json:"subscription,omitempty"`
		Plan            *domain.Plan         `json:"plan,omitempty"`
	}
}

// SubscriptionOutput returns one subscription row.
type SubscriptionOutput struct {
	Body struct {
		Subscription *domain.Subscription `json:"subscription"`
	}
}

// CheckoutInput starts a Stripe checkout session for out-of-platform billing.
type CheckoutInput struct {
	Body struct {
		Email   string `json:"email" format:"email" doc:"Customer email, prefills the payment page"`
		PriceID string `json:"price_id" minLength:"1" doc:"Stripe price identifier"`
	}
}

// CheckoutOutput returns the created checkout session.
type CheckoutOutput struct {
	Body struct {
		Session *billing.CheckoutSession `json:"session"`
	}
}

// PlansOutput lists the offered billing tiers, cheapest first.
type PlansOutput struct {
	Body struct {
		Plans []domain.Plan `json:"plans"`
	}
}

// registerBillingRoutes registers subscription and checkout endpoints.
// Mutating operations require an authenticated operator.
func (s *Server) registerBillingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "billing-subscribe",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing/subscribe",
		Summary:     "Start subscription",
		Description: "Creates an app subscription for the named plan. The merchant approves the charge at the returned confirmation URL.",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		result, err := s.services.Billing.Subscribe(ctx, input.Body.Creds(), input.Body.Plan)
		if err != nil {
			return nil, huma.Error502BadGateway("Subscribe failed", err)
		}
		resp := &SubscribeOutput{}
		resp.Body.Subscription = result.Subscription
		resp.Body.ConfirmationURL = result.ConfirmationURL
		resp.Body.Warning = result.Warning
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "billing-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing/status",
		Summary:     "Subscription status",
		Description: "Returns the shop's subscription. With a credential in the body the status is refreshed from the remote first; a remote failure falls back to the stored state.",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *BillingStatusInput) (*BillingStatusOutput, error) {
		result, err := s.services.Billing.Status(ctx, service.ShopCredentials{
			ShopDomain:  input.Body.Shop,
			AccessToken: input.Body.Credential,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError("Loading status failed", err)
		}
		resp := &BillingStatusOutput{}
		resp.Body.HasSubscription = result.HasSubscription
		resp.Body.Subscription = result.Subscription
		resp.Body.Plan = result.Plan
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "billing-cancel",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing/cancel",
		Summary:     "Cancel subscription",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *struct{ Body ShopOnly }) (*SubscriptionOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		sub, err := s.services.Billing.Cancel(ctx, input.Body.Shop)
		if err != nil {
			return nil, huma.Error400BadRequest("Cancel failed", err)
		}
		resp := &SubscriptionOutput{}
		resp.Body.Subscription = sub
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "billing-activate",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing/activate",
		Summary:     "Activate subscription",
		Description: "Marks the shop's subscription active. Called from the billing return flow after the merchant approves the charge.",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *struct{ Body ShopOnly }) (*SubscriptionOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		sub, err := s.services.Billing.Activate(ctx, input.Body.Shop)
		if err != nil {
			return nil, huma.Error400BadRequest("Activate failed", err)
		}
		resp := &SubscriptionOutput{}
		resp.Body.Subscription = sub
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "billing-checkout",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing/checkout",
		Summary:     "Stripe checkout",
		Description: "Starts a subscription-mode Stripe checkout session. Only available when Stripe is configured.",
		Tags:        []string{"Billing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		session, err := s.services.Billing.Checkout(input.Body.Email, input.Body.PriceID)
		if err != nil {
			return nil, huma.Error400BadRequest("Checkout failed", err)
		}
		resp := &CheckoutOutput{}
		resp.Body.Session = session
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "billing-plans",
		Method:      http.MethodGet,
		Path:        "/api/v1/billing/plans",
		Summary:     "List plans",
		Tags:        []string{"Billing"},
	}, func(_ context.Context, _ *struct{}) (*PlansOutput, error) {
		resp := &PlansOutput{}
		resp.Body.Plans = s.services.Billing.Plans()
		return resp, nil
	})
}
