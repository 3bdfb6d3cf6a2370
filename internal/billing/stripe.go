package billing

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

// StripeCheckout creates hosted checkout sessions for card payments.
type StripeCheckout struct {
	api *client.API
	cfg config.BillingConfig
}

// NewStripeCheckout builds a checkout client. Returns nil if no secret key is
// configured; callers treat a nil client as Stripe being disabled.
func NewStripeCheckout(cfg config.BillingConfig) *StripeCheckout {
	if cfg.StripeSecretKey == "" {
		return nil
	}

	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)

	return &StripeCheckout{api: api, cfg: cfg}
}

// CheckoutSession is the hosted payment page handed back to the client.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession starts a subscription-mode checkout session for the given
// Stripe price. The customer email prefills the payment page.
func (s *StripeCheckout) CreateSession(email, priceID string) (*CheckoutSession, error) {
	if priceID == "" {
		return nil, errors.Validation("priceId is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.StripeSuccessURL),
		CancelURL:  stripe.String(s.cfg.StripeCancelURL),
	}

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteFetch, "stripe checkout session failed")
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
