package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/tarifflyapp/tariffly-server/internal/billing"
	"github.com/tarifflyapp/tariffly-server/internal/catalog"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/domain"
	domainerrors "github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
	"github.com/tarifflyapp/tariffly-server/internal/store"
)

// BillingService manages shop subscriptions on both payment rails.
type BillingService struct {
	catalogCfg config.CatalogConfig
	biller     *billing.ShopifyBiller
	stripe     *billing.StripeCheckout
	store      *store.Store
	httpClient *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	baseURL    string // test override
}

// NewBillingService creates a new billing service. stripe may be nil when no
// Stripe key is configured.
func NewBillingService(
	catalogCfg config.CatalogConfig,
	biller *billing.ShopifyBiller,
	stripe *billing.StripeCheckout,
	st *store.Store,
	httpClient *http.Client,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		catalogCfg: catalogCfg,
		biller:     biller,
		stripe:     stripe,
		store:      st,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// WithBaseURL redirects Admin API traffic to a fixed base URL. Test hook.
func (s *BillingService) WithBaseURL(base string) *BillingService {
	s.baseURL = base
	return s
}

// poster builds the per-shop GraphQL poster for billing mutations.
func (s *BillingService) poster(creds ShopCredentials) billing.GraphQLPoster {
	c := catalog.NewGraphQLClient(s.httpClient, s.limiter, s.catalogCfg.APIVersion, creds.ShopDomain, creds.AccessToken)
	if s.baseURL != "" {
		c = c.WithBaseURL(s.baseURL)
	}
	return c
}

// SubscribeResult is handed back after starting a subscription; the merchant
// approves the charge at the confirmation URL.
type SubscribeResult struct {
	Subscription    *domain.Subscription `json:"subscription"`
	ConfirmationURL string               `json:"confirmation_url"`
	Warning         string               `json:"warning,omitempty"`
}

// Subscribe starts an app subscription for the named plan.
func (s *BillingService) Subscribe(ctx context.Context, creds ShopCredentials, planName string) (*SubscribeResult, error) {
	if err := requireCredentials(creds); err != nil {
		return nil, err
	}

	pending, err := s.biller.CreateSubscription(ctx, s.poster(creds), planName)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ShopDomain:      creds.ShopDomain,
		Plan:            pending.Plan,
		Status:          "pending",
		RemoteID:        pending.RemoteID,
		ConfirmationURL: pending.ConfirmationURL,
	}

	result := &SubscribeResult{ConfirmationURL: pending.ConfirmationURL}
	if _, err := s.store.UpsertSubscription(ctx, sub); err != nil {
		s.logger.Warn("Failed to persist subscription", "shop", creds.ShopDomain, "error", err)
		result.Warning = persistWarning
	}
	result.Subscription = sub

	return result, nil
}

// StatusResult is the current subscription state for a shop.
type StatusResult struct {
	HasSubscription bool                 `json:"has_subscription"`
	Subscription    *domain.Subscription `json:"subscription,omitempty"`
	Plan            *domain.Plan         `json:"plan,omitempty"`
}

// Status returns a shop's subscription, refreshed from the Admin API when
// credentials allow it. A remote failure falls back to the stored state.
func (s *BillingService) Status(ctx context.Context, creds ShopCredentials) (*StatusResult, error) {
	sub, err := s.store.GetSubscriptionByShop(ctx, creds.ShopDomain)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &StatusResult{HasSubscription: false}, nil
		}
		return nil, err
	}

	if creds.AccessToken != "" && sub.RemoteID != "" {
		remoteStatus, err := s.biller.FetchStatus(ctx, s.poster(creds), sub.RemoteID)
		if err != nil {
			s.logger.Warn("Failed to refresh subscription status", "shop", creds.ShopDomain, "error", err)
		} else if remoteStatus != sub.Status {
			sub, err = s.store.UpdateSubscriptionStatus(ctx, creds.ShopDomain, remoteStatus)
			if err != nil {
				return nil, err
			}
		}
	}

	result := &StatusResult{HasSubscription: true, Subscription: sub}
	if plan, ok := domain.Plans[sub.Plan]; ok {
		result.Plan = &plan
	}
	return result, nil
}

// Cancel marks a shop's subscription cancelled.
func (s *BillingService) Cancel(ctx context.Context, shopDomain string) (*domain.Subscription, error) {
	if shopDomain == "" {
		return nil, domainerrors.Validation("shop domain is required")
	}
	return s.store.UpdateSubscriptionStatus(ctx, shopDomain, "cancelled")
}

// Activate marks a shop's subscription active. Called from the billing
// return flow after the merchant approves the charge.
func (s *BillingService) Activate(ctx context.Context, shopDomain string) (*domain.Subscription, error) {
	if shopDomain == "" {
		return nil, domainerrors.Validation("shop domain is required")
	}
	return s.store.UpdateSubscriptionStatus(ctx, shopDomain, "active")
}

// Checkout starts a Stripe checkout session for card payments.
func (s *BillingService) Checkout(email, priceID string) (*billing.CheckoutSession, error) {
	if s.stripe == nil {
		return nil, domainerrors.Validation("stripe is not configured")
	}
	return s.stripe.CreateSession(email, priceID)
}

// Plans lists the offered billing tiers, cheapest first.
func (s *BillingService) Plans() []domain.Plan {
	plans := make([]domain.Plan, 0, len(domain.Plans))
	for _, p := range domain.Plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Price < plans[j].Price })
	return plans
}
