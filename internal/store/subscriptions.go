package store

import (
	"context"
	"errors"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/id"
)

// ErrSubscriptionNotFound is returned when no subscription exists for a lookup.
var ErrSubscriptionNotFound = ErrNotFound.WithMessage("subscription not found")

// UpsertSubscription creates or replaces the subscription record for a shop.
// One subscription per shop: starting a new plan overwrites the previous
// record in place. RemoteID is normalized to the canonical numeric form
// before it hits the index.
func (s *Store) UpsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	sub.RemoteID = domain.NormalizeSubscriptionID(sub.RemoteID)

	existing, err := s.Subscriptions.GetByIndex(ctx, "shop", sub.ShopDomain)
	if err == nil {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		sub.Touch()
		if err := s.Subscriptions.Update(ctx, sub.ID, sub); err != nil {
			return nil, err
		}
		return sub, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	newID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub.ID = newID
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if err := s.Subscriptions.Create(ctx, sub.ID, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubscriptionByShop retrieves a shop's subscription.
func (s *Store) GetSubscriptionByShop(ctx context.Context, shopDomain string) (*domain.Subscription, error) {
	sub, err := s.Subscriptions.GetByIndex(ctx, "shop", shopDomain)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// GetSubscriptionByRemoteID retrieves a subscription by its Shopify
// subscription ID. Accepts either the numeric or URI form.
func (s *Store) GetSubscriptionByRemoteID(ctx context.Context, remoteID string) (*domain.Subscription, error) {
	sub, err := s.Subscriptions.GetByIndex(ctx, "remote", domain.NormalizeSubscriptionID(remoteID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// UpdateSubscriptionStatus sets the status on a shop's subscription.
func (s *Store) UpdateSubscriptionStatus(ctx context.Context, shopDomain, status string) (*domain.Subscription, error) {
	sub, err := s.GetSubscriptionByShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	sub.Status = status
	sub.Touch()

	if err := s.Subscriptions.Update(ctx, sub.ID, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
