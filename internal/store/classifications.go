package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/id"
)

// ErrClassificationNotFound is returned when no classification exists for a lookup.
var ErrClassificationNotFound = ErrNotFound.WithMessage("classification not found")

// UpsertClassification creates or overwrites the classification record for a
// (product, shop) pair. A repeat write keeps the original ID and CreatedAt so
// the row's identity is stable across re-classification.
func (s *Store) UpsertClassification(ctx context.Context, c *domain.Classification) (*domain.Classification, error) {
	existing, err := s.Classifications.GetByIndex(ctx, "product_shop", c.UpsertKey())
	if err == nil {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.Touch()
		if err := s.Classifications.Update(ctx, c.ID, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	newID, err := id.Generate("cls")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.ID = newID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.Classifications.Create(ctx, c.ID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetClassification retrieves a classification by its record ID.
func (s *Store) GetClassification(ctx context.Context, classificationID string) (*domain.Classification, error) {
	c, err := s.Classifications.Get(ctx, classificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrClassificationNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetClassificationForProduct retrieves the classification for a product in a shop.
func (s *Store) GetClassificationForProduct(ctx context.Context, productID, shopDomain string) (*domain.Classification, error) {
	key := productID + "|" + shopDomain
	c, err := s.Classifications.GetByIndex(ctx, "product_shop", key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrClassificationNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListClassifications returns all classifications for a shop, newest first.
func (s *Store) ListClassifications(ctx context.Context, shopDomain string) ([]*domain.Classification, error) {
	var results []*domain.Classification
	for c, err := range s.Classifications.List(ctx) {
		if err != nil {
			return nil, err
		}
		if c.ShopDomain != shopDomain {
			continue
		}
		results = append(results, c)
	}

	// Sort by last update descending, then by ID for stability.
	sort.Slice(results, func(i, j int) bool {
		if !results[i].UpdatedAt.Equal(results[j].UpdatedAt) {
			return results[i].UpdatedAt.After(results[j].UpdatedAt)
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

// DeleteClassification removes a classification record. Idempotent.
func (s *Store) DeleteClassification(ctx context.Context, classificationID string) error {
	return s.Classifications.Delete(ctx, classificationID)
}
