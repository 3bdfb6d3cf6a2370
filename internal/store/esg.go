package store

import (
	"context"
	"errors"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/id"
)

// ErrESGScoreNotFound is returned when no ESG score exists for a lookup.
var ErrESGScoreNotFound = ErrNotFound.WithMessage("ESG score not found")

// UpsertESGScore creates or overwrites the ESG score for a (product, shop)
// pair, preserving record identity on overwrite.
func (s *Store) UpsertESGScore(ctx context.Context, score *domain.ESGScore) (*domain.ESGScore, error) {
	existing, err := s.ESGScores.GetByIndex(ctx, "product_shop", score.UpsertKey())
	if err == nil {
		score.ID = existing.ID
		score.CreatedAt = existing.CreatedAt
		score.Touch()
		if err := s.ESGScores.Update(ctx, score.ID, score); err != nil {
			return nil, err
		}
		return score, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	newID, err := id.Generate("esg")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	score.ID = newID
	score.CreatedAt = now
	score.UpdatedAt = now

	if err := s.ESGScores.Create(ctx, score.ID, score); err != nil {
		return nil, err
	}
	return score, nil
}

// GetESGScoreForProduct retrieves the ESG score for a product in a shop.
func (s *Store) GetESGScoreForProduct(ctx context.Context, productID, shopDomain string) (*domain.ESGScore, error) {
	key := productID + "|" + shopDomain
	score, err := s.ESGScores.GetByIndex(ctx, "product_shop", key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrESGScoreNotFound
		}
		return nil, err
	}
	return score, nil
}

// SummarizeESGScores aggregates a shop's persisted scores into risk buckets.
func (s *Store) SummarizeESGScores(ctx context.Context, shopDomain string) (*domain.ESGSummary, error) {
	summary := &domain.ESGSummary{ShopDomain: shopDomain}

	var totalOverall float64
	var lastUpdated time.Time

	for score, err := range s.ESGScores.List(ctx) {
		if err != nil {
			return nil, err
		}
		if score.ShopDomain != shopDomain {
			continue
		}

		summary.Scored++
		totalOverall += score.Overall

		switch score.RiskLevel {
		case domain.ESGRiskLow:
			summary.LowRisk++
		case domain.ESGRiskMedium:
			summary.MediumRisk++
		case domain.ESGRiskHigh:
			summary.HighRisk++
		}

		if score.UpdatedAt.After(lastUpdated) {
			lastUpdated = score.UpdatedAt
		}
	}

	if summary.Scored > 0 {
		summary.AvgOverall = totalOverall / float64(summary.Scored)
		summary.LastUpdated = lastUpdated.UTC().Format(time.RFC3339)
	}

	return summary, nil
}
