package repository

import (
	"context"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
)

// FalRepository defines the interface for fal.ai API interactions.
type FalRepository interface {
	// GetUsage fetches usage data for the queried endpoints, following
	// pagination until the API reports no more pages. Queries for three or
	// more endpoints are issued sequentially per endpoint and merged.
	GetUsage(ctx context.Context, query entity.UsageQuery) (*entity.UsageResponse, error)

	// GetPricing fetches the unit-price table for the given endpoints
	// (all endpoints when ids is empty).
	GetPricing(ctx context.Context, endpointIDs []string) (entity.PricingMap, error)
}
