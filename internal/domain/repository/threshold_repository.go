package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// ThresholdRepository defines the interface for variance policy data
type ThresholdRepository interface {
	// GetByStore returns the store's configured policy, or the default policy
	// when none is configured. Never returns nil with a nil error.
	GetByStore(ctx context.Context, storeID uuid.UUID) (*entity.VarianceThreshold, error)
	Upsert(ctx context.Context, threshold *entity.VarianceThreshold) error
}
