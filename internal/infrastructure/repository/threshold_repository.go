package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type thresholdRepository struct {
	db *gorm.DB
}

// NewThresholdRepository creates a new variance policy repository
func NewThresholdRepository(db *gorm.DB) domainRepo.ThresholdRepository {
	return &thresholdRepository{db: db}
}

func (r *thresholdRepository) GetByStore(ctx context.Context, storeID uuid.UUID) (*entity.VarianceThreshold, error) {
	var threshold entity.VarianceThreshold
	err := r.db.WithContext(ctx).First(&threshold, "store_id = ?", storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.DefaultVarianceThreshold(storeID), nil
	}
	if err != nil {
		return nil, err
	}
	return &threshold, nil
}

func (r *thresholdRepository) Upsert(ctx context.Context, threshold *entity.VarianceThreshold) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"warning_abs", "warning_pct", "critical_abs", "critical_pct",
				"approve_on_warning", "approve_on_critical", "require_cash_count",
				"updated_at",
			}),
		}).
		Create(threshold).Error
}
