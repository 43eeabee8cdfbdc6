package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"gorm.io/gorm"
)

type workPeriodRepository struct {
	db *gorm.DB
}

// NewWorkPeriodRepository creates a new work period repository
func NewWorkPeriodRepository(db *gorm.DB) domainRepo.WorkPeriodRepository {
	return &workPeriodRepository{db: db}
}

func (r *workPeriodRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkPeriod, error) {
	var period entity.WorkPeriod
	err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &period, err
}

func (r *workPeriodRepository) GetOpenByTerminal(ctx context.Context, storeID uuid.UUID, terminalID string) (*entity.WorkPeriod, error) {
	var period entity.WorkPeriod
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND terminal_id = ? AND status = ?", storeID, terminalID, enum.WorkPeriodOpen).
		Order("opened_at DESC").
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &period, err
}

func (r *workPeriodRepository) ListOpenByStore(ctx context.Context, storeID uuid.UUID) ([]entity.WorkPeriod, error) {
	var periods []entity.WorkPeriod
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, enum.WorkPeriodOpen).
		Order("terminal_id ASC").
		Find(&periods).Error
	return periods, err
}
