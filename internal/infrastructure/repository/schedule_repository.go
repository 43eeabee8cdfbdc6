package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"gorm.io/gorm"
)

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new closing schedule repository
func NewScheduleRepository(db *gorm.DB) domainRepo.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.ZReportSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.ZReportSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ZReportSchedule, error) {
	var schedule entity.ZReportSchedule
	err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &schedule, err
}

func (r *scheduleRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]entity.ZReportSchedule, error) {
	var schedules []entity.ZReportSchedule
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("terminal_id ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepository) ListEnabled(ctx context.Context) ([]entity.ZReportSchedule, error) {
	var schedules []entity.ZReportSchedule
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepository) RecordOutcome(ctx context.Context, id uuid.UUID, executedAt time.Time, outcome, skipReason string) error {
	return r.db.WithContext(ctx).Model(&entity.ZReportSchedule{}).
		Where("id = ?", id).
		Select("last_executed_at", "last_outcome", "last_skip_reason").
		Updates(map[string]interface{}{
			"last_executed_at": executedAt,
			"last_outcome":     outcome,
			"last_skip_reason": skipReason,
		}).Error
}
