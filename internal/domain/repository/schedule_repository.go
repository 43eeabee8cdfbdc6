package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// ScheduleRepository defines the interface for closing schedule data
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.ZReportSchedule) error
	Update(ctx context.Context, schedule *entity.ZReportSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ZReportSchedule, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]entity.ZReportSchedule, error)
	ListEnabled(ctx context.Context) ([]entity.ZReportSchedule, error)

	// RecordOutcome persists the execution bookkeeping after a definitive
	// outcome (success, skip, or a failure that should not re-fire within the
	// same due window).
	RecordOutcome(ctx context.Context, id uuid.UUID, executedAt time.Time, outcome, skipReason string) error
}
