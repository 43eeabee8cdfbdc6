package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
)

// ScheduleService manages autonomous closing schedules.
type ScheduleService struct {
	scheduleRepo  repository.ScheduleRepository
	thresholdRepo repository.ThresholdRepository
}

// NewScheduleService creates a new schedule service
func NewScheduleService(scheduleRepo repository.ScheduleRepository, thresholdRepo repository.ThresholdRepository) *ScheduleService {
	return &ScheduleService{
		scheduleRepo:  scheduleRepo,
		thresholdRepo: thresholdRepo,
	}
}

// ScheduleInput represents a create/update schedule request
type ScheduleInput struct {
	StoreID     uuid.UUID
	TerminalID  string
	TimeOfDay   string
	Frequency   string
	Weekday     time.Weekday
	Enabled     bool
	WarningLead time.Duration
}

func validateScheduleInput(input *ScheduleInput) error {
	var issues []apperror.FieldError

	if input.TerminalID == "" {
		issues = append(issues, apperror.FieldError{Field: "terminal_id", Message: "Terminal is required"})
	}
	if _, err := time.Parse("15:04", input.TimeOfDay); err != nil {
		issues = append(issues, apperror.FieldError{Field: "time_of_day", Message: "Must be HH:MM"})
	}
	if input.Frequency != entity.ScheduleFrequencyDaily && input.Frequency != entity.ScheduleFrequencyWeekly {
		issues = append(issues, apperror.FieldError{Field: "frequency", Message: "Must be daily or weekly"})
	}

	if len(issues) > 0 {
		return apperror.NewValidationError(issues)
	}
	return nil
}

// Create registers a new closing schedule.
func (s *ScheduleService) Create(ctx context.Context, input *ScheduleInput) (*entity.ZReportSchedule, error) {
	if err := validateScheduleInput(input); err != nil {
		return nil, err
	}

	schedule := &entity.ZReportSchedule{
		StoreID:     input.StoreID,
		TerminalID:  input.TerminalID,
		TimeOfDay:   input.TimeOfDay,
		Frequency:   input.Frequency,
		Weekday:     input.Weekday,
		Enabled:     input.Enabled,
		WarningLead: input.WarningLead,
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// Update modifies an existing schedule's configuration.
func (s *ScheduleService) Update(ctx context.Context, id uuid.UUID, input *ScheduleInput) (*entity.ZReportSchedule, error) {
	if err := validateScheduleInput(input); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, apperror.NewNotFoundError("Schedule")
	}

	schedule.TerminalID = input.TerminalID
	schedule.TimeOfDay = input.TimeOfDay
	schedule.Frequency = input.Frequency
	schedule.Weekday = input.Weekday
	schedule.Enabled = input.Enabled
	schedule.WarningLead = input.WarningLead

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListByStore returns a store's schedules.
func (s *ScheduleService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]entity.ZReportSchedule, error) {
	return s.scheduleRepo.ListByStore(ctx, storeID)
}

// GetThreshold returns the store's variance policy (configured or default).
func (s *ScheduleService) GetThreshold(ctx context.Context, storeID uuid.UUID) (*entity.VarianceThreshold, error) {
	return s.thresholdRepo.GetByStore(ctx, storeID)
}

// UpsertThreshold writes the store's variance policy.
func (s *ScheduleService) UpsertThreshold(ctx context.Context, threshold *entity.VarianceThreshold) (*entity.VarianceThreshold, error) {
	if threshold.WarningAbs.GreaterThan(threshold.CriticalAbs) {
		return nil, apperror.NewBadRequestError("Warning threshold must not exceed critical threshold")
	}
	if err := s.thresholdRepo.Upsert(ctx, threshold); err != nil {
		return nil, err
	}
	return s.thresholdRepo.GetByStore(ctx, threshold.StoreID)
}
