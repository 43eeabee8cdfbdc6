package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	infrarepo "github.com/tillpoint/fiscal-api/internal/infrastructure/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type triggerEnv struct {
	db         *gorm.DB
	reports    domainRepo.ZReportRepository
	periods    domainRepo.WorkPeriodRepository
	users      domainRepo.UserRepository
	audits     domainRepo.AuditLogRepository
	schedules  domainRepo.ScheduleRepository
	thresholds domainRepo.ThresholdRepository
	outbox     domainRepo.OutboxRepository
	reportSvc  *service.ZReportService
	trigger    *ScheduleTrigger
	logger     *logrus.Logger
}

func newTriggerEnv(t *testing.T) *triggerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.WorkPeriod{},
		&entity.SalesTransaction{},
		&entity.CashMovement{},
		&entity.FiscalSequence{},
		&entity.ZReport{},
		&entity.ZReportPayment{},
		&entity.ZReportSource{},
		&entity.VarianceThreshold{},
		&entity.ZReportSchedule{},
		&entity.AuditLog{},
		&entity.ReportOutbox{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &triggerEnv{
		db:         db,
		reports:    infrarepo.NewZReportRepository(db),
		periods:    infrarepo.NewWorkPeriodRepository(db),
		users:      infrarepo.NewUserRepository(db),
		audits:     infrarepo.NewAuditLogRepository(db),
		schedules:  infrarepo.NewScheduleRepository(db),
		thresholds: infrarepo.NewThresholdRepository(db),
		outbox:     infrarepo.NewOutboxRepository(db),
		logger:     logger,
	}
	sales := infrarepo.NewSalesRepository(db)
	env.reportSvc = service.NewZReportService(
		env.reports, env.periods, sales, env.thresholds,
		env.users, env.audits, service.NewSnapshotService(sales), service.NewIntegrityService(),
	)
	env.trigger = NewScheduleTrigger(env.schedules, env.periods, env.users, env.audits, env.reportSvc, time.Second, logger)

	// The built-in actor scheduled closings are attributed to.
	system := &entity.User{
		FirstName: "Schedule",
		LastName:  "Trigger",
		Email:     entity.SystemUserEmail,
		Role:      entity.RoleSystem,
	}
	require.NoError(t, db.Create(system).Error)

	return env
}

// dueSchedule creates an enabled daily schedule whose last execution was
// yesterday, so it is due on the next pass.
func (e *triggerEnv) dueSchedule(t *testing.T, storeID uuid.UUID, terminal string) *entity.ZReportSchedule {
	t.Helper()
	yesterday := time.Now().Add(-24 * time.Hour)
	schedule := &entity.ZReportSchedule{
		StoreID:        storeID,
		TerminalID:     terminal,
		TimeOfDay:      "00:00",
		Frequency:      entity.ScheduleFrequencyDaily,
		Enabled:        true,
		LastExecutedAt: &yesterday,
	}
	require.NoError(t, e.db.Create(schedule).Error)
	return schedule
}

func (e *triggerEnv) openPeriod(t *testing.T, storeID uuid.UUID, terminal string) *entity.WorkPeriod {
	t.Helper()
	period := &entity.WorkPeriod{
		StoreID:      storeID,
		TerminalID:   terminal,
		OpenedByID:   uuid.New(),
		OpeningFloat: decimal.NewFromInt(100),
		Status:       enum.WorkPeriodOpen,
		OpenedAt:     time.Now().UTC().Add(-6 * time.Hour),
	}
	require.NoError(t, e.db.Create(period).Error)

	tx := &entity.SalesTransaction{
		ID: uuid.New(), WorkPeriodID: period.ID, Status: entity.SalesStatusSettled,
		PaymentMethod: "cash", GrossAmount: decimal.NewFromInt(300),
		TaxAmount: decimal.NewFromInt(30), OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(tx).Error)
	movement := &entity.CashMovement{
		ID: uuid.New(), WorkPeriodID: period.ID,
		Kind: entity.CashMovementSale, Amount: decimal.NewFromInt(300),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(movement).Error)
	return period
}

// relaxedPolicy allows autonomous closings: the trigger has no cash count to
// offer, so RequireCashCount must be off for its stores.
func (e *triggerEnv) relaxedPolicy(t *testing.T, storeID uuid.UUID) {
	t.Helper()
	require.NoError(t, e.thresholds.Upsert(context.Background(), &entity.VarianceThreshold{
		StoreID:          storeID,
		WarningAbs:       decimal.NewFromInt(10),
		WarningPct:       decimal.NewFromInt(1),
		CriticalAbs:      decimal.NewFromInt(50),
		CriticalPct:      decimal.NewFromInt(5),
		RequireCashCount: false,
	}))
}

func TestRunNowGeneratesForDueSchedule(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()
	storeID := uuid.New()

	env.relaxedPolicy(t, storeID)
	period := env.openPeriod(t, storeID, "T1")
	schedule := env.dueSchedule(t, storeID, "T1")

	env.trigger.RunNow(ctx)

	report, err := env.reports.GetByWorkPeriodID(ctx, period.ID)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(1), report.SequenceNumber)

	// Attributed to the system actor, and the count defaults to expected.
	system, err := env.users.GetSystemUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, system.ID, report.GeneratedByID)
	assert.True(t, report.Variance.IsZero())

	updated, err := env.schedules.GetByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, updated.LastOutcome)
	assert.NotNil(t, updated.LastExecutedAt)
}

func TestRunNowSkipsWhenNoOpenPeriod(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()
	storeID := uuid.New()

	schedule := env.dueSchedule(t, storeID, "T1")

	env.trigger.RunNow(ctx)

	updated, err := env.schedules.GetByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, updated.LastOutcome)
	assert.Contains(t, updated.LastSkipReason, "no open work period")

	entries, err := env.audits.ListByEntity(ctx, "z_report_schedule", schedule.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditActionScheduleSkip, entries[0].Action)
}

func TestRunNowSkipsOnBlockingIssue(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()
	storeID := uuid.New()

	// Default policy requires a cash count, which the trigger cannot supply.
	period := env.openPeriod(t, storeID, "T1")
	schedule := env.dueSchedule(t, storeID, "T1")

	env.trigger.RunNow(ctx)

	updated, err := env.schedules.GetByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, updated.LastOutcome)
	assert.Contains(t, updated.LastSkipReason, "cash_count_required")

	// Nothing was sealed and the period is still open.
	report, err := env.reports.GetByWorkPeriodID(ctx, period.ID)
	require.NoError(t, err)
	assert.Nil(t, report)

	reloaded, err := env.periods.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.WorkPeriodOpen, reloaded.Status)
}

func TestRunNowIgnoresSchedulesNotDue(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()
	storeID := uuid.New()

	env.relaxedPolicy(t, storeID)
	period := env.openPeriod(t, storeID, "T1")

	// Executed within the current window, so the next run is tomorrow.
	justNow := time.Now()
	schedule := &entity.ZReportSchedule{
		StoreID:        storeID,
		TerminalID:     "T1",
		TimeOfDay:      "00:00",
		Frequency:      entity.ScheduleFrequencyDaily,
		Enabled:        true,
		LastExecutedAt: &justNow,
	}
	require.NoError(t, env.db.Create(schedule).Error)

	env.trigger.RunNow(ctx)

	report, err := env.reports.GetByWorkPeriodID(ctx, period.ID)
	require.NoError(t, err)
	assert.Nil(t, report)
}
