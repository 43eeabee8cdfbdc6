package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	infrarepo "github.com/tillpoint/fiscal-api/internal/infrastructure/repository"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db            *gorm.DB
	reports       domainRepo.ZReportRepository
	periods       domainRepo.WorkPeriodRepository
	sales         domainRepo.SalesRepository
	thresholds    domainRepo.ThresholdRepository
	users         domainRepo.UserRepository
	audits        domainRepo.AuditLogRepository
	outbox        domainRepo.OutboxRepository
	schedules     domainRepo.ScheduleRepository
	reportSvc     *ZReportService
	consolidation *ConsolidationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection so every query sees the same in-memory database.
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

	env := &testEnv{
		db:         db,
		reports:    infrarepo.NewZReportRepository(db),
		periods:    infrarepo.NewWorkPeriodRepository(db),
		sales:      infrarepo.NewSalesRepository(db),
		thresholds: infrarepo.NewThresholdRepository(db),
		users:      infrarepo.NewUserRepository(db),
		audits:     infrarepo.NewAuditLogRepository(db),
		outbox:     infrarepo.NewOutboxRepository(db),
		schedules:  infrarepo.NewScheduleRepository(db),
	}
	integrity := NewIntegrityService()
	env.reportSvc = NewZReportService(
		env.reports, env.periods, env.sales, env.thresholds,
		env.users, env.audits, NewSnapshotService(env.sales), integrity,
	)
	env.consolidation = NewConsolidationService(env.reports, env.periods, env.thresholds, integrity)
	return env
}

func testCtx() context.Context {
	return infrarepo.WithSkipStoreScope(context.Background(), true)
}

func (e *testEnv) seedUser(t *testing.T, role string) *entity.User {
	t.Helper()
	user := &entity.User{
		FirstName: "Test",
		LastName:  role,
		Email:     uuid.NewString() + "@test.local",
		Role:      role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// seedPeriod opens a work period with a float of 100 and settled sales of
// 500 cash + 400 card (tax 50 + 40), so expected cash comes out at 600.
func (e *testEnv) seedPeriod(t *testing.T, storeID uuid.UUID, terminal string, opener uuid.UUID) *entity.WorkPeriod {
	t.Helper()
	period := &entity.WorkPeriod{
		StoreID:      storeID,
		TerminalID:   terminal,
		OpenedByID:   opener,
		OpeningFloat: decimal.NewFromInt(100),
		Status:       enum.WorkPeriodOpen,
		OpenedAt:     time.Now().UTC().Add(-8 * time.Hour),
	}
	require.NoError(t, e.db.Create(period).Error)

	txs := []entity.SalesTransaction{
		{
			ID: uuid.New(), WorkPeriodID: period.ID, Status: entity.SalesStatusSettled,
			PaymentMethod: "cash", GrossAmount: decimal.NewFromInt(500),
			TaxAmount: decimal.NewFromInt(50), OccurredAt: time.Now().UTC(),
		},
		{
			ID: uuid.New(), WorkPeriodID: period.ID, Status: entity.SalesStatusSettled,
			PaymentMethod: "card", GrossAmount: decimal.NewFromInt(400),
			TaxAmount: decimal.NewFromInt(40), OccurredAt: time.Now().UTC(),
		},
	}
	require.NoError(t, e.db.Create(&txs).Error)

	movement := &entity.CashMovement{
		ID: uuid.New(), WorkPeriodID: period.ID,
		Kind: entity.CashMovementSale, Amount: decimal.NewFromInt(500),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(movement).Error)
	return period
}

func countedCash(v int64) *decimal.Decimal {
	c := decimal.NewFromInt(v)
	return &c
}

func (e *testEnv) approveAuditCount(t *testing.T, ctx context.Context, reportID uuid.UUID) int {
	t.Helper()
	entries, err := e.audits.ListByEntity(ctx, "z_report", reportID.String())
	require.NoError(t, err)
	count := 0
	for _, entry := range entries {
		if entry.Action == entity.AuditActionApprove {
			count++
		}
	}
	return count
}

func TestGenerateSealsPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	output, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	require.True(t, output.Created)

	report := output.Report
	assert.Equal(t, int64(1), report.SequenceNumber)
	assert.Equal(t, enum.ReportKindTerminal, report.Kind)
	assert.Empty(t, report.PreviousHash)
	assert.Len(t, report.ContentHash, 64)
	assert.Equal(t, HashAlgorithm, report.HashAlgorithm)
	assert.Contains(t, report.FormattedNumber, "Z-")

	assert.True(t, report.GrossSales.Equal(decimal.NewFromInt(900)), "gross %s", report.GrossSales)
	assert.True(t, report.NetSales.Equal(decimal.NewFromInt(810)), "net %s", report.NetSales)
	assert.True(t, report.ExpectedCash.Equal(decimal.NewFromInt(600)))
	assert.True(t, report.Variance.IsZero())
	assert.Equal(t, enum.VarianceExact, report.VarianceLevel)
	assert.Equal(t, enum.ApprovalNone, report.ApprovalStatus)
	assert.Len(t, report.Payments, 2)

	// The period closed in the same commit.
	closed, err := env.periods.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.WorkPeriodClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	// Delivery intent and audit trail committed atomically with the record.
	rows, err := env.outbox.ListByReport(ctx, report.ID.String())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, entity.OutboxStatusPending, row.Status)
	}

	entries, err := env.audits.ListByEntity(ctx, "z_report", report.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditActionGenerate, entries[0].Action)
}

func TestGenerateSequencesAreContiguousAndChained(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	var previous string
	for i, terminal := range []string{"T1", "T2", "T3"} {
		period := env.seedPeriod(t, storeID, terminal, operator.ID)
		output, err := env.reportSvc.Generate(ctx, &GenerateInput{
			WorkPeriodID:      period.ID,
			ActualCashCounted: countedCash(600),
			UserID:            operator.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), output.Report.SequenceNumber)
		assert.Equal(t, previous, output.Report.PreviousHash)
		previous = output.Report.ContentHash
	}

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current)
}

func TestConcurrentGenerateAcrossDistinctPeriods(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	periods := make([]*entity.WorkPeriod, 4)
	for i := range periods {
		periods[i] = env.seedPeriod(t, storeID, fmt.Sprintf("T%d", i+1), operator.ID)
	}

	outputs := make([]*GenerateOutput, len(periods))
	errs := make([]error, len(periods))
	var wg sync.WaitGroup
	for i := range periods {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = env.reportSvc.Generate(ctx, &GenerateInput{
				WorkPeriodID:      periods[i].ID,
				ActualCashCounted: countedCash(600),
				UserID:            operator.ID,
			})
		}(i)
	}
	wg.Wait()

	// Every period sealed, and the store chain handed out each number
	// exactly once with no holes.
	seen := make(map[int64]bool, len(periods))
	for i := range outputs {
		require.NoError(t, errs[i])
		require.True(t, outputs[i].Created)
		seen[outputs[i].Report.SequenceNumber] = true
	}
	for n := int64(1); n <= int64(len(periods)); n++ {
		assert.True(t, seen[n], "sequence %d not allocated", n)
	}

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(periods)), current)
}

func TestConcurrentGenerateForSamePeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	const callers = 8
	outputs := make([]*GenerateOutput, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = env.reportSvc.Generate(ctx, &GenerateInput{
				WorkPeriodID:      period.ID,
				ActualCashCounted: countedCash(600),
				UserID:            operator.ID,
			})
		}(i)
	}
	wg.Wait()

	// One caller inserts; everyone else replays the same sealed record.
	created := 0
	for i := range outputs {
		require.NoError(t, errs[i])
		assert.Equal(t, outputs[0].Report.ID, outputs[i].Report.ID)
		assert.Equal(t, int64(1), outputs[i].Report.SequenceNumber)
		if outputs[i].Created {
			created++
		}
	}
	assert.Equal(t, 1, created)

	var rows int64
	require.NoError(t, env.db.Model(&entity.ZReport{}).
		Where("store_id = ?", storeID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
}

func TestGenerateIsIdempotentPerPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	first, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Report.ID, second.Report.ID)

	// The retry consumed no sequence number.
	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
}

func TestGenerateBlockedPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	openOrder := &entity.SalesTransaction{
		ID: uuid.New(), WorkPeriodID: period.ID, Status: entity.SalesStatusOpen,
		PaymentMethod: "cash", GrossAmount: decimal.NewFromInt(25),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, env.db.Create(openOrder).Error)

	_, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotEmpty(t, appErr.Errors)
	assert.Equal(t, IssueOpenOrders, appErr.Errors[0].Field)

	var reportCount int64
	require.NoError(t, env.db.Model(&entity.ZReport{}).Count(&reportCount).Error)
	assert.Zero(t, reportCount)

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Zero(t, current)

	stillOpen, err := env.periods.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.WorkPeriodOpen, stillOpen.Status)
}

func TestGenerateRequiresCashCountUnderDefaultPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, uuid.New(), "T1", operator.ID)

	_, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID: period.ID,
		UserID:       operator.ID,
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotEmpty(t, appErr.Errors)
	assert.Equal(t, IssueCashCountRequired, appErr.Errors[0].Field)
}

func TestApprovalWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	manager := env.seedUser(t, entity.RoleManager)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	require.NoError(t, env.thresholds.Upsert(ctx, &entity.VarianceThreshold{
		StoreID:          storeID,
		WarningAbs:       decimal.NewFromInt(10),
		WarningPct:       decimal.NewFromInt(1),
		CriticalAbs:      decimal.NewFromInt(50),
		CriticalPct:      decimal.NewFromInt(5),
		ApproveOnWarning: true,
		RequireCashCount: true,
	}))

	// Counted 585 against expected 600: -15 trips the warning limit.
	output, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(585),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, enum.VarianceWarning, output.Report.VarianceLevel)
	assert.Equal(t, enum.ApprovalPending, output.Report.ApprovalStatus)

	// Operators cannot sign off variances, and a refused attempt leaves no
	// approval trail.
	_, err = env.reportSvc.Approve(ctx, output.Report.ID, operator.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Zero(t, env.approveAuditCount(t, ctx, output.Report.ID))

	approved, err := env.reportSvc.Approve(ctx, output.Report.ID, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ApprovalApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, manager.ID, *approved.ApprovedByID)

	// The sign-off committed together with exactly one audit entry.
	assert.Equal(t, 1, env.approveAuditCount(t, ctx, output.Report.ID))

	// The hash was sealed before approval and still verifies after it.
	verify, err := env.reportSvc.VerifyReport(ctx, approved.ID)
	require.NoError(t, err)
	assert.True(t, verify.Valid)

	_, err = env.reportSvc.Approve(ctx, output.Report.ID, manager.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
	assert.Equal(t, 1, env.approveAuditCount(t, ctx, output.Report.ID))
}

func TestCorrectionIsAppendOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	manager := env.seedUser(t, entity.RoleManager)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	output, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	original := output.Report

	_, err = env.reportSvc.Correct(ctx, original.ID, "wrong float entered", operator.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	correction, err := env.reportSvc.Correct(ctx, original.ID, "wrong float entered", manager.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReportKindCorrection, correction.Kind)
	assert.Equal(t, int64(2), correction.SequenceNumber)
	require.NotNil(t, correction.CorrectsReportID)
	assert.Equal(t, original.ID, *correction.CorrectsReportID)
	assert.Equal(t, original.ContentHash, correction.PreviousHash)
	assert.Nil(t, correction.WorkPeriodID)

	// The original record is untouched.
	reloaded, err := env.reportSvc.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ContentHash, reloaded.ContentHash)
	assert.True(t, original.GrossSales.Equal(reloaded.GrossSales))

	_, err = env.reportSvc.Correct(ctx, correction.ID, "again", manager.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}

func TestVerifyBatchDetectsTamperedRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	var ids []uuid.UUID
	for _, terminal := range []string{"T1", "T2"} {
		period := env.seedPeriod(t, storeID, terminal, operator.ID)
		output, err := env.reportSvc.Generate(ctx, &GenerateInput{
			WorkPeriodID:      period.ID,
			ActualCashCounted: countedCash(600),
			UserID:            operator.ID,
		})
		require.NoError(t, err)
		ids = append(ids, output.Report.ID)
	}

	// Tamper with a sealed column behind the repository's back.
	require.NoError(t, env.db.Model(&entity.ZReport{}).
		Where("id = ?", ids[0]).
		UpdateColumn("gross_sales", decimal.NewFromInt(1)).Error)

	single, err := env.reportSvc.VerifyReport(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, single.Valid)
	assert.Contains(t, single.Reason, "content hash mismatch")

	today := time.Now().UTC()
	results, err := env.reportSvc.VerifyBatch(ctx, storeID, today, today)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Valid)
	assert.True(t, results[1].Valid)
}

func TestVerifyBatchChecksFirstRecordOfRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	var ids []uuid.UUID
	for _, terminal := range []string{"T1", "T2", "T3"} {
		period := env.seedPeriod(t, storeID, terminal, operator.ID)
		output, err := env.reportSvc.Generate(ctx, &GenerateInput{
			WorkPeriodID:      period.ID,
			ActualCashCounted: countedCash(600),
			UserID:            operator.ID,
		})
		require.NoError(t, err)
		ids = append(ids, output.Report.ID)
	}

	// Re-seal the second record against a forged link. The record is
	// internally consistent again, so only the predecessor on record can
	// give it away.
	second, err := env.reports.GetByID(ctx, ids[1])
	require.NoError(t, err)
	NewIntegrityService().Seal(second, "0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, env.db.Model(&entity.ZReport{}).
		Where("id = ?", ids[1]).
		Select("previous_hash", "content_hash").
		Updates(map[string]interface{}{
			"previous_hash": second.PreviousHash,
			"content_hash":  second.ContentHash,
		}).Error)

	// Push the first record out of the queried window so the forged one
	// opens the range.
	require.NoError(t, env.db.Model(&entity.ZReport{}).
		Where("id = ?", ids[0]).
		UpdateColumn("report_date", time.Now().UTC().AddDate(0, 0, -1)).Error)

	today := time.Now().UTC()
	results, err := env.reportSvc.VerifyBatch(ctx, storeID, today, today)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ids[1], results[0].ReportID)
	assert.False(t, results[0].Valid)
	// The third record's claimed link broke along with its predecessor.
	assert.False(t, results[1].Valid)
}

func TestCheckForSequenceGaps(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	for _, terminal := range []string{"T1", "T2", "T3"} {
		period := env.seedPeriod(t, storeID, terminal, operator.ID)
		_, err := env.reportSvc.Generate(ctx, &GenerateInput{
			WorkPeriodID:      period.ID,
			ActualCashCounted: countedCash(600),
			UserID:            operator.ID,
		})
		require.NoError(t, err)
	}

	today := time.Now().UTC()
	result, err := env.reportSvc.CheckForSequenceGaps(ctx, storeID, today, today)
	require.NoError(t, err)
	assert.Empty(t, result.Missing)

	// Simulate a lost record; the scan reports it and repairs nothing.
	require.NoError(t, env.db.
		Where("store_id = ? AND sequence_number = ?", storeID, int64(2)).
		Delete(&entity.ZReport{}).Error)

	result, err = env.reportSvc.CheckForSequenceGaps(ctx, storeID, today, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.FromSequence)
	assert.Equal(t, int64(3), result.ToSequence)
	assert.Equal(t, []int64{2}, result.Missing)
}

func TestPreviewHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	period := env.seedPeriod(t, storeID, "T1", operator.ID)

	preview, err := env.reportSvc.Preview(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, preview.ExpectedCash.Equal(decimal.NewFromInt(600)))
	assert.True(t, preview.Snapshot.GrossSales.Equal(decimal.NewFromInt(900)))

	// Default policy requires a cash count, so validation flags it.
	validation, err := env.reportSvc.ValidateCanGenerate(ctx, period.ID)
	require.NoError(t, err)
	assert.False(t, validation.CanGenerate)

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Zero(t, current)

	stillOpen, err := env.periods.GetByID(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.WorkPeriodOpen, stillOpen.Status)
}
