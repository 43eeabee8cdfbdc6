package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
)

func TestGetConsolidatedIsPartialWhileTerminalsAreOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	periodA := env.seedPeriod(t, storeID, "T1", operator.ID)
	_, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      periodA.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)

	// Second terminal still trading.
	env.seedPeriod(t, storeID, "T2", operator.ID)

	view, err := env.consolidation.GetConsolidated(ctx, storeID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, view.Partial)
	assert.Equal(t, []string{"T2"}, view.PendingTerminals)
	assert.Len(t, view.SourceReportIDs, 1)
	assert.True(t, view.GrossSales.Equal(decimal.NewFromInt(900)))

	// A partial day cannot be sealed.
	manager := env.seedUser(t, entity.RoleManager)
	_, err = env.consolidation.GenerateConsolidated(ctx, storeID, time.Now().UTC(), manager.ID)
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, "pending_terminal", appErr.Errors[0].Field)
}

func TestGetConsolidatedExcludesPendingApprovals(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)

	require.NoError(t, env.thresholds.Upsert(ctx, &entity.VarianceThreshold{
		StoreID:          storeID,
		WarningAbs:       decimal.NewFromInt(10),
		WarningPct:       decimal.NewFromInt(1),
		CriticalAbs:      decimal.NewFromInt(50),
		CriticalPct:      decimal.NewFromInt(5),
		ApproveOnWarning: true,
		RequireCashCount: true,
	}))

	period := env.seedPeriod(t, storeID, "T1", operator.ID)
	output, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(585),
		UserID:            operator.ID,
	})
	require.NoError(t, err)
	require.Equal(t, enum.ApprovalPending, output.Report.ApprovalStatus)

	view, err := env.consolidation.GetConsolidated(ctx, storeID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, view.Partial)
	assert.Empty(t, view.SourceReportIDs)
	assert.Equal(t, []uuid.UUID{output.Report.ID}, view.ExcludedReports)
	assert.True(t, view.GrossSales.IsZero())
}

func TestGenerateConsolidatedRollsUpTerminals(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	manager := env.seedUser(t, entity.RoleManager)

	for _, terminal := range []string{"T1", "T2"} {
		period := env.seedPeriod(t, storeID, terminal, operator.ID)
		_, err := env.reportSvc.Generate(ctx, &GenerateInput{
			WorkPeriodID:      period.ID,
			ActualCashCounted: countedCash(600),
			UserID:            operator.ID,
		})
		require.NoError(t, err)
	}

	report, err := env.consolidation.GenerateConsolidated(ctx, storeID, time.Now().UTC(), manager.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.ReportKindConsolidated, report.Kind)
	assert.Equal(t, int64(3), report.SequenceNumber)
	assert.Nil(t, report.TerminalID)
	assert.Nil(t, report.WorkPeriodID)
	assert.Contains(t, report.FormattedNumber, "ZC-")
	assert.True(t, report.GrossSales.Equal(decimal.NewFromInt(1800)), "gross %s", report.GrossSales)
	assert.True(t, report.ExpectedCash.Equal(decimal.NewFromInt(1200)))
	assert.Len(t, report.Sources, 2)
	assert.Len(t, report.ContentHash, 64)

	// Payment lines merged across terminals.
	require.Len(t, report.Payments, 2)
	for _, p := range report.Payments {
		assert.Equal(t, 2, p.Count)
	}

	// The rollup joins the same store chain as the terminal records.
	verify, err := env.reportSvc.VerifyReport(ctx, report.ID)
	require.NoError(t, err)
	assert.True(t, verify.Valid)
}

func TestGenerateConsolidatedIsIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	storeID := uuid.New()
	operator := env.seedUser(t, entity.RoleOperator)
	manager := env.seedUser(t, entity.RoleManager)

	period := env.seedPeriod(t, storeID, "T1", operator.ID)
	_, err := env.reportSvc.Generate(ctx, &GenerateInput{
		WorkPeriodID:      period.ID,
		ActualCashCounted: countedCash(600),
		UserID:            operator.ID,
	})
	require.NoError(t, err)

	first, err := env.consolidation.GenerateConsolidated(ctx, storeID, time.Now().UTC(), manager.ID)
	require.NoError(t, err)

	second, err := env.consolidation.GenerateConsolidated(ctx, storeID, time.Now().UTC(), manager.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	current, err := env.reports.CurrentSequence(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, first.SequenceNumber, current)
}

func TestGenerateConsolidatedRequiresSources(t *testing.T) {
	env := newTestEnv(t)
	ctx := testCtx()
	manager := env.seedUser(t, entity.RoleManager)

	_, err := env.consolidation.GenerateConsolidated(ctx, uuid.New(), time.Now().UTC(), manager.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}
