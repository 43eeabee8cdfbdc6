package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/pkg/email"
	"github.com/tillpoint/fiscal-api/pkg/printer"
)

// finalizedReport seals one period through the service so the outbox rows
// exist exactly as production writes them.
func (e *triggerEnv) finalizedReport(t *testing.T, storeID uuid.UUID) *entity.ZReport {
	t.Helper()
	ctx := context.Background()

	e.relaxedPolicy(t, storeID)
	period := e.openPeriod(t, storeID, "T1")
	system, err := e.users.GetSystemUser(ctx)
	require.NoError(t, err)

	output, err := e.reportSvc.Generate(ctx, &service.GenerateInput{
		WorkPeriodID: period.ID,
		UserID:       system.ID,
	})
	require.NoError(t, err)
	return output.Report
}

func newDispatcher(env *triggerEnv, p printer.Printer, exportPath string, maxAttempts int) *Dispatcher {
	exportSvc := service.NewExportService(p, email.NewEmailService(email.EmailConfig{}), exportPath, 48)
	return NewDispatcher(env.outbox, env.reports, exportSvc, DispatcherConfig{
		PollInterval: time.Minute,
		BatchSize:    10,
		MaxAttempts:  maxAttempts,
		BackoffBase:  time.Minute,
		LockTimeout:  time.Minute,
	}, env.logger)
}

func TestDrainOnceDeliversAllChannels(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()
	exportDir := t.TempDir()

	report := env.finalizedReport(t, uuid.New())
	dispatcher := newDispatcher(env, printer.NewNullPrinter(), exportDir, 3)

	delivered := dispatcher.DrainOnce(ctx)
	assert.Equal(t, 3, delivered)

	rows, err := env.outbox.ListByReport(ctx, report.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, entity.OutboxStatusSent, row.Status, "channel %s", row.Channel)
		assert.Nil(t, row.LockedBy)
	}

	// The export channel wrote both artifacts.
	for _, ext := range []string{".csv", ".xlsx"} {
		_, err := os.Stat(filepath.Join(exportDir, report.FormattedNumber+ext))
		assert.NoError(t, err, "missing %s export", ext)
	}

	// Nothing left to claim.
	assert.Equal(t, 0, dispatcher.DrainOnce(ctx))
}

func TestDrainOnceDeadLettersAfterMaxAttempts(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()

	// Port 1 refuses the connection, so every print attempt fails.
	report := env.finalizedReport(t, uuid.New())
	dispatcher := newDispatcher(env, printer.NewNetworkPrinter("127.0.0.1:1"), t.TempDir(), 1)

	delivered := dispatcher.DrainOnce(ctx)
	assert.Equal(t, 2, delivered)

	rows, err := env.outbox.ListByReport(ctx, report.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		if row.Channel == entity.OutboxChannelPrint {
			assert.Equal(t, entity.OutboxStatusDead, row.Status)
			assert.Equal(t, 1, row.Attempts)
			require.NotNil(t, row.LastError)
			assert.NotEmpty(t, *row.LastError)
		} else {
			assert.Equal(t, entity.OutboxStatusSent, row.Status)
		}
	}

	// A dead row is never reclaimed; the sealed record is untouched.
	assert.Equal(t, 0, dispatcher.DrainOnce(ctx))
	verify, err := env.reportSvc.VerifyReport(ctx, report.ID)
	require.NoError(t, err)
	assert.True(t, verify.Valid)
}

func TestDrainOnceRetriesWithBackoff(t *testing.T) {
	env := newTriggerEnv(t)
	ctx := context.Background()

	report := env.finalizedReport(t, uuid.New())
	dispatcher := newDispatcher(env, printer.NewNetworkPrinter("127.0.0.1:1"), t.TempDir(), 3)

	dispatcher.DrainOnce(ctx)

	rows, err := env.outbox.ListByReport(ctx, report.ID.String())
	require.NoError(t, err)
	for _, row := range rows {
		if row.Channel != entity.OutboxChannelPrint {
			continue
		}
		// Back in the pending pool, but not before the backoff elapses.
		assert.Equal(t, entity.OutboxStatusPending, row.Status)
		assert.Equal(t, 1, row.Attempts)
		require.NotNil(t, row.NextAttemptAt)
		assert.True(t, row.NextAttemptAt.After(time.Now().UTC().Add(30*time.Second)))
	}

	assert.Equal(t, 0, dispatcher.DrainOnce(ctx))
}
