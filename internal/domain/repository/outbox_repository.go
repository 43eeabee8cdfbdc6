package repository

import (
	"context"
	"time"

	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// OutboxRepository drains the report delivery outbox. Enqueueing happens
// inside ZReportRepository.Finalize so that delivery intent commits with the
// sealed record.
type OutboxRepository interface {
	// ClaimBatch atomically claims up to limit deliverable rows for the given
	// dispatcher, reclaiming rows whose lock went stale before staleBefore.
	ClaimBatch(ctx context.Context, dispatcherID string, limit int, now, staleBefore time.Time) ([]entity.ReportOutbox, error)

	MarkSent(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, attempt int, maxAttempts int, nextAttemptAt time.Time, deliveryErr error) error
	ListByReport(ctx context.Context, reportID string) ([]entity.ReportOutbox, error)
}
