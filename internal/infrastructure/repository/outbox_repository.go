package repository

import (
	"context"
	"time"

	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"gorm.io/gorm"
)

type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new report delivery outbox repository
func NewOutboxRepository(db *gorm.DB) domainRepo.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) ClaimBatch(ctx context.Context, dispatcherID string, limit int, now, staleBefore time.Time) ([]entity.ReportOutbox, error) {
	var claimed []entity.ReportOutbox

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidateIDs []uint
		err := tx.Model(&entity.ReportOutbox{}).
			Where("status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)", entity.OutboxStatusPending, now).
			Or("status = ? AND locked_at < ?", entity.OutboxStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(limit).
			Pluck("id", &candidateIDs).Error
		if err != nil {
			return err
		}
		if len(candidateIDs) == 0 {
			return nil
		}

		// The status/lock guards are repeated in the UPDATE so a concurrent
		// dispatcher claiming the same candidates wins at most once per row.
		res := tx.Model(&entity.ReportOutbox{}).
			Where("id IN ?", candidateIDs).
			Where(
				tx.Where("status = ?", entity.OutboxStatusPending).
					Or("status = ? AND locked_at < ?", entity.OutboxStatusProcessing, staleBefore),
			).
			Updates(map[string]interface{}{
				"status":    entity.OutboxStatusProcessing,
				"locked_at": now,
				"locked_by": dispatcherID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Where("id IN ? AND locked_by = ? AND locked_at = ?", candidateIDs, dispatcherID, now).
			Find(&claimed).Error
	})

	return claimed, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entity.ReportOutbox{}).
		Where("id = ?", id).
		Select("status", "locked_at", "locked_by", "last_error").
		Updates(map[string]interface{}{
			"status":     entity.OutboxStatusSent,
			"locked_at":  nil,
			"locked_by":  nil,
			"last_error": nil,
		}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uint, attempt int, maxAttempts int, nextAttemptAt time.Time, deliveryErr error) error {
	status := entity.OutboxStatusFailed
	if attempt >= maxAttempts {
		status = entity.OutboxStatusDead
	}
	msg := deliveryErr.Error()
	updates := map[string]interface{}{
		"status":     status,
		"attempts":   attempt,
		"locked_at":  nil,
		"locked_by":  nil,
		"last_error": msg,
	}
	if status == entity.OutboxStatusFailed {
		// Failed rows re-enter the pending pool once the backoff elapses.
		updates["status"] = entity.OutboxStatusPending
		updates["next_attempt_at"] = nextAttemptAt
	}
	return r.db.WithContext(ctx).Model(&entity.ReportOutbox{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *outboxRepository) ListByReport(ctx context.Context, reportID string) ([]entity.ReportOutbox, error) {
	var rows []entity.ReportOutbox
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
