package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxFinalizeAttempts bounds the retry loop around the finalize transaction.
// The whole unit is retried; retrying only the allocation would skip or
// duplicate a number.
const maxFinalizeAttempts = 3

// errDuplicatePeriod signals that another caller finalized the same work
// period first. Resolved by returning the winner's record.
var errDuplicatePeriod = errors.New("z-report already exists for work period")

type zReportRepository struct {
	db *gorm.DB
}

// NewZReportRepository creates a new sealed report repository
func NewZReportRepository(db *gorm.DB) domainRepo.ZReportRepository {
	return &zReportRepository{db: db}
}

func (r *zReportRepository) Finalize(ctx context.Context, report *entity.ZReport, effects domainRepo.FinalizeSideEffects, seal domainRepo.SealFn) (*entity.ZReport, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFinalizeAttempts; attempt++ {
		result, created, err := r.finalizeOnce(ctx, report, effects, seal)
		if err == nil {
			return result, created, nil
		}
		if !isRetryableTxError(err) {
			return nil, false, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return nil, false, fmt.Errorf("finalize failed after %d attempts: %w", maxFinalizeAttempts, lastErr)
}

func (r *zReportRepository) finalizeOnce(ctx context.Context, report *entity.ZReport, effects domainRepo.FinalizeSideEffects, seal domainRepo.SealFn) (*entity.ZReport, bool, error) {
	var result *entity.ZReport
	created := false

	// Once the transaction begins it runs to commit or rollback even if the
	// caller goes away; a cancelled context mid-flight would burn the
	// allocated sequence number.
	txCtx := context.WithoutCancel(ctx)

	err := r.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		// Idempotency check inside the transaction: a record that already
		// exists for this work period is returned, not an error, and no
		// sequence number is consumed.
		if report.WorkPeriodID != nil {
			var existing entity.ZReport
			err := tx.Preload("Payments").First(&existing, "work_period_id = ?", *report.WorkPeriodID).Error
			if err == nil {
				result = &existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		// Read-increment-write of the durable counter under a row lock.
		var seq entity.FiscalSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "store_id = ?", report.StoreID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = entity.FiscalSequence{StoreID: report.StoreID, NextNumber: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		allocated := seq.NextNumber

		// Chain to the immediately preceding sealed record for this store.
		previousHash := ""
		var prev entity.ZReport
		err = tx.Where("store_id = ? AND sequence_number = ?", report.StoreID, allocated-1).
			First(&prev).Error
		if err == nil {
			previousHash = prev.ContentHash
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := seal(allocated, previousHash); err != nil {
			return err
		}

		if err := tx.Create(report).Error; err != nil {
			if report.WorkPeriodID != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicatePeriod
			}
			return err
		}

		if err := tx.Model(&entity.FiscalSequence{}).
			Where("store_id = ?", report.StoreID).
			Update("next_number", allocated+1).Error; err != nil {
			return err
		}

		if effects.CloseWorkPeriod && report.WorkPeriodID != nil {
			res := tx.Model(&entity.WorkPeriod{}).
				Where("id = ? AND status <> ?", *report.WorkPeriodID, enum.WorkPeriodClosed).
				Updates(map[string]interface{}{
					"status":    enum.WorkPeriodClosed,
					"closed_at": report.GeneratedAt,
				})
			if res.Error != nil {
				return res.Error
			}
		}

		if effects.Audit != nil {
			effects.Audit.EntityID = report.ID.String()
			if err := tx.Create(effects.Audit).Error; err != nil {
				return err
			}
		}

		for _, channel := range effects.OutboxChannels {
			row := entity.ReportOutbox{
				ReportID: report.ID,
				Channel:  channel,
				Status:   entity.OutboxStatusPending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		result = report
		created = true
		return nil
	})

	if errors.Is(err, errDuplicatePeriod) {
		existing, ferr := r.GetByWorkPeriodID(ctx, *report.WorkPeriodID)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// isRetryableTxError reports whether the whole finalize unit should be
// retried: lock/serialization conflicts and a lost duplicate race.
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errDuplicatePeriod) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "lock timeout")
}

func (r *zReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ZReport, error) {
	var report entity.ZReport
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Preload("Sources").
		First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &report, err
}

func (r *zReportRepository) GetByWorkPeriodID(ctx context.Context, workPeriodID uuid.UUID) (*entity.ZReport, error) {
	var report entity.ZReport
	err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&report, "work_period_id = ?", workPeriodID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &report, err
}

func (r *zReportRepository) GetBySequence(ctx context.Context, storeID uuid.UUID, sequenceNumber int64) (*entity.ZReport, error) {
	var report entity.ZReport
	err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&report, "store_id = ? AND sequence_number = ?", storeID, sequenceNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &report, err
}

func (r *zReportRepository) List(ctx context.Context, params *domainRepo.ZReportFilterParams) ([]entity.ZReport, int64, error) {
	var reports []entity.ZReport
	var total int64

	// The store scope from the request context applies on top of any explicit
	// filter, so an operator cannot list another store's records.
	query := r.db.WithContext(ctx).Model(&entity.ZReport{}).Scopes(StoreScope(ctx))

	if params.StoreID != nil {
		query = query.Where("store_id = ?", *params.StoreID)
	}
	if params.TerminalID != nil {
		query = query.Where("terminal_id = ?", *params.TerminalID)
	}
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.Approval != nil {
		query = query.Where("approval_status = ?", *params.Approval)
	}
	if params.StartDate != nil {
		query = query.Where("report_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("report_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("sequence_number DESC").
		Find(&reports).Error

	return reports, total, err
}

func (r *zReportRepository) ListByStoreAndDate(ctx context.Context, storeID uuid.UUID, date time.Time) ([]entity.ZReport, error) {
	var reports []entity.ZReport
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("store_id = ? AND kind = ? AND report_date >= ? AND report_date < ?",
			storeID, enum.ReportKindTerminal, dayStart, dayStart.AddDate(0, 0, 1)).
		Order("terminal_id ASC").
		Find(&reports).Error
	return reports, err
}

func (r *zReportRepository) ListSequenceRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]entity.ZReport, error) {
	var reports []entity.ZReport
	fromStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toEnd := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("store_id = ? AND report_date >= ? AND report_date < ?", storeID, fromStart, toEnd).
		Order("sequence_number ASC").
		Find(&reports).Error
	return reports, err
}

func (r *zReportRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status enum.ApprovalStatus, approvedBy uuid.UUID, approvedAt time.Time, audit *entity.AuditLog) error {
	// The approval column set is the only mutable part of a sealed record.
	// Its audit entry commits in the same transaction, so an approval can
	// never land without its trail.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entity.ZReport{}).
			Where("id = ?", id).
			Select("approval_status", "approved_by_id", "approved_at").
			Updates(map[string]interface{}{
				"approval_status": status,
				"approved_by_id":  approvedBy,
				"approved_at":     approvedAt,
			}).Error
		if err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		return tx.Create(audit).Error
	})
}

func (r *zReportRepository) CurrentSequence(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).Model(&entity.ZReport{}).
		Where("store_id = ?", storeID).
		Select("MAX(sequence_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
