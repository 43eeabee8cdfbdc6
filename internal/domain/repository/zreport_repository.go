package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"github.com/tillpoint/fiscal-api/pkg/pagination"
)

// SealFn is invoked inside the finalize transaction once a sequence number
// has been allocated and the previous record's hash resolved. It must fill
// the report's SequenceNumber, FormattedNumber, ContentHash, PreviousHash and
// HashAlgorithm fields. Returning an error aborts the whole transaction.
type SealFn func(sequenceNumber int64, previousHash string) error

// FinalizeSideEffects are the writes committed atomically with the report.
type FinalizeSideEffects struct {
	CloseWorkPeriod bool
	Audit           *entity.AuditLog
	OutboxChannels  []string
}

// ZReportFilterParams contains filtering parameters for report listings
type ZReportFilterParams struct {
	Pagination *pagination.PaginationParams
	StoreID    *uuid.UUID
	TerminalID *string
	Kind       *enum.ReportKind
	Approval   *enum.ApprovalStatus
	StartDate  *time.Time
	EndDate    *time.Time
}

// ZReportRepository defines the interface for sealed report persistence.
//
// Records are immutable after Finalize: the only permitted update is the
// approval column set, exposed through UpdateApproval.
type ZReportRepository interface {
	// Finalize allocates the next store-scoped sequence number, seals the
	// report via seal and inserts it together with its side effects in one
	// transaction. If a record already exists for the report's work period it
	// returns (existing, false, nil); duplicate generation is idempotent,
	// not an error. created is true only when this call inserted the record.
	Finalize(ctx context.Context, report *entity.ZReport, effects FinalizeSideEffects, seal SealFn) (result *entity.ZReport, created bool, err error)

	GetByID(ctx context.Context, id uuid.UUID) (*entity.ZReport, error)
	GetByWorkPeriodID(ctx context.Context, workPeriodID uuid.UUID) (*entity.ZReport, error)
	GetBySequence(ctx context.Context, storeID uuid.UUID, sequenceNumber int64) (*entity.ZReport, error)
	List(ctx context.Context, params *ZReportFilterParams) ([]entity.ZReport, int64, error)

	// ListByStoreAndDate returns finalized terminal reports for a store on a
	// report date, payments preloaded, ordered by terminal.
	ListByStoreAndDate(ctx context.Context, storeID uuid.UUID, date time.Time) ([]entity.ZReport, error)

	// ListSequenceRange returns all reports for a store whose report date
	// falls in [from, to], ordered by sequence number ascending.
	ListSequenceRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]entity.ZReport, error)

	// UpdateApproval writes only the approval columns of a sealed record and
	// commits the audit entry in the same transaction.
	UpdateApproval(ctx context.Context, id uuid.UUID, status enum.ApprovalStatus, approvedBy uuid.UUID, approvedAt time.Time, audit *entity.AuditLog) error

	// CurrentSequence returns the highest allocated sequence number for the
	// store, or 0 when no report exists yet.
	CurrentSequence(ctx context.Context, storeID uuid.UUID) (int64, error)
}
