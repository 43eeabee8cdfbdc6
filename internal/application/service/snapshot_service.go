package service

import (
	"context"
	"time"

	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
)

// SnapshotService aggregates a work period's sales content into a value
// object. Pure read; nothing here persists anything.
type SnapshotService struct {
	salesRepo repository.SalesRepository
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(salesRepo repository.SalesRepository) *SnapshotService {
	return &SnapshotService{salesRepo: salesRepo}
}

// BuildForPeriod composes the aggregate content of a work period. Returns
// apperror.ErrDataUnavailable when the sales collaborator cannot answer.
func (s *SnapshotService) BuildForPeriod(ctx context.Context, period *entity.WorkPeriod) (*entity.PeriodSnapshot, error) {
	totals, err := s.salesRepo.AggregatePeriod(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	periodEnd := time.Now().UTC()
	if period.ClosedAt != nil {
		periodEnd = *period.ClosedAt
	}

	snapshot := &entity.PeriodSnapshot{
		WorkPeriodID: period.ID,
		StoreID:      period.StoreID,
		TerminalID:   period.TerminalID,
		PeriodStart:  period.OpenedAt,
		PeriodEnd:    periodEnd,
		GrossSales:   totals.GrossSales,
		NetSales:     totals.GrossSales.Sub(totals.TaxTotal).Sub(totals.Discounts),
		TaxTotal:     totals.TaxTotal,
		TipTotal:     totals.TipTotal,
		Discounts:    totals.Discounts,
		Refunds:      totals.Refunds,
		Voids:        totals.Voids,
		Payments:     totals.Payments,
		OpeningFloat: period.OpeningFloat,
		CashReceived: totals.CashReceived,
		CashRefunds:  totals.CashRefunds,
		CashPayouts:  totals.CashPayouts,
	}
	return snapshot, nil
}
