package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	domainRepo "github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
	"gorm.io/gorm"
)

type salesRepository struct {
	db *gorm.DB
}

// NewSalesRepository creates a read-only repository over the sales
// collaborator's tables
func NewSalesRepository(db *gorm.DB) domainRepo.SalesRepository {
	return &salesRepository{db: db}
}

// decimalRow scans a SUM() result. COALESCE keeps empty periods at zero
// instead of NULL.
type decimalRow struct {
	Total decimal.Decimal
}

func (r *salesRepository) sumTransactions(ctx context.Context, workPeriodID uuid.UUID, column, status string) (decimal.Decimal, error) {
	var row decimalRow
	err := r.db.WithContext(ctx).Model(&entity.SalesTransaction{}).
		Select("COALESCE(SUM("+column+"), 0) AS total").
		Where("work_period_id = ? AND status = ?", workPeriodID, status).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, apperror.ErrDataUnavailable
	}
	return row.Total, nil
}

func (r *salesRepository) sumMovements(ctx context.Context, workPeriodID uuid.UUID, kind string) (decimal.Decimal, error) {
	var row decimalRow
	err := r.db.WithContext(ctx).Model(&entity.CashMovement{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("work_period_id = ? AND kind = ?", workPeriodID, kind).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, apperror.ErrDataUnavailable
	}
	return row.Total, nil
}

func (r *salesRepository) AggregatePeriod(ctx context.Context, workPeriodID uuid.UUID) (*domainRepo.PeriodTotals, error) {
	totals := &domainRepo.PeriodTotals{}
	var err error

	if totals.GrossSales, err = r.sumTransactions(ctx, workPeriodID, "gross_amount", entity.SalesStatusSettled); err != nil {
		return nil, err
	}
	if totals.TaxTotal, err = r.sumTransactions(ctx, workPeriodID, "tax_amount", entity.SalesStatusSettled); err != nil {
		return nil, err
	}
	if totals.TipTotal, err = r.sumTransactions(ctx, workPeriodID, "tip_amount", entity.SalesStatusSettled); err != nil {
		return nil, err
	}
	if totals.Discounts, err = r.sumTransactions(ctx, workPeriodID, "discount", entity.SalesStatusSettled); err != nil {
		return nil, err
	}
	if totals.Refunds, err = r.sumTransactions(ctx, workPeriodID, "gross_amount", entity.SalesStatusRefunded); err != nil {
		return nil, err
	}
	if totals.Voids, err = r.sumTransactions(ctx, workPeriodID, "gross_amount", entity.SalesStatusVoided); err != nil {
		return nil, err
	}

	// Per payment method breakdown over settled transactions.
	var paymentRows []struct {
		PaymentMethod string
		Count         int
		Amount        decimal.Decimal
	}
	err = r.db.WithContext(ctx).Model(&entity.SalesTransaction{}).
		Select("payment_method, COUNT(*) AS count, COALESCE(SUM(gross_amount), 0) AS amount").
		Where("work_period_id = ? AND status = ?", workPeriodID, entity.SalesStatusSettled).
		Group("payment_method").
		Order("payment_method ASC").
		Scan(&paymentRows).Error
	if err != nil {
		return nil, apperror.ErrDataUnavailable
	}
	for _, row := range paymentRows {
		totals.Payments = append(totals.Payments, entity.PaymentTotal{
			Method: row.PaymentMethod,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}

	if totals.CashReceived, err = r.sumMovements(ctx, workPeriodID, entity.CashMovementSale); err != nil {
		return nil, err
	}
	paidIn, err := r.sumMovements(ctx, workPeriodID, entity.CashMovementPaidIn)
	if err != nil {
		return nil, err
	}
	totals.CashReceived = totals.CashReceived.Add(paidIn)

	if totals.CashRefunds, err = r.sumMovements(ctx, workPeriodID, entity.CashMovementRefund); err != nil {
		return nil, err
	}
	if totals.CashPayouts, err = r.sumMovements(ctx, workPeriodID, entity.CashMovementPayout); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *salesRepository) HasUnsettledReceipts(ctx context.Context, workPeriodID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.SalesTransaction{}).
		Where("work_period_id = ? AND status = ?", workPeriodID, entity.SalesStatusUnsettled).
		Count(&count).Error
	if err != nil {
		return false, apperror.ErrDataUnavailable
	}
	return count > 0, nil
}

func (r *salesRepository) HasOpenOrders(ctx context.Context, workPeriodID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.SalesTransaction{}).
		Where("work_period_id = ? AND status = ?", workPeriodID, entity.SalesStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, apperror.ErrDataUnavailable
	}
	return count > 0, nil
}
