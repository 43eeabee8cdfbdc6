package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// PeriodTotals is the raw aggregate the sales collaborator answers with.
type PeriodTotals struct {
	GrossSales   decimal.Decimal
	TaxTotal     decimal.Decimal
	TipTotal     decimal.Decimal
	Discounts    decimal.Decimal
	Refunds      decimal.Decimal
	Voids        decimal.Decimal
	Payments     []entity.PaymentTotal
	CashReceived decimal.Decimal
	CashRefunds  decimal.Decimal
	CashPayouts  decimal.Decimal
}

// SalesRepository is the narrow read interface onto the sales/payment
// collaborator. All methods are side-effect free.
type SalesRepository interface {
	// AggregatePeriod returns the totals for a work period, or
	// apperror.ErrDataUnavailable when the collaborator cannot answer for the
	// requested scope.
	AggregatePeriod(ctx context.Context, workPeriodID uuid.UUID) (*PeriodTotals, error)

	HasUnsettledReceipts(ctx context.Context, workPeriodID uuid.UUID) (bool, error)
	HasOpenOrders(ctx context.Context, workPeriodID uuid.UUID) (bool, error)
}
