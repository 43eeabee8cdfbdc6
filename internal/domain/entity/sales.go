package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sales transaction statuses as written by the sales/payment collaborator.
const (
	SalesStatusSettled   = "settled"
	SalesStatusUnsettled = "unsettled"
	SalesStatusOpen      = "open"
	SalesStatusVoided    = "voided"
	SalesStatusRefunded  = "refunded"
)

// Cash movement kinds
const (
	CashMovementSale   = "sale"
	CashMovementRefund = "refund"
	CashMovementPayout = "payout"
	CashMovementPaidIn = "paid_in"
)

// SalesTransaction is a read model over the sales collaborator's table.
// The closing subsystem aggregates these rows and never writes them.
type SalesTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	WorkPeriodID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"work_period_id"`
	Status        string          `gorm:"size:16;not null;index" json:"status"`
	PaymentMethod string          `gorm:"size:32;not null" json:"payment_method"`
	GrossAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	TipAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tip_amount"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	OccurredAt    time.Time       `gorm:"index" json:"occurred_at"`
}

// TableName returns the table name for the SalesTransaction read model
func (SalesTransaction) TableName() string {
	return "sales_transactions"
}

// CashMovement is a read model over the drawer movement table owned by the
// sales collaborator. Movements are immutable events; cancellations appear as
// inverse entries, never edits.
type CashMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	WorkPeriodID uuid.UUID       `gorm:"type:uuid;not null;index" json:"work_period_id"`
	Kind         string          `gorm:"size:16;not null" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string          `gorm:"size:255" json:"description,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// TableName returns the table name for the CashMovement read model
func (CashMovement) TableName() string {
	return "cash_movements"
}
