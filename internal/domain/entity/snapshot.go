package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTotal is one payment-method line of a snapshot.
type PaymentTotal struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// PeriodSnapshot is a value object holding the aggregated content of a work
// period. It is NOT a database entity: it is composed from collaborator data
// at preview/generate time and only becomes durable once sealed into a
// ZReport.
type PeriodSnapshot struct {
	WorkPeriodID uuid.UUID       `json:"work_period_id"`
	StoreID      uuid.UUID       `json:"store_id"`
	TerminalID   string          `json:"terminal_id"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	GrossSales   decimal.Decimal `json:"gross_sales"`
	NetSales     decimal.Decimal `json:"net_sales"`
	TaxTotal     decimal.Decimal `json:"tax_total"`
	TipTotal     decimal.Decimal `json:"tip_total"`
	Discounts    decimal.Decimal `json:"discounts"`
	Refunds      decimal.Decimal `json:"refunds"`
	Voids        decimal.Decimal `json:"voids"`
	Payments     []PaymentTotal  `json:"payments"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	CashReceived decimal.Decimal `json:"cash_received"`
	CashRefunds  decimal.Decimal `json:"cash_refunds"`
	CashPayouts  decimal.Decimal `json:"cash_payouts"`
}
