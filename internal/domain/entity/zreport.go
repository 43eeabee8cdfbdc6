package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ZReport is the sealed end-of-period fiscal record. Once created it is
// immutable: the repository only ever updates the approval columns, and
// corrections are new records that reference the original.
//
// SequenceNumber is the canonical ordering/uniqueness key per store;
// FormattedNumber is presentation only.
type ZReport struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_store_sequence,priority:1" json:"store_id"`
	TerminalID      *string         `gorm:"size:32;index" json:"terminal_id,omitempty"`
	WorkPeriodID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"work_period_id,omitempty"`
	Kind            enum.ReportKind `gorm:"default:0;index" json:"kind"`
	SequenceNumber  int64           `gorm:"not null;uniqueIndex:idx_store_sequence,priority:2" json:"sequence_number"`
	FormattedNumber string          `gorm:"size:32;not null" json:"formatted_number"`
	ReportDate      time.Time       `gorm:"type:date;not null;index" json:"report_date"`
	GeneratedAt     time.Time       `gorm:"not null" json:"generated_at"`
	GeneratedByID   uuid.UUID       `gorm:"type:uuid;not null" json:"generated_by_id"`

	GrossSales    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_sales"`
	NetSales      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_sales"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_total"`
	TipTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tip_total"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_total"`
	RefundTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"refund_total"`
	VoidTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"void_total"`

	OpeningFloat      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"opening_float"`
	CashReceived      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"cash_received"`
	CashRefunds       decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"cash_refunds"`
	CashPayouts       decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"cash_payouts"`
	ExpectedCash      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"expected_cash"`
	ActualCashCounted decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"actual_cash_counted"`
	Variance          decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"variance"`
	VarianceLevel     enum.VarianceLevel `gorm:"default:0" json:"variance_level"`
	VarianceNote      string             `gorm:"type:text" json:"variance_note,omitempty"`

	ApprovalStatus enum.ApprovalStatus `gorm:"default:0;index" json:"approval_status"`
	ApprovedByID   *uuid.UUID          `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`

	ContentHash   string `gorm:"size:64;not null" json:"content_hash"`
	PreviousHash  string `gorm:"size:64" json:"previous_hash"`
	HashAlgorithm string `gorm:"size:16;not null" json:"hash_algorithm"`

	CorrectsReportID *uuid.UUID `gorm:"type:uuid" json:"corrects_report_id,omitempty"`
	CorrectionReason string     `gorm:"type:text" json:"correction_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Payments []ZReportPayment `gorm:"foreignKey:ReportID" json:"payments,omitempty"`
	Sources  []ZReportSource  `gorm:"foreignKey:ReportID" json:"sources,omitempty"`
}

// BeforeCreate generates a UUID before creating a new report
func (r *ZReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ZReport model
func (ZReport) TableName() string {
	return "z_reports"
}

// IsSettled reports whether the record is usable by consumers that require a
// settled approval state (consolidated rollups, accounting handoff).
func (r *ZReport) IsSettled() bool {
	return r.ApprovalStatus != enum.ApprovalPending
}

// VariancePct is the variance as a percentage of expected cash, derived on
// read and never stored.
func (r *ZReport) VariancePct() decimal.Decimal {
	if r.ExpectedCash.IsZero() {
		return decimal.Zero
	}
	return r.Variance.Div(r.ExpectedCash).Mul(decimal.NewFromInt(100)).Round(2)
}

// FormatReportNumber builds the human-readable report number. Presentation
// only; never used as a key.
func FormatReportNumber(kind enum.ReportKind, year int, terminalID string, sequence int64) string {
	prefix := "Z"
	switch kind {
	case enum.ReportKindConsolidated:
		prefix = "ZC"
	case enum.ReportKindCorrection:
		prefix = "ZX"
	}
	if terminalID == "" {
		terminalID = "STR"
	}
	return fmt.Sprintf("%s-%d-%.3s-%04d", prefix, year, terminalID, sequence)
}

// ZReportPayment is one payment-method line of a sealed report.
type ZReportPayment struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReportID uuid.UUID       `gorm:"type:uuid;not null;index" json:"report_id"`
	Method   string          `gorm:"size:32;not null" json:"method"`
	Count    int             `gorm:"not null" json:"count"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// BeforeCreate generates a UUID before creating a payment line
func (p *ZReportPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ZReportPayment model
func (ZReportPayment) TableName() string {
	return "z_report_payments"
}

// ZReportSource links a consolidated store-level report to the terminal
// reports it was rolled up from.
type ZReportSource struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReportID       uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	SourceReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"source_report_id"`
}

// BeforeCreate generates a UUID before creating a source link
func (s *ZReportSource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ZReportSource model
func (ZReportSource) TableName() string {
	return "z_report_sources"
}
