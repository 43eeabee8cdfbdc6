package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VarianceThreshold is the per-store cash variance policy. Absolute and
// percentage limits are evaluated independently; either one tripping
// escalates the classification.
type VarianceThreshold struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	StoreID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"store_id"`
	WarningAbs        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"warning_abs"`
	WarningPct        decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"warning_pct"`
	CriticalAbs       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"critical_abs"`
	CriticalPct       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"critical_pct"`
	ApproveOnWarning  bool            `gorm:"default:false" json:"approve_on_warning"`
	ApproveOnCritical bool            `gorm:"default:true" json:"approve_on_critical"`
	RequireCashCount  bool            `gorm:"default:true" json:"require_cash_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new threshold
func (t *VarianceThreshold) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the VarianceThreshold model
func (VarianceThreshold) TableName() string {
	return "variance_thresholds"
}

// DefaultVarianceThreshold returns the policy applied to stores with no
// configured row.
func DefaultVarianceThreshold(storeID uuid.UUID) *VarianceThreshold {
	return &VarianceThreshold{
		StoreID:           storeID,
		WarningAbs:        decimal.NewFromInt(10),
		WarningPct:        decimal.NewFromInt(1),
		CriticalAbs:       decimal.NewFromInt(50),
		CriticalPct:       decimal.NewFromInt(5),
		ApproveOnWarning:  false,
		ApproveOnCritical: true,
		RequireCashCount:  true,
	}
}
