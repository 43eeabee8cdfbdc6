package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"gorm.io/gorm"
)

// WorkPeriod is a bounded shift on a terminal. The session subsystem owns its
// lifecycle; the closing subsystem only reads it and writes the final
// Open -> Closed transition inside the same transaction that seals the Z-Report.
type WorkPeriod struct {
	ID           uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	StoreID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"store_id"`
	TerminalID   string                `gorm:"size:32;not null;index" json:"terminal_id"`
	OpenedByID   uuid.UUID             `gorm:"type:uuid;not null" json:"opened_by_id"`
	OpeningFloat decimal.Decimal       `gorm:"type:decimal(12,2);not null" json:"opening_float"`
	Status       enum.WorkPeriodStatus `gorm:"default:0;index" json:"status"`
	OpenedAt     time.Time             `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time            `json:"closed_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new work period
func (w *WorkPeriod) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WorkPeriod model
func (WorkPeriod) TableName() string {
	return "work_periods"
}

// IsOpen reports whether the period can still accept sales
func (w *WorkPeriod) IsOpen() bool {
	return w.Status == enum.WorkPeriodOpen
}
