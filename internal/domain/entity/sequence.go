package entity

import (
	"time"

	"github.com/google/uuid"
)

// FiscalSequence is the durable per-store report counter. It is read,
// incremented and written under a row lock inside the same transaction that
// inserts the Z-Report, so a number is never issued without a committed
// record. An in-process counter would not survive multiple service instances.
type FiscalSequence struct {
	StoreID    uuid.UUID `gorm:"type:uuid;primary_key" json:"store_id"`
	NextNumber int64     `gorm:"not null;default:1" json:"next_number"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for the FiscalSequence model
func (FiscalSequence) TableName() string {
	return "fiscal_sequences"
}
