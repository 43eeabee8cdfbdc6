package entity

import (
	"time"

	"github.com/google/uuid"
)

// Outbox delivery channels
const (
	OutboxChannelPrint  = "print"
	OutboxChannelEmail  = "email"
	OutboxChannelExport = "export"
)

// Outbox delivery statuses
const (
	OutboxStatusPending    = "PENDING"
	OutboxStatusProcessing = "PROCESSING"
	OutboxStatusSent       = "SENT"
	OutboxStatusFailed     = "FAILED"
	OutboxStatusDead       = "DEAD"
)

// ReportOutbox is a transactional outbox row for downstream delivery
// (print/email/export). Rows are written in the same commit that finalizes a
// report and drained by the dispatcher; delivery is at-least-once and
// failures never touch the sealed record.
type ReportOutbox struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReportID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	Channel       string     `gorm:"size:16;not null" json:"channel"`
	Status        string     `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	Attempts      int        `gorm:"default:0" json:"attempts"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	LockedBy      *string    `gorm:"size:64" json:"locked_by,omitempty"`
	LastError     *string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the table name for the ReportOutbox model
func (ReportOutbox) TableName() string {
	return "report_outbox"
}
