package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions recorded by the closing subsystem
const (
	AuditActionGenerate      = "zreport.generate"
	AuditActionApprove       = "zreport.approve"
	AuditActionCorrect       = "zreport.correct"
	AuditActionConsolidate   = "zreport.consolidate"
	AuditActionExport        = "zreport.export"
	AuditActionScheduleSkip  = "schedule.skip"
	AuditActionScheduleError = "schedule.error"
)

// AuditLog is an append-only action record. The closing subsystem writes to
// it but does not own it; rows are never updated or deleted here.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action     string    `gorm:"size:64;not null;index" json:"action"`
	EntityType string    `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string    `gorm:"size:64;not null;index" json:"entity_id"`
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new audit entry
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
