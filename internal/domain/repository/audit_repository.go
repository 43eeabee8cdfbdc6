package repository

import (
	"context"

	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// AuditLogRepository appends to the externally-owned audit log. Entries are
// never updated or deleted from here.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.AuditLog, error)
}
