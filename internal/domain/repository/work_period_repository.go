package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// WorkPeriodRepository reads the session collaborator's work periods. The
// closing subsystem never opens periods; the Open -> Closed transition happens
// inside the finalize transaction, not through this interface.
type WorkPeriodRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkPeriod, error)
	GetOpenByTerminal(ctx context.Context, storeID uuid.UUID, terminalID string) (*entity.WorkPeriod, error)
	ListOpenByStore(ctx context.Context, storeID uuid.UUID) ([]entity.WorkPeriod, error)
}
