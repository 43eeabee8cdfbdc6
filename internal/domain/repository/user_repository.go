package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// UserRepository defines the interface for operator/manager accounts
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetSystemUser returns the built-in scheduler actor.
	GetSystemUser(ctx context.Context) (*entity.User, error)
}
