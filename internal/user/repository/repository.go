package repository

import (
	"context"

	"user-identity-service/internal/user/domain"
)

// Repository defines persistence for users. Implementations return
// (nil, nil) for missing rows; errors are storage failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	// Delete hard-deletes the user; session, key, and question rows cascade.
	Delete(ctx context.Context, id string) error
}
