package repository

import (
	"context"

	"user-identity-service/internal/recovery/domain"
)

// Repository defines persistence for recovery key pairs and security
// questions. Missing rows come back as nil without error.
type Repository interface {
	GetKeyPair(ctx context.Context, userID string) (*domain.KeyPair, error)
	CreateKeyPair(ctx context.Context, kp *domain.KeyPair) error
	CreateQuestion(ctx context.Context, q *domain.SecurityQuestion) error
	// ListQuestions returns all of the user's questions including the
	// encrypted answers; callers that present questions to the user must
	// strip everything but id and text.
	ListQuestions(ctx context.Context, userID string) ([]*domain.SecurityQuestion, error)
}
