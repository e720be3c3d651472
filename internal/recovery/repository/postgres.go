package repository

import (
	"context"
	"database/sql"
	"errors"

	"user-identity-service/internal/recovery/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a recovery repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetKeyPair returns the user's key pair, or nil if not enrolled.
func (r *PostgresRepository) GetKeyPair(ctx context.Context, userID string) (*domain.KeyPair, error) {
	var kp domain.KeyPair
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, public_key_pem, private_key_enc, threshold, created_at
		FROM recovery_keys WHERE user_id = $1`, userID,
	).Scan(&kp.UserID, &kp.PublicKeyPEM, &kp.PrivateKeyEnc, &kp.Threshold, &kp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &kp, nil
}

// CreateKeyPair persists the key pair. The user_id primary key makes a
// second enrollment fail at the store level as well.
func (r *PostgresRepository) CreateKeyPair(ctx context.Context, kp *domain.KeyPair) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recovery_keys (user_id, public_key_pem, private_key_enc, threshold, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		kp.UserID, kp.PublicKeyPEM, kp.PrivateKeyEnc, kp.Threshold, kp.CreatedAt)
	return err
}

// CreateQuestion persists one security question row.
func (r *PostgresRepository) CreateQuestion(ctx context.Context, q *domain.SecurityQuestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO security_questions (id, user_id, question, answer_enc, answer_sig, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.UserID, q.Question, q.AnswerEnc, q.AnswerSig, q.CreatedAt)
	return err
}

// ListQuestions returns the user's questions in enrollment order.
func (r *PostgresRepository) ListQuestions(ctx context.Context, userID string) ([]*domain.SecurityQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, question, answer_enc, answer_sig, created_at
		FROM security_questions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.SecurityQuestion
	for rows.Next() {
		var q domain.SecurityQuestion
		if err := rows.Scan(&q.ID, &q.UserID, &q.Question, &q.AnswerEnc, &q.AnswerSig, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}
