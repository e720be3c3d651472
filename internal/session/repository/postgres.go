package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"user-identity-service/internal/session/domain"
)

const sessionColumns = `id, user_id, access_token, refresh_token, generation_id, device_id,
	ip_address, user_agent, user_type, admin_role, active,
	created_at, last_activity_at, access_expires_at, refresh_expires_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID and token values set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.GenerationID, s.DeviceID,
		nullString(s.IPAddress), nullString(s.UserAgent), s.UserType, nullString(s.AdminRole), s.Active,
		s.CreatedAt, s.LastActivityAt, s.AccessExpiresAt, s.RefreshExpiresAt,
	)
	return err
}

// GetActiveByAccessToken returns the active, unexpired session holding the
// access token, or nil if none. Errors are database failures only.
func (r *PostgresRepository) GetActiveByAccessToken(ctx context.Context, accessToken string, now time.Time) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE access_token = $1 AND active AND refresh_expires_at > $2`,
		accessToken, now,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Rotate consumes the session matching (refreshToken, deviceID) inside a
// transaction. SELECT ... FOR UPDATE serializes concurrent attempts on the
// same row; once the winner commits, the loser's re-evaluated predicate no
// longer matches the old refresh token and it observes nil.
func (r *PostgresRepository) Rotate(ctx context.Context, refreshToken, deviceID string, now time.Time, rotate RotateFunc) (*domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE refresh_token = $1 AND device_id = $2 AND active AND refresh_expires_at > $3
		FOR UPDATE`,
		refreshToken, deviceID, now,
	)
	current, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	next, err := rotate(current)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET access_token = $2, refresh_token = $3, generation_id = $4,
		    last_activity_at = $5, access_expires_at = $6, refresh_expires_at = $7
		WHERE id = $1`,
		current.ID, next.AccessToken, next.RefreshToken, next.GenerationID,
		next.RotatedAt, next.AccessExpiresAt, next.RefreshExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	updated := *current
	updated.AccessToken = next.AccessToken
	updated.RefreshToken = next.RefreshToken
	updated.GenerationID = next.GenerationID
	updated.LastActivityAt = next.RotatedAt
	updated.AccessExpiresAt = next.AccessExpiresAt
	updated.RefreshExpiresAt = next.RefreshExpiresAt
	return &updated, nil
}

// Invalidate marks the session holding accessToken inactive; no error when
// no row matches.
func (r *PostgresRepository) Invalidate(ctx context.Context, accessToken string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = false WHERE access_token = $1`, accessToken)
	return err
}

// InvalidateAllByUser marks every session of the user inactive.
func (r *PostgresRepository) InvalidateAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = false WHERE user_id = $1`, userID)
	return err
}

// SweepExpired deactivates all active rows whose refresh expiry has passed.
func (r *PostgresRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = false WHERE active AND refresh_expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Touch updates the last-activity timestamp of the session holding accessToken.
func (r *PostgresRepository) Touch(ctx context.Context, accessToken string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = $2 WHERE access_token = $1`, accessToken, at)
	return err
}

// ListByUser returns all sessions of the user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListActive returns active sessions with limit and offset, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context, limit, offset int32) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions WHERE active ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var ip, ua, role sql.NullString
	err := row.Scan(
		&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.GenerationID, &s.DeviceID,
		&ip, &ua, &s.UserType, &role, &s.Active,
		&s.CreatedAt, &s.LastActivityAt, &s.AccessExpiresAt, &s.RefreshExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	s.AdminRole = role.String
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
