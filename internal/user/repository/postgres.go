package repository

import (
	"context"
	"database/sql"
	"errors"

	"user-identity-service/internal/security"
	"user-identity-service/internal/user/domain"
)

const userColumns = `id, email_enc, email_hash, phone_enc, password_hash, user_type, admin_role, created_at, updated_at`

// PostgresRepository stores users with email and phone encrypted at rest.
// Lookups by email go through a deterministic digest column because the
// field cipher is randomized.
type PostgresRepository struct {
	db     *sql.DB
	cipher *security.FieldCipher
}

// NewPostgresRepository returns a user repository that encrypts sensitive
// columns with the given cipher.
func NewPostgresRepository(db *sql.DB, cipher *security.FieldCipher) *PostgresRepository {
	return &PostgresRepository{db: db, cipher: cipher}
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_hash = $1`, security.Digest(email))
	return r.scanUser(row)
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, r.cipher.EncryptField(u.Email), security.Digest(u.Email),
		nullString(r.encryptOptional(u.Phone)), u.PasswordHash,
		string(u.UserType), nullString(string(u.AdminRole)),
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// Update rewrites the user's mutable columns.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email_enc = $2, email_hash = $3, phone_enc = $4, password_hash = $5,
		    user_type = $6, admin_role = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, r.cipher.EncryptField(u.Email), security.Digest(u.Email),
		nullString(r.encryptOptional(u.Phone)), u.PasswordHash,
		string(u.UserType), nullString(string(u.AdminRole)), u.UpdatedAt,
	)
	return err
}

// Delete hard-deletes the user; dependent rows cascade via foreign keys.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var emailEnc, emailHash string
	var phoneEnc, adminRole sql.NullString
	var userType string
	err := row.Scan(&u.ID, &emailEnc, &emailHash, &phoneEnc, &u.PasswordHash,
		&userType, &adminRole, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Email = r.cipher.DecryptField(emailEnc)
	if phoneEnc.Valid {
		u.Phone = r.cipher.DecryptField(phoneEnc.String)
	}
	u.UserType = domain.UserType(userType)
	u.AdminRole = domain.AdminRole(adminRole.String)
	return &u, nil
}

func (r *PostgresRepository) encryptOptional(s string) string {
	if s == "" {
		return ""
	}
	return r.cipher.EncryptField(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
