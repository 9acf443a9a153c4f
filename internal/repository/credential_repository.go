package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-directory/internal/domain"
)

// CredentialRepository defines persistence access for login records.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
	GetByID(ctx context.Context, id int64) (*domain.Credential, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	Delete(ctx context.Context, id int64) error
}

type credentialRepository struct {
	db DB
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(db DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO employee_logins (id, username, password_hash, role)
        VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, cred.ID, cred.Username, cred.PasswordHash, cred.Role)
	return err
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	const query = `
        SELECT id, username, password_hash, role
        FROM employee_logins WHERE username=$1`

	var cred domain.Credential
	if err := r.db.QueryRow(ctx, query, username).Scan(
		&cred.ID,
		&cred.Username,
		&cred.PasswordHash,
		&cred.Role,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	const query = `
        SELECT id, username, password_hash, role
        FROM employee_logins WHERE id=$1`

	var cred domain.Credential
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&cred.ID,
		&cred.Username,
		&cred.PasswordHash,
		&cred.Role,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE employee_logins SET password_hash=$1 WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	const query = `UPDATE employee_logins SET role=$1 WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM employee_logins WHERE id=$1`, id)
	return err
}
