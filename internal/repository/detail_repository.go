package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-directory/internal/domain"
)

// DetailRepository handles persistence for employee detail rows and the
// directory views derived from them.
type DetailRepository interface {
	Create(ctx context.Context, detail *domain.Detail) error
	List(ctx context.Context, limit, offset int) ([]domain.EmployeeSummary, error)
	OwnerProfile(ctx context.Context, id int64) (*domain.Profile, error)
	PublicProfile(ctx context.Context, id int64) (*domain.Profile, error)
	UpdateFields(ctx context.Context, id int64, patch domain.DetailPatch) error
	Delete(ctx context.Context, id int64) error
}

type detailRepository struct {
	db DB
}

// NewDetailRepository instantiates the repository.
func NewDetailRepository(db DB) DetailRepository {
	return &detailRepository{db: db}
}

func (r *detailRepository) Create(ctx context.Context, detail *domain.Detail) error {
	const query = `
        INSERT INTO employee_details (first_name, last_name, title, phone_number, date_of_birth, email)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		detail.FirstName,
		detail.LastName,
		detail.Title,
		detail.PhoneNumber,
		detail.DateOfBirth,
		detail.Email,
	).Scan(&detail.ID, &detail.CreatedAt, &detail.UpdatedAt)
}

func (r *detailRepository) List(ctx context.Context, limit, offset int) ([]domain.EmployeeSummary, error) {
	const query = `
        SELECT first_name, last_name, title
        FROM employee_details ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.EmployeeSummary, 0, limit)
	for rows.Next() {
		var summary domain.EmployeeSummary
		if err := rows.Scan(&summary.FirstName, &summary.LastName, &summary.Title); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func (r *detailRepository) OwnerProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	const query = `
        SELECT d.first_name, d.last_name, d.title, d.email, l.role,
               d.phone_number, d.date_of_birth, d.created_at, d.updated_at, l.username
        FROM employee_details d
        JOIN employee_logins l ON d.id = l.id
        WHERE d.id=$1`

	var profile domain.Profile
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.FirstName,
		&profile.LastName,
		&profile.Title,
		&profile.Email,
		&profile.Role,
		&profile.PhoneNumber,
		&profile.DateOfBirth,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&profile.Username,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *detailRepository) PublicProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	const query = `
        SELECT d.first_name, d.last_name, d.title, d.email, l.role
        FROM employee_details d
        JOIN employee_logins l ON d.id = l.id
        WHERE d.id=$1`

	var profile domain.Profile
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.FirstName,
		&profile.LastName,
		&profile.Title,
		&profile.Email,
		&profile.Role,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *detailRepository) UpdateFields(ctx context.Context, id int64, patch domain.DetailPatch) error {
	args := []any{}
	clauses := []string{}

	appendClause := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.FirstName != nil {
		appendClause("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		appendClause("last_name", *patch.LastName)
	}
	if patch.Title != nil {
		appendClause("title", *patch.Title)
	}
	if patch.PhoneNumber != nil {
		appendClause("phone_number", *patch.PhoneNumber)
	}
	if patch.DateOfBirth != nil {
		appendClause("date_of_birth", *patch.DateOfBirth)
	}
	if patch.Email != nil {
		appendClause("email", *patch.Email)
	}
	if len(clauses) == 0 {
		return nil
	}
	clauses = append(clauses, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE employee_details SET %s WHERE id=$%d",
		strings.Join(clauses, ", "), len(args))

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *detailRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM employee_details WHERE id=$1`, id)
	return err
}
