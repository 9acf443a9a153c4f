package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/employee-directory/internal/domain"
)

// RoleRepository handles the three role-specific tables through the typed
// role metadata, so no caller ever names a table by hand.
type RoleRepository interface {
	Insert(ctx context.Context, rec domain.RoleRecord) error
	Get(ctx context.Context, role domain.Role, id int64) (*domain.RoleRecord, error)
	Delete(ctx context.Context, role domain.Role, id int64) error
	Exists(ctx context.Context, role domain.Role, id int64) (bool, error)
	PrimaryExists(ctx context.Context) (bool, error)
	IsPrimary(ctx context.Context, id int64) (bool, error)
	ClearReportingTo(ctx context.Context, subordinate domain.Role, supervisorID int64) error
}

type roleRepository struct {
	db DB
}

// NewRoleRepository instantiates the repository.
func NewRoleRepository(db DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Insert(ctx context.Context, rec domain.RoleRecord) error {
	if rec.Role == domain.RoleAdmin {
		const query = `INSERT INTO admin_info (id, is_primary, is_super) VALUES ($1,$2,$3)`
		_, err := r.db.Exec(ctx, query, rec.ID, rec.IsPrimary, rec.IsSuper)
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, added_by, reporting_to) VALUES ($1,$2,$3)`, rec.Role.Table())
	_, err := r.db.Exec(ctx, query, rec.ID, rec.AddedBy, rec.ReportingTo)
	return err
}

func (r *roleRepository) Get(ctx context.Context, role domain.Role, id int64) (*domain.RoleRecord, error) {
	rec := domain.RoleRecord{Role: role, ID: id}

	if role == domain.RoleAdmin {
		const query = `SELECT is_primary, is_super FROM admin_info WHERE id=$1`
		if err := r.db.QueryRow(ctx, query, id).Scan(&rec.IsPrimary, &rec.IsSuper); err != nil {
			return nil, err
		}
		return &rec, nil
	}

	query := fmt.Sprintf(`SELECT added_by, reporting_to FROM %s WHERE id=$1`, role.Table())
	if err := r.db.QueryRow(ctx, query, id).Scan(&rec.AddedBy, &rec.ReportingTo); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *roleRepository) Delete(ctx context.Context, role domain.Role, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, role.Table())
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *roleRepository) Exists(ctx context.Context, role domain.Role, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id=$1)`, role.Table())
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *roleRepository) PrimaryExists(ctx context.Context) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admin_info WHERE is_primary)`
	var exists bool
	if err := r.db.QueryRow(ctx, query).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *roleRepository) IsPrimary(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT is_primary FROM admin_info WHERE id=$1`
	var isPrimary bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&isPrimary); err != nil {
		return false, err
	}
	return isPrimary, nil
}

func (r *roleRepository) ClearReportingTo(ctx context.Context, subordinate domain.Role, supervisorID int64) error {
	query := fmt.Sprintf(
		`UPDATE %s SET reporting_to=NULL WHERE reporting_to=$1`, subordinate.Table())
	_, err := r.db.Exec(ctx, query, supervisorID)
	return err
}
