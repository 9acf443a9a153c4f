package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util/errorutil"
)

// ErrNoChange signals a scope change to the role the target already holds.
// Reported as not-modified rather than as a failure.
var ErrNoChange = errors.New("no modification needed")

// LifecycleService owns employee creation, edits and deletion. It is the
// only writer of the role tables: every multi-statement mutation runs in a
// single transaction so the one-role-row-per-id invariant survives failures.
type LifecycleService struct {
	store      repository.Store
	bcryptCost int
}

// NewLifecycleService builds the service.
func NewLifecycleService(cfg config.Config, store repository.Store) *LifecycleService {
	return &LifecycleService{store: store, bcryptCost: cfg.Auth.BcryptCost}
}

// RoleOptions carries the role-specific attributes of a new employee.
type RoleOptions struct {
	IsPrimary   bool
	IsSuper     bool
	ReportingTo *int64
}

// CreateEmployeeInput describes a new employee.
type CreateEmployeeInput struct {
	Username    string
	Email       string
	Role        domain.Role
	FirstName   string
	LastName    string
	Title       string
	PhoneNumber string
	DateOfBirth time.Time
	Options     RoleOptions
}

// CreateEmployee inserts detail, credential and role rows as one atomic
// unit and returns the generated initial password. Admin-only.
func (s *LifecycleService) CreateEmployee(ctx context.Context, actor Actor, input CreateEmployeeInput) (string, error) {
	if actor.Role != domain.RoleAdmin {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}

	password := auth.GenerateInitialPassword()
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := s.checkRoleOptions(ctx, tx, input.Role, input.Options); err != nil {
			return err
		}

		detail := &domain.Detail{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Title:       input.Title,
			PhoneNumber: input.PhoneNumber,
			DateOfBirth: input.DateOfBirth,
			Email:       input.Email,
		}
		if err := tx.Details().Create(ctx, detail); err != nil {
			return err
		}

		cred := &domain.Credential{
			ID:           detail.ID,
			Username:     input.Username,
			PasswordHash: hash,
			Role:         input.Role,
		}
		if err := tx.Credentials().Create(ctx, cred); err != nil {
			return err
		}

		rec := domain.RoleRecord{Role: input.Role, ID: detail.ID}
		if input.Role == domain.RoleAdmin {
			rec.IsPrimary = input.Options.IsPrimary
			rec.IsSuper = input.Options.IsSuper
		} else {
			addedBy := actor.ID
			rec.AddedBy = &addedBy
			rec.ReportingTo = input.Options.ReportingTo
		}
		return tx.Roles().Insert(ctx, rec)
	})
	if err != nil {
		return "", err
	}
	return password, nil
}

func (s *LifecycleService) checkRoleOptions(ctx context.Context, tx repository.Store, role domain.Role, opts RoleOptions) error {
	switch role {
	case domain.RoleManager:
		if opts.ReportingTo != nil {
			ok, err := tx.Roles().Exists(ctx, domain.RoleAdmin, *opts.ReportingTo)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.NewInvalidReportingTo("Reporting to: Not an Admin")
			}
		}
	case domain.RoleStaff:
		if opts.ReportingTo != nil {
			ok, err := tx.Roles().Exists(ctx, domain.RoleManager, *opts.ReportingTo)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.NewInvalidReportingTo("Reporting to: Not a Manager")
			}
		}
	case domain.RoleAdmin:
		if opts.IsPrimary {
			exists, err := tx.Roles().PrimaryExists(ctx)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.NewPrimaryExists()
			}
		}
	}
	return nil
}

// EditDetail applies a partial update to the target's detail row. Allowed
// for the target themselves or any admin.
func (s *LifecycleService) EditDetail(ctx context.Context, actor Actor, targetID int64, patch domain.DetailPatch) error {
	if actor.ID != targetID && actor.Role != domain.RoleAdmin {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	if _, err := s.getCredential(ctx, targetID); err != nil {
		return err
	}
	if patch.Empty() {
		return nil
	}

	if err := s.store.Details().UpdateFields(ctx, targetID, patch); err != nil {
		if repository.IsNoRows(err) {
			return apperrors.NewNotFound("user")
		}
		return err
	}
	return nil
}

// EditScope moves the target between role tables. The new role row is
// inserted, the credential role updated and the old role row deleted as one
// atomic unit. Admin-only.
func (s *LifecycleService) EditScope(ctx context.Context, actor Actor, targetID int64, newRole domain.Role, reportingTo *int64) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	cred, err := s.getCredential(ctx, targetID)
	if err != nil {
		return err
	}
	if cred.Role == newRole {
		return ErrNoChange
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		old, err := tx.Roles().Get(ctx, cred.Role, targetID)
		if err != nil {
			return err
		}

		rec := domain.RoleRecord{
			Role:        newRole,
			ID:          targetID,
			AddedBy:     old.AddedBy,
			ReportingTo: reportingTo,
		}
		if err := tx.Roles().Insert(ctx, rec); err != nil {
			return err
		}
		if err := tx.Credentials().UpdateRole(ctx, targetID, newRole); err != nil {
			return err
		}
		return tx.Roles().Delete(ctx, cred.Role, targetID)
	})
}

// DeleteEmployee removes the target's role, credential and detail rows as
// one atomic unit, clearing reporting_to on any subordinates first. The
// primary admin cannot be deleted. Admin-only.
func (s *LifecycleService) DeleteEmployee(ctx context.Context, actor Actor, targetID int64) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	cred, err := s.getCredential(ctx, targetID)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		if cred.Role == domain.RoleAdmin {
			isPrimary, err := tx.Roles().IsPrimary(ctx, targetID)
			if err != nil {
				return err
			}
			if isPrimary {
				return apperrors.NewPrimaryProtected()
			}
		}

		if subordinate, ok := cred.Role.Subordinate(); ok {
			if err := tx.Roles().ClearReportingTo(ctx, subordinate, targetID); err != nil {
				return err
			}
		}

		if err := tx.Roles().Delete(ctx, cred.Role, targetID); err != nil {
			return err
		}
		if err := tx.Credentials().Delete(ctx, targetID); err != nil {
			return err
		}
		return tx.Details().Delete(ctx, targetID)
	})
}

func (s *LifecycleService) getCredential(ctx context.Context, id int64) (*domain.Credential, error) {
	cred, err := s.store.Credentials().GetByID(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	return cred, nil
}
