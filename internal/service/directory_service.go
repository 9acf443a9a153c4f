package service

import (
	"context"

	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util/errorutil"
)

// maxListLimit caps how many directory rows one request may fetch.
const maxListLimit = 100

// DirectoryService serves the read-only directory views.
type DirectoryService struct {
	store repository.Store
}

// NewDirectoryService builds the service.
func NewDirectoryService(store repository.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// List returns the public employee listing. Deliberately unauthenticated.
func (s *DirectoryService) List(ctx context.Context, from, limit int) ([]domain.EmployeeSummary, error) {
	if limit > maxListLimit || limit <= 0 || from < 0 {
		return nil, apperrors.NewInvalidRange("Unprocessable Entity")
	}
	return s.store.Details().List(ctx, limit, from)
}

// Profile returns the target's profile. The owner sees every field; anyone
// else gets the reduced shape. That boundary is the point of this endpoint
// and must not widen.
func (s *DirectoryService) Profile(ctx context.Context, requesterID, targetID int64) (*domain.Profile, error) {
	var (
		profile *domain.Profile
		err     error
	)
	if requesterID == targetID {
		profile, err = s.store.Details().OwnerProfile(ctx, targetID)
	} else {
		profile, err = s.store.Details().PublicProfile(ctx, targetID)
	}
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	return profile, nil
}
