// Package memstore provides an in-memory repository.Store used by tests.
// InTx snapshots state before running fn and restores it on failure, giving
// the same all-or-nothing visibility as the Postgres store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
)

// Store holds all tables in maps keyed by employee id.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	creds   map[int64]domain.Credential
	details map[int64]domain.Detail
	roles   map[domain.Role]map[int64]domain.RoleRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{
		nextID:  1,
		creds:   map[int64]domain.Credential{},
		details: map[int64]domain.Detail{},
		roles: map[domain.Role]map[int64]domain.RoleRecord{
			domain.RoleAdmin:   {},
			domain.RoleManager: {},
			domain.RoleStaff:   {},
		},
	}
}

func (s *Store) Credentials() repository.CredentialRepository { return credRepo{s} }
func (s *Store) Details() repository.DetailRepository         { return detailRepo{s} }
func (s *Store) Roles() repository.RoleRepository             { return roleRepo{s} }

func (s *Store) InTx(_ context.Context, fn func(repository.Store) error) error {
	snapshot := s.clone()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) clone() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New()
	c.nextID = s.nextID
	for id, cred := range s.creds {
		c.creds[id] = cred
	}
	for id, det := range s.details {
		c.details[id] = det
	}
	for role, rows := range s.roles {
		for id, rec := range rows {
			c.roles[role][id] = rec
		}
	}
	return c
}

func (s *Store) restore(snapshot *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snapshot.nextID
	s.creds = snapshot.creds
	s.details = snapshot.details
	s.roles = snapshot.roles
}

type credRepo struct{ s *Store }

func (r credRepo) Create(_ context.Context, cred *domain.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.creds[cred.ID] = *cred
	return nil
}

func (r credRepo) GetByUsername(_ context.Context, username string) (*domain.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cred := range r.s.creds {
		if cred.Username == username {
			out := cred
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r credRepo) GetByID(_ context.Context, id int64) (*domain.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cred, ok := r.s.creds[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cred
	return &out, nil
}

func (r credRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cred, ok := r.s.creds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cred.PasswordHash = passwordHash
	r.s.creds[id] = cred
	return nil
}

func (r credRepo) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cred, ok := r.s.creds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cred.Role = role
	r.s.creds[id] = cred
	return nil
}

func (r credRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.creds, id)
	return nil
}

type detailRepo struct{ s *Store }

func (r detailRepo) Create(_ context.Context, detail *domain.Detail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	detail.ID = r.s.nextID
	r.s.nextID++
	now := time.Now()
	detail.CreatedAt = now
	detail.UpdatedAt = now
	r.s.details[detail.ID] = *detail
	return nil
}

func (r detailRepo) List(_ context.Context, limit, offset int) ([]domain.EmployeeSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]int64, 0, len(r.s.details))
	for id := range r.s.details {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := []domain.EmployeeSummary{}
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(result) == limit {
			break
		}
		det := r.s.details[id]
		result = append(result, domain.EmployeeSummary{
			FirstName: det.FirstName,
			LastName:  det.LastName,
			Title:     det.Title,
		})
	}
	return result, nil
}

func (r detailRepo) OwnerProfile(_ context.Context, id int64) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	det, ok := r.s.details[id]
	cred, okCred := r.s.creds[id]
	if !ok || !okCred {
		return nil, pgx.ErrNoRows
	}
	phone := det.PhoneNumber
	dob := det.DateOfBirth
	created := det.CreatedAt
	updated := det.UpdatedAt
	username := cred.Username
	return &domain.Profile{
		FirstName:   det.FirstName,
		LastName:    det.LastName,
		Title:       det.Title,
		Email:       det.Email,
		Role:        cred.Role,
		PhoneNumber: &phone,
		DateOfBirth: &dob,
		CreatedAt:   &created,
		UpdatedAt:   &updated,
		Username:    &username,
	}, nil
}

func (r detailRepo) PublicProfile(_ context.Context, id int64) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	det, ok := r.s.details[id]
	cred, okCred := r.s.creds[id]
	if !ok || !okCred {
		return nil, pgx.ErrNoRows
	}
	return &domain.Profile{
		FirstName: det.FirstName,
		LastName:  det.LastName,
		Title:     det.Title,
		Email:     det.Email,
		Role:      cred.Role,
	}, nil
}

func (r detailRepo) UpdateFields(_ context.Context, id int64, patch domain.DetailPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	det, ok := r.s.details[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if patch.FirstName != nil {
		det.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		det.LastName = *patch.LastName
	}
	if patch.Title != nil {
		det.Title = *patch.Title
	}
	if patch.PhoneNumber != nil {
		det.PhoneNumber = *patch.PhoneNumber
	}
	if patch.DateOfBirth != nil {
		det.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Email != nil {
		det.Email = *patch.Email
	}
	det.UpdatedAt = time.Now()
	r.s.details[id] = det
	return nil
}

func (r detailRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.details, id)
	return nil
}

type roleRepo struct{ s *Store }

func (r roleRepo) Insert(_ context.Context, rec domain.RoleRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles[rec.Role][rec.ID] = rec
	return nil
}

func (r roleRepo) Get(_ context.Context, role domain.Role, id int64) (*domain.RoleRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.roles[role][id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := rec
	return &out, nil
}

func (r roleRepo) Delete(_ context.Context, role domain.Role, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.roles[role], id)
	return nil
}

func (r roleRepo) Exists(_ context.Context, role domain.Role, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.roles[role][id]
	return ok, nil
}

func (r roleRepo) PrimaryExists(_ context.Context) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.roles[domain.RoleAdmin] {
		if rec.IsPrimary {
			return true, nil
		}
	}
	return false, nil
}

func (r roleRepo) IsPrimary(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.roles[domain.RoleAdmin][id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	return rec.IsPrimary, nil
}

func (r roleRepo) ClearReportingTo(_ context.Context, subordinate domain.Role, supervisorID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.roles[subordinate] {
		if rec.ReportingTo != nil && *rec.ReportingTo == supervisorID {
			rec.ReportingTo = nil
			r.s.roles[subordinate][id] = rec
		}
	}
	return nil
}

// Denylist is an in-memory repository.TokenDenylist.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewDenylist returns an empty denylist.
func NewDenylist() *Denylist {
	return &Denylist{revoked: map[string]time.Time{}}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = until
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}
