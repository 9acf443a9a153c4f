package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the querying surface shared by pgxpool.Pool and pgx.Tx, so the same
// repository code serves both pooled and transactional access.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store aggregates the repositories. InTx runs fn against a store bound to a
// single transaction: every statement issued inside commits together or not
// at all, and the connection is released on every exit path.
type Store interface {
	Credentials() CredentialRepository
	Details() DetailRepository
	Roles() RoleRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgxStore struct {
	pool  *pgxpool.Pool
	creds CredentialRepository
	dets  DetailRepository
	roles RoleRepository
}

// NewStore returns a Postgres-backed Store over the given pool.
func NewStore(pool *pgxpool.Pool) Store {
	return newPgxStore(pool, pool)
}

func newPgxStore(pool *pgxpool.Pool, db DB) *pgxStore {
	return &pgxStore{
		pool:  pool,
		creds: NewCredentialRepository(db),
		dets:  NewDetailRepository(db),
		roles: NewRoleRepository(db),
	}
}

func (s *pgxStore) Credentials() CredentialRepository { return s.creds }
func (s *pgxStore) Details() DetailRepository         { return s.dets }
func (s *pgxStore) Roles() RoleRepository             { return s.roles }

func (s *pgxStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// Already transaction-bound; run within the enclosing transaction.
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(newPgxStore(nil, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsNoRows reports whether err is the no-row sentinel from the store.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
