// Package pg implements store.Store on PostgreSQL via pgx.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authcore/internal/store"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

type Store struct {
	pool   *pgxpool.Pool
	users  *userRepo
	tokens *tokenRepo
}

// New connects a pool and verifies it with a ping.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{
		pool:   pool,
		users:  &userRepo{pool: pool},
		tokens: &tokenRepo{pool: pool},
	}, nil
}

func (s *Store) Users() store.UserRepository                 { return s.users }
func (s *Store) RefreshTokens() store.RefreshTokenRepository { return s.tokens }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// mapErr translates driver errors into store sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrConflict
	}
	return fmt.Errorf("pg: %s: %w", op, err)
}
