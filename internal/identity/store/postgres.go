package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/internal/identity/models"
	"canopy/internal/ledger"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// Postgres persists users in the users table (see migrations/0001_init.sql).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// querier narrows pgx so reads and writes can join an in-flight ledger
// transaction when one is on the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Postgres) conn(ctx context.Context) querier {
	if tx, ok := ledger.TxFrom(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, name, role, registered_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.conn(ctx).Exec(ctx, q, user.ID.String(), user.Name, int(user.Role), uint64(user.RegisteredAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	const q = `
		SELECT id, name, role, registered_at
		FROM users
		WHERE id = $1`

	var (
		u      models.User
		rawID  string
		role   int
		height uint64
	)
	err := s.conn(ctx).QueryRow(ctx, q, id.String()).Scan(&rawID, &u.Name, &role, &height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = domain.UserID(rawID)
	u.Role = domain.Role(role)
	u.RegisteredAt = domain.Height(height)
	return &u, nil
}
