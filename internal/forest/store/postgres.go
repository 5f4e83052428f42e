package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/internal/forest/models"
	"canopy/internal/ledger"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// Postgres persists forests; the identity column supplies the monotonic id.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

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

func (s *Postgres) Create(ctx context.Context, f *models.Forest) (domain.ForestID, error) {
	const q = `
		INSERT INTO forests (name, description, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id uint64
	err := s.conn(ctx).QueryRow(ctx, q, f.Name, f.Description, f.CreatorID.String(), uint64(f.CreatedAt)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert forest: %w", err)
	}
	f.ID = domain.ForestID(id)
	return f.ID, nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ForestID) (*models.Forest, error) {
	const q = `
		SELECT name, description, creator_id, created_at
		FROM forests
		WHERE id = $1`

	var (
		f       models.Forest
		creator string
		height  uint64
	)
	err := s.conn(ctx).QueryRow(ctx, q, uint64(id)).Scan(&f.Name, &f.Description, &creator, &height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find forest: %w", err)
	}
	f.ID = id
	f.CreatorID = domain.UserID(creator)
	f.CreatedAt = domain.Height(height)
	return &f, nil
}

func (s *Postgres) Exists(ctx context.Context, id domain.ForestID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM forests WHERE id = $1)`

	var exists bool
	if err := s.conn(ctx).QueryRow(ctx, q, uint64(id)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check forest: %w", err)
	}
	return exists, nil
}
