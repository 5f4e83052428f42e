package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/internal/ledger"
	"canopy/internal/relationship/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// Postgres persists relationships with a composite primary key on the ordered
// pair.
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

func (s *Postgres) Create(ctx context.Context, rel *models.Relationship) error {
	const q = `
		INSERT INTO relationships (guardian_id, child_id, kind, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.conn(ctx).Exec(ctx, q, rel.GuardianID.String(), rel.ChildID.String(), rel.Kind.String(), uint64(rel.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("insert relationship: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, guardian, child domain.UserID) (*models.Relationship, error) {
	const q = `
		SELECT kind, created_at
		FROM relationships
		WHERE guardian_id = $1 AND child_id = $2`

	var (
		kind   string
		height uint64
	)
	err := s.conn(ctx).QueryRow(ctx, q, guardian.String(), child.String()).Scan(&kind, &height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find relationship: %w", err)
	}
	return &models.Relationship{
		GuardianID: guardian,
		ChildID:    child,
		Kind:       domain.RelationshipKind(kind),
		CreatedAt:  domain.Height(height),
	}, nil
}

func (s *Postgres) Exists(ctx context.Context, guardian, child domain.UserID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM relationships WHERE guardian_id = $1 AND child_id = $2
		)`

	var exists bool
	if err := s.conn(ctx).QueryRow(ctx, q, guardian.String(), child.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check relationship: %w", err)
	}
	return exists, nil
}
