package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/internal/completion/models"
	"canopy/internal/ledger"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// Postgres persists completions; the (milestone_id, user_id) primary key
// enforces the at-most-once rule.
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

func (s *Postgres) Create(ctx context.Context, c *models.Completion) error {
	const q = `
		INSERT INTO completions (milestone_id, user_id, verifier_id, evidence, completed_at)
		VALUES ($1, $2, $3, $4, $5)`

	var evidence any
	if c.Evidence.Valid {
		evidence = c.Evidence.URL
	}
	_, err := s.conn(ctx).Exec(ctx, q,
		uint64(c.MilestoneID), c.UserID.String(), c.VerifierID.String(), evidence, uint64(c.CompletedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error) {
	const q = `
		SELECT verifier_id, evidence, completed_at
		FROM completions
		WHERE milestone_id = $1 AND user_id = $2`

	var (
		c        models.Completion
		verifier string
		evidence *string
		height   uint64
	)
	err := s.conn(ctx).QueryRow(ctx, q, uint64(milestone), user.String()).Scan(&verifier, &evidence, &height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find completion: %w", err)
	}
	c.MilestoneID = milestone
	c.UserID = user
	c.VerifierID = domain.UserID(verifier)
	if evidence != nil {
		c.Evidence = domain.SomeEvidence(*evidence)
	}
	c.CompletedAt = domain.Height(height)
	return &c, nil
}

func (s *Postgres) Exists(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM completions WHERE milestone_id = $1 AND user_id = $2)`

	var exists bool
	if err := s.conn(ctx).QueryRow(ctx, q, uint64(milestone), user.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return exists, nil
}
