package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/internal/ledger"
	"canopy/internal/milestone/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// Postgres persists the milestone graph; the identity column supplies the
// monotonic milestone id, and the edge table's primary key makes UpsertEdge
// an ON CONFLICT update.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Postgres) conn(ctx context.Context) querier {
	if tx, ok := ledger.TxFrom(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Postgres) Create(ctx context.Context, m *models.Milestone) (domain.MilestoneID, error) {
	const q = `
		INSERT INTO milestones (title, description, category, difficulty, forest_id, parent_id, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var parent any
	if m.ParentID.Valid {
		parent = uint64(m.ParentID.ID)
	}
	var id uint64
	err := s.conn(ctx).QueryRow(ctx, q,
		m.Title, m.Description, m.Category, m.Difficulty,
		uint64(m.ForestID), parent, m.CreatorID.String(), uint64(m.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert milestone: %w", err)
	}
	m.ID = domain.MilestoneID(id)
	return m.ID, nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.MilestoneID) (*models.Milestone, error) {
	const q = `
		SELECT title, description, category, difficulty, forest_id, parent_id, creator_id, created_at
		FROM milestones
		WHERE id = $1`

	var (
		m       models.Milestone
		forest  uint64
		parent  *uint64
		creator string
		height  uint64
	)
	err := s.conn(ctx).QueryRow(ctx, q, uint64(id)).Scan(
		&m.Title, &m.Description, &m.Category, &m.Difficulty,
		&forest, &parent, &creator, &height,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find milestone: %w", err)
	}
	m.ID = id
	m.ForestID = domain.ForestID(forest)
	if parent != nil {
		m.ParentID = domain.SomeMilestoneID(domain.MilestoneID(*parent))
	}
	m.CreatorID = domain.UserID(creator)
	m.CreatedAt = domain.Height(height)
	return &m, nil
}

func (s *Postgres) Exists(ctx context.Context, id domain.MilestoneID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM milestones WHERE id = $1)`

	var exists bool
	if err := s.conn(ctx).QueryRow(ctx, q, uint64(id)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check milestone: %w", err)
	}
	return exists, nil
}

func (s *Postgres) UpsertEdge(ctx context.Context, e *models.Edge) error {
	const q = `
		INSERT INTO prerequisite_edges (milestone_id, prerequisite_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (milestone_id, prerequisite_id) DO UPDATE SET added_at = EXCLUDED.added_at`

	_, err := s.conn(ctx).Exec(ctx, q, uint64(e.MilestoneID), uint64(e.PrerequisiteID), uint64(e.AddedAt))
	if err != nil {
		return fmt.Errorf("upsert edge: %w", err)
	}
	return nil
}

func (s *Postgres) EdgesOf(ctx context.Context, id domain.MilestoneID) ([]models.Edge, error) {
	const q = `
		SELECT prerequisite_id, added_at
		FROM prerequisite_edges
		WHERE milestone_id = $1
		ORDER BY prerequisite_id`

	rows, err := s.conn(ctx).Query(ctx, q, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	out := make([]models.Edge, 0)
	for rows.Next() {
		var (
			prereq uint64
			height uint64
		)
		if err := rows.Scan(&prereq, &height); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, models.Edge{
			MilestoneID:    id,
			PrerequisiteID: domain.MilestoneID(prereq),
			AddedAt:        domain.Height(height),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return out, nil
}

func (s *Postgres) PrerequisiteIDs(ctx context.Context, id domain.MilestoneID) ([]domain.MilestoneID, error) {
	edges, err := s.EdgesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.MilestoneID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.PrerequisiteID)
	}
	return ids, nil
}
