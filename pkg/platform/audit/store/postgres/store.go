package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"canopy/pkg/domain"
	"canopy/pkg/platform/audit"
)

// Store persists the verification trail in the audit_events table. Rows are
// insert-only; nothing updates or deletes them.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append inserts the event. Events arrive through the publisher after the
// mutation they describe has committed, so the insert runs on its own
// connection; a failure here loses the trail row, never the mutation.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const q = `
		INSERT INTO audit_events (id, action, occurred_at, height, actor_id, subject_id, forest_id, milestone_id, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), NULLIF($8, 0), $9, $10)`

	args := []any{
		uuid.New(),
		string(event.Action),
		event.Timestamp,
		uint64(event.Height),
		event.ActorID.String(),
		event.SubjectID.String(),
		uint64(event.ForestID),
		uint64(event.MilestoneID),
		event.Detail,
		event.RequestID,
	}

	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySubject returns every event about the given user in height order.
func (s *Store) ListBySubject(ctx context.Context, subject domain.UserID) ([]audit.Event, error) {
	const q = `
		SELECT action, occurred_at, height, actor_id, subject_id, COALESCE(forest_id, 0), COALESCE(milestone_id, 0), detail, request_id
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY height, occurred_at`

	rows, err := s.pool.Query(ctx, q, subject.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e                     audit.Event
			action, actor, subj   string
			height, forest, miles uint64
		)
		if err := rows.Scan(&action, &e.Timestamp, &height, &actor, &subj, &forest, &miles, &e.Detail, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.Height = domain.Height(height)
		e.ActorID = domain.UserID(actor)
		e.SubjectID = domain.UserID(subj)
		e.ForestID = domain.ForestID(forest)
		e.MilestoneID = domain.MilestoneID(miles)
		events = append(events, e)
	}
	return events, rows.Err()
}
