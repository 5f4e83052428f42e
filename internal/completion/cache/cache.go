// Package cache is a read-through Redis layer in front of the completion
// store. Completions are terminal and never removed, so a positive answer
// can be cached without expiry concerns; absence is never cached because it
// flips exactly once.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"canopy/internal/completion/models"
	"canopy/internal/completion/store"
	"canopy/pkg/domain"
)

// DefaultTTL bounds key lifetime so a flushed or repointed cache repopulates
// itself; correctness never depends on a hit.
const DefaultTTL = 24 * time.Hour

type Store struct {
	inner  store.Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New wraps inner with a Redis existence cache. Cache failures degrade to
// the inner store and are logged, never surfaced.
func New(inner store.Store, client *redis.Client, opts ...Option) *Store {
	s := &Store{inner: inner, client: client, ttl: DefaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(milestone domain.MilestoneID, user domain.UserID) string {
	return fmt.Sprintf("completion:%d:%s", milestone, user)
}

// Create delegates without touching the cache: the write may sit inside an
// uncommitted ledger transaction, and a cached positive for a rolled-back
// write would be permanent. The next Exists read repopulates the key.
func (s *Store) Create(ctx context.Context, c *models.Completion) error {
	return s.inner.Create(ctx, c)
}

func (s *Store) Find(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error) {
	return s.inner.Find(ctx, milestone, user)
}

func (s *Store) Exists(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error) {
	hit, err := s.client.Exists(ctx, cacheKey(milestone, user)).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "completion cache read failed", "error", err)
	} else if hit > 0 {
		return true, nil
	}

	ok, err := s.inner.Exists(ctx, milestone, user)
	if err != nil {
		return false, err
	}
	if ok {
		if err := s.client.Set(ctx, cacheKey(milestone, user), 1, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "completion cache write failed", "error", err)
		}
	}
	return ok, nil
}
