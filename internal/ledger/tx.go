// Package ledger models the transactional substrate the registries run on: a
// single-writer, globally ordered sequence of atomic steps plus the monotonic
// height counter stamped on every committed mutation.
package ledger

import (
	"context"
	"sync"
)

// StoreTx serializes a mutating operation into one atomic step. Every reading,
// checking, and writing a service does inside the callback is indivisible
// relative to every other mutating call; a returned error commits nothing.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// serializedTx is the in-memory StoreTx: a process-wide mutex that gives the
// same total order of application the durable substrate would. Validation
// failures inside the callback leave no partial state because services only
// write after all checks pass.
type serializedTx struct {
	mu sync.Mutex
}

// NewSerializedTx returns the in-memory single-writer StoreTx.
func NewSerializedTx() StoreTx {
	return &serializedTx{}
}

func (t *serializedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
