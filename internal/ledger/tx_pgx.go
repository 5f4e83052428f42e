package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// WithTx stores a pgx transaction in the context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom extracts a pgx transaction from the context if present. Postgres
// stores use it so reads and writes issued inside RunInTx share the
// transaction instead of grabbing fresh pool connections.
func TxFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// pgxTx backs StoreTx with a real database transaction. Serializable isolation
// gives the same no-interleaving guarantee the in-memory serializer provides.
type pgxTx struct {
	pool *pgxpool.Pool
}

// NewPgxTx returns a StoreTx that runs each atomic step in a serializable
// postgres transaction.
func NewPgxTx(pool *pgxpool.Pool) StoreTx {
	return &pgxTx{pool: pool}
}

func (t *pgxTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgx.BeginTxFunc(ctx, t.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}
