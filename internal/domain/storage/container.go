package storage

import (
	"context"

	"folio/internal/domain/orders"
	"folio/internal/domain/paymentsrepo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool    *pgxpool.Pool // nil when running on the in-memory stores
	Orders  orders.Store
	PayLogs paymentsrepo.LogsStore
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:    db,
		Orders:  orders.NewRepository(db),
		PayLogs: paymentsrepo.NewLogsRepository(db),
	}
}

// NewMemoryContainer backs the container with process-local stores.
func NewMemoryContainer() *Container {
	return &Container{
		Orders:  orders.NewMemoryStore(),
		PayLogs: paymentsrepo.NewMemoryLogs(),
	}
}

// Tx is a temporary, tx-scoped set of repos for atomic units of work.
type Tx struct {
	Orders  orders.Store
	PayLogs paymentsrepo.LogsStore
}

// WithTx runs fn atomically. Without a pool fn runs directly against the memory stores.
func (c *Container) WithTx(ctx context.Context, fn func(s *Tx) error) error {
	if c.pool == nil {
		return fn(&Tx{Orders: c.Orders, PayLogs: c.PayLogs})
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &Tx{
		Orders:  orders.NewRepository(tx),
		PayLogs: paymentsrepo.NewLogsRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ping reports whether the backing database is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Ping(ctx)
}

func (c *Container) InMemory() bool { return c.pool == nil }
