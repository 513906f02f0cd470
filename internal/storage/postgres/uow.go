package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/checkout"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
)

var _ checkout.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork starts pgx transactions that implement the checkout Tx contract.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a UnitOfWork over the given pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// Begin opens a read-committed transaction.
func (u *UnitOfWork) Begin(ctx context.Context) (checkout.Tx, error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx is one atomic unit of work over a pgx transaction. Reads through the
// tx-bound repositories run inside the transaction; basket reads take a
// NOWAIT row lock so concurrent checkouts for the same customer fail fast
// with a ConcurrencyConflict instead of double-converting the basket.
// Registered changes are applied in order by Commit; if any change or the
// final commit fails, nothing becomes durably visible.
type Tx struct {
	tx      pgx.Tx
	changes []checkout.Change
	done    bool
}

// Baskets returns the tx-bound basket repository with locking reads.
func (t *Tx) Baskets() basket.Repository {
	return NewBasketRepository(t.tx).Locking()
}

// Orders returns the tx-bound order repository.
func (t *Tx) Orders() order.Repository {
	return NewOrderRepository(t.tx)
}

// Payments returns the tx-bound payment repository.
func (t *Tx) Payments() payment.Repository {
	return NewPaymentRepository(t.tx)
}

// Register queues a change to be applied at Commit, in registration order.
func (t *Tx) Register(c checkout.Change) {
	t.changes = append(t.changes, c)
}

// Commit applies every registered change and commits the transaction. On any
// failure the transaction is left open for Rollback and none of the changes
// are durably visible.
func (t *Tx) Commit(ctx context.Context) error {
	for _, c := range t.changes {
		if err := c(ctx); err != nil {
			return err
		}
	}
	if err := t.tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	t.done = true
	return nil
}

// Rollback aborts the transaction. Calling it after a successful Commit is a
// no-op, which lets callers use it unconditionally in a defer.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storageErr("rollback transaction", err)
	}
	return nil
}
