package checkout

import (
	"context"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
)

// Change is a write deferred until Tx.Commit. Registered changes run in
// registration order inside the same storage transaction.
type Change func(ctx context.Context) error

// Tx is one atomic unit of work over the basket, order, and payment stores.
// Reads through the tx-bound repositories see the transaction's own writes
// and take row locks where the implementation requires them. Commit applies
// every registered change and makes the transaction durable; on any failure
// none of the changes become visible. Rollback after Commit is a no-op.
type Tx interface {
	Baskets() basket.Repository
	Orders() order.Repository
	Payments() payment.Repository

	Register(c Change)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork starts transactions for multi-entity writes.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}
