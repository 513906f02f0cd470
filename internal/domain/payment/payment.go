// Package payment models payments against orders. A payment's lifecycle is
// owned outside the checkout core; the one rule enforced here is that a
// payment can never return to the Pending state once it has left it.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/shoply/internal/domain/errs"
)

// Status enumerates payment states.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusRefunded  Status = "Refunded"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// Payment records money owed or moved for an order. OrderID may be empty for
// payments created ahead of order persistence.
type Payment struct {
	ID              string
	OrderID         string
	CustomerID      string
	Amount          decimal.Decimal
	PaymentMethodID int
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transition changes the payment status. Any state may move to any valid
// state except back to Pending.
func (p *Payment) Transition(to Status) error {
	if !to.Valid() {
		return errs.Validation("status", "unknown payment status %q", string(to))
	}
	if to == StatusPending && p.Status != StatusPending {
		return errs.Invariant("status", "any state except Pending", string(to))
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return nil
}

// Repository defines persistence operations for payments.
type Repository interface {
	Add(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByOrder(ctx context.Context, orderID string) ([]Payment, error)
}
