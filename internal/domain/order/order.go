// Package order implements the immutable post-checkout aggregate. An order is
// built once from validated item specs and never mutated afterwards; only the
// status transitions through a separate path.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order status identifiers, matching the order_statuses seed rows.
const (
	StatusPlaced    = 1
	StatusPaid      = 2
	StatusShipped   = 3
	StatusDelivered = 4
	StatusCancelled = 5
)

// MaxShippingAddressLen bounds the shipping address length.
const MaxShippingAddressLen = 500

// Item is a frozen order line. Prices are snapshots taken at checkout time;
// TotalPrice always equals Quantity * UnitPrice exactly.
type Item struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Order is a placed order with its frozen line items. TotalAmount always
// equals the sum of item totals.
type Order struct {
	ID              string
	CustomerID      string
	ShippingAddress string
	OrderDate       time.Time
	StatusID        int
	TotalAmount     decimal.Decimal
	Items           []Item
	CreatedAt       time.Time
}

// Status is a named order state from the order_statuses table.
type Status struct {
	ID   int
	Name string
}

// Repository defines persistence operations for orders and their items.
type Repository interface {
	Add(ctx context.Context, o *Order) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]Order, error)
}

// StatusRepository defines lookups for order statuses.
type StatusRepository interface {
	FindByID(ctx context.Context, id int) (*Status, error)
	List(ctx context.Context) ([]Status, error)
}
