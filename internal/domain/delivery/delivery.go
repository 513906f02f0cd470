// Package delivery tracks shipment of persisted orders. A delivery always
// references an existing order, and its delivered timestamp is written
// exactly once, when a terminal status is first applied.
package delivery

import (
	"context"
	"time"
)

// Delivery status identifiers, matching the delivery_statuses seed rows.
const (
	StatusPreparing = 1
	StatusInTransit = 2
	StatusDelivered = 3
	StatusReturned  = 4
)

// Delivery tracks one shipment for an order.
type Delivery struct {
	ID          string
	OrderID     string
	StatusID    int
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// Status is a named delivery state from the delivery_statuses table.
type Status struct {
	ID   int
	Name string
}

// Repository defines persistence operations for deliveries.
type Repository interface {
	Add(ctx context.Context, d *Delivery) error
	Update(ctx context.Context, d *Delivery) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Delivery, error)
	FindByOrder(ctx context.Context, orderID string) ([]Delivery, error)
}

// StatusRepository defines lookups for delivery statuses.
type StatusRepository interface {
	FindByID(ctx context.Context, id int) (*Status, error)
	List(ctx context.Context) ([]Status, error)
}
