// Package customer holds the minimal customer identity referenced by baskets
// and orders. Identity issuance and authentication live outside this service.
package customer

import (
	"context"
	"time"
)

// Customer is the identity a basket or order belongs to.
type Customer struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	Add(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Customer, error)
}
