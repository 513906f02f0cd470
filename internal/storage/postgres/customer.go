package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/customer"
	"github.com/xenking/shoply/internal/domain/errs"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	db DB
}

// NewCustomerRepository returns a CustomerRepository over the given DB.
func NewCustomerRepository(db DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Add inserts a customer.
func (r *CustomerRepository) Add(ctx context.Context, c *customer.Customer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO customers (id, email, full_name, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Email, c.FullName, c.CreatedAt,
	)
	if err != nil {
		return storageErr("insert customer", err)
	}
	return nil
}

// Update rewrites the customer's mutable fields.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET email = $2, full_name = $3 WHERE id = $1`,
		c.ID, c.Email, c.FullName,
	)
	if err != nil {
		return storageErr("update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("customer", c.ID)
	}
	return nil
}

// Remove deletes a customer.
func (r *CustomerRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return storageErr("delete customer", err)
	}
	return nil
}

// FindByID returns one customer.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.QueryRow(ctx,
		`SELECT id, email, full_name, created_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Email, &c.FullName, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("customer", id)
		}
		return nil, storageErr("load customer", err)
	}
	return &c, nil
}
