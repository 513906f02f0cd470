package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/payment"
)

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository returns a PaymentRepository over the given DB.
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Add inserts a payment.
func (r *PaymentRepository) Add(ctx context.Context, p *payment.Payment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO payments (id, order_id, customer_id, amount, payment_method_id, status, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OrderID, p.CustomerID, p.Amount, p.PaymentMethodID, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return storageErr("insert payment", err)
	}
	return nil
}

// Update rewrites the payment's status and order linkage.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payments SET order_id = NULLIF($2, ''), status = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.OrderID, string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		return storageErr("update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("payment", p.ID)
	}
	return nil
}

// Remove deletes a payment.
func (r *PaymentRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return storageErr("delete payment", err)
	}
	return nil
}

// FindByID returns one payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	var orderID *string
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT id, order_id, customer_id, amount, payment_method_id, status, created_at, updated_at
		 FROM payments WHERE id = $1`, id,
	).Scan(&p.ID, &orderID, &p.CustomerID, &p.Amount, &p.PaymentMethodID, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("payment", id)
		}
		return nil, storageErr("load payment", err)
	}
	if orderID != nil {
		p.OrderID = *orderID
	}
	p.Status = payment.Status(status)
	return &p, nil
}

// FindByOrder returns the payments recorded against an order.
func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) ([]payment.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, customer_id, amount, payment_method_id, status, created_at, updated_at
		 FROM payments WHERE order_id = $1 ORDER BY created_at`, orderID,
	)
	if err != nil {
		return nil, storageErr("list payments", err)
	}
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		var p payment.Payment
		var oid *string
		var status string
		if err := rows.Scan(&p.ID, &oid, &p.CustomerID, &p.Amount, &p.PaymentMethodID, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, storageErr("scan payment", err)
		}
		if oid != nil {
			p.OrderID = *oid
		}
		p.Status = payment.Status(status)
		out = append(out, p)
	}
	return out, rows.Err()
}
