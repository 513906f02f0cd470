package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/delivery"
	"github.com/xenking/shoply/internal/domain/errs"
)

var (
	_ delivery.Repository       = (*DeliveryRepository)(nil)
	_ delivery.StatusRepository = (*DeliveryStatusRepository)(nil)
)

// DeliveryRepository implements delivery.Repository backed by PostgreSQL.
type DeliveryRepository struct {
	db DB
}

// NewDeliveryRepository returns a DeliveryRepository over the given DB.
func NewDeliveryRepository(db DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Add inserts a delivery.
func (r *DeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO deliveries (id, order_id, delivery_status_id, created_at, delivered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.OrderID, d.StatusID, d.CreatedAt, d.DeliveredAt,
	)
	if err != nil {
		return storageErr("insert delivery", err)
	}
	return nil
}

// Update rewrites the delivery's status and delivered timestamp.
func (r *DeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE deliveries SET delivery_status_id = $2, delivered_at = $3 WHERE id = $1`,
		d.ID, d.StatusID, d.DeliveredAt,
	)
	if err != nil {
		return storageErr("update delivery", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("delivery", d.ID)
	}
	return nil
}

// Remove deletes a delivery.
func (r *DeliveryRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id); err != nil {
		return storageErr("delete delivery", err)
	}
	return nil
}

// FindByID returns one delivery.
func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*delivery.Delivery, error) {
	var d delivery.Delivery
	err := r.db.QueryRow(ctx,
		`SELECT id, order_id, delivery_status_id, created_at, delivered_at FROM deliveries WHERE id = $1`, id,
	).Scan(&d.ID, &d.OrderID, &d.StatusID, &d.CreatedAt, &d.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("delivery", id)
		}
		return nil, storageErr("load delivery", err)
	}
	return &d, nil
}

// FindByOrder returns the deliveries for an order.
func (r *DeliveryRepository) FindByOrder(ctx context.Context, orderID string) ([]delivery.Delivery, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, delivery_status_id, created_at, delivered_at
		 FROM deliveries WHERE order_id = $1 ORDER BY created_at`, orderID,
	)
	if err != nil {
		return nil, storageErr("list deliveries", err)
	}
	defer rows.Close()

	var out []delivery.Delivery
	for rows.Next() {
		var d delivery.Delivery
		if err := rows.Scan(&d.ID, &d.OrderID, &d.StatusID, &d.CreatedAt, &d.DeliveredAt); err != nil {
			return nil, storageErr("scan delivery", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeliveryStatusRepository reads the delivery_statuses lookup table.
type DeliveryStatusRepository struct {
	db DB
}

// NewDeliveryStatusRepository returns a DeliveryStatusRepository over the
// given DB.
func NewDeliveryStatusRepository(db DB) *DeliveryStatusRepository {
	return &DeliveryStatusRepository{db: db}
}

// FindByID returns one status by its identifier.
func (r *DeliveryStatusRepository) FindByID(ctx context.Context, id int) (*delivery.Status, error) {
	var s delivery.Status
	err := r.db.QueryRow(ctx, `SELECT id, name FROM delivery_statuses WHERE id = $1`, id).
		Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("delivery status", "")
		}
		return nil, storageErr("load delivery status", err)
	}
	return &s, nil
}

// List returns all statuses ordered by ID.
func (r *DeliveryStatusRepository) List(ctx context.Context) ([]delivery.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM delivery_statuses ORDER BY id`)
	if err != nil {
		return nil, storageErr("list delivery statuses", err)
	}
	defer rows.Close()

	var out []delivery.Status
	for rows.Next() {
		var s delivery.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, storageErr("scan delivery status", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
