package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/order"
)

var (
	_ order.Repository       = (*OrderRepository)(nil)
	_ order.StatusRepository = (*OrderStatusRepository)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// and their items are written together; items are owned by the order and
// cascade on delete.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository over the given DB.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Add inserts the order and all of its items.
func (r *OrderRepository) Add(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO orders (id, customer_id, shipping_address, order_date, order_status_id, total_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.CustomerID, o.ShippingAddress, o.OrderDate, o.StatusID, o.TotalAmount, o.CreatedAt,
	)
	if err != nil {
		return storageErr("insert order", err)
	}

	for _, item := range o.Items {
		_, err := r.db.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, total_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice,
		)
		if err != nil {
			return storageErr("insert order item", err)
		}
	}
	return nil
}

// Remove deletes the order and cascades to its items.
func (r *OrderRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return storageErr("delete order", err)
	}
	return nil
}

// FindByID loads one order with its items.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.db.QueryRow(ctx,
		`SELECT id, customer_id, shipping_address, order_date, order_status_id, total_amount, created_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.CustomerID, &o.ShippingAddress, &o.OrderDate, &o.StatusID, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("order", id)
		}
		return nil, storageErr("load order", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// FindByCustomer returns the customer's orders, newest first, with items.
func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, customer_id, shipping_address, order_date, order_status_id, total_amount, created_at
		 FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID,
	)
	if err != nil {
		return nil, storageErr("load orders", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ShippingAddress, &o.OrderDate, &o.StatusID, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, storageErr("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate orders", err)
	}

	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, storageErr("load order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, storageErr("scan order item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate order items", err)
	}
	return items, nil
}

// OrderStatusRepository reads the order_statuses lookup table.
type OrderStatusRepository struct {
	db DB
}

// NewOrderStatusRepository returns an OrderStatusRepository over the given DB.
func NewOrderStatusRepository(db DB) *OrderStatusRepository {
	return &OrderStatusRepository{db: db}
}

// FindByID returns one status by its identifier.
func (r *OrderStatusRepository) FindByID(ctx context.Context, id int) (*order.Status, error) {
	var s order.Status
	err := r.db.QueryRow(ctx, `SELECT id, name FROM order_statuses WHERE id = $1`, id).
		Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("order status", "")
		}
		return nil, storageErr("load order status", err)
	}
	return &s, nil
}

// List returns all statuses ordered by ID.
func (r *OrderStatusRepository) List(ctx context.Context) ([]order.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM order_statuses ORDER BY id`)
	if err != nil {
		return nil, storageErr("list order statuses", err)
	}
	defer rows.Close()

	var out []order.Status
	for rows.Next() {
		var s order.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, storageErr("scan order status", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
