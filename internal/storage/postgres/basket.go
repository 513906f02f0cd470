package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/errs"
)

var _ basket.Repository = (*BasketRepository)(nil)

// BasketRepository implements basket.Repository backed by PostgreSQL. When
// forUpdate is set, basket reads take a NOWAIT row lock so a concurrent
// checkout on the same basket surfaces a ConcurrencyConflict instead of
// silently double-converting.
type BasketRepository struct {
	db        DB
	forUpdate bool
}

// NewBasketRepository returns a BasketRepository over the given DB.
func NewBasketRepository(db DB) *BasketRepository {
	return &BasketRepository{db: db}
}

// Locking returns a copy of the repository whose basket reads acquire
// FOR UPDATE NOWAIT row locks. Only meaningful inside a transaction.
func (r *BasketRepository) Locking() *BasketRepository {
	return &BasketRepository{db: r.db, forUpdate: true}
}

// Add inserts a new empty basket.
func (r *BasketRepository) Add(ctx context.Context, b *basket.Basket) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO baskets (id, customer_id, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.CustomerID, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return storageErr("insert basket", err)
	}
	return nil
}

// Update persists the basket's full item set and bumps its version. The item
// rows are replaced wholesale; the basket aggregate is small and this keeps
// the write path free of per-item diffing.
func (r *BasketRepository) Update(ctx context.Context, b *basket.Basket) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE baskets SET version = version + 1, updated_at = now() WHERE id = $1 AND version = $2`,
		b.ID, b.Version,
	)
	if err != nil {
		return storageErr("update basket", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(errs.ErrConcurrencyConflict, "basket version changed")
	}
	b.Version++

	if _, err := r.db.Exec(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, b.ID); err != nil {
		return storageErr("clear basket items", err)
	}
	for _, item := range b.Items {
		_, err := r.db.Exec(ctx,
			`INSERT INTO basket_items (id, basket_id, product_id, quantity, added_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			item.ID, b.ID, item.ProductID, item.Quantity, item.AddedAt,
		)
		if err != nil {
			return storageErr("insert basket item", err)
		}
	}
	return nil
}

// Remove deletes the basket and, through the FK cascade, its items.
func (r *BasketRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM baskets WHERE id = $1`, id); err != nil {
		return storageErr("delete basket", err)
	}
	return nil
}

// FindByID loads a basket and its items by basket ID.
func (r *BasketRepository) FindByID(ctx context.Context, id string) (*basket.Basket, error) {
	return r.find(ctx, `WHERE id = $1`, id)
}

// FindByCustomer loads the customer's basket and its items.
func (r *BasketRepository) FindByCustomer(ctx context.Context, customerID string) (*basket.Basket, error) {
	return r.find(ctx, `WHERE customer_id = $1`, customerID)
}

func (r *BasketRepository) find(ctx context.Context, where string, arg any) (*basket.Basket, error) {
	q := `SELECT id, customer_id, version, created_at, updated_at FROM baskets ` + where
	if r.forUpdate {
		q += ` FOR UPDATE NOWAIT`
	}

	var b basket.Basket
	err := r.db.QueryRow(ctx, q, arg).
		Scan(&b.ID, &b.CustomerID, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("basket", "")
		}
		return nil, storageErr("load basket", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, basket_id, product_id, quantity, added_at
		 FROM basket_items WHERE basket_id = $1 ORDER BY added_at, id`,
		b.ID,
	)
	if err != nil {
		return nil, storageErr("load basket items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item basket.Item
		if err := rows.Scan(&item.ID, &item.BasketID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, storageErr("scan basket item", err)
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate basket items", err)
	}
	return &b, nil
}
