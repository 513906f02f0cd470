// Package basket implements the mutable pre-checkout aggregate: the ordered
// set of line items a customer intends to purchase. Items are unique by
// product; prices are never stored here, they are resolved from the catalog
// at snapshot and checkout time.
package basket

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/money"
)

// Item is a single product line inside a basket. Quantity is always positive;
// an item whose quantity would drop to zero is removed instead.
type Item struct {
	ID        string
	BasketID  string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Basket is the per-customer collection of items. One basket per customer;
// created lazily on first add and emptied on successful checkout.
type Basket struct {
	ID         string
	CustomerID string
	Version    int64
	Items      []Item
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New creates an empty basket for the customer.
func New(customerID string) *Basket {
	now := time.Now()
	return &Basket{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsEmpty reports whether the basket has no items.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// itemIndex returns the position of the item for productID, or -1.
func (b *Basket) itemIndex(productID string) int {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds quantity of the product to the basket. If the product is
// already present its quantity is incremented, otherwise a new item is
// appended. Fails with a ValidationError when quantity is not positive.
func (b *Basket) AddItem(productID string, quantity int) error {
	if err := money.ValidatePositiveInt(quantity, "quantity"); err != nil {
		return err
	}

	if i := b.itemIndex(productID); i >= 0 {
		b.Items[i].Quantity += quantity
		return nil
	}

	b.Items = append(b.Items, Item{
		ID:        uuid.New().String(),
		BasketID:  b.ID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
	return nil
}

// UpdateItem replaces the quantity of an existing item. Fails with a
// NotFoundError when the product is absent and a ValidationError when the new
// quantity is not positive.
func (b *Basket) UpdateItem(productID string, quantity int) error {
	i := b.itemIndex(productID)
	if i < 0 {
		return errs.NotFound("basket item", productID)
	}
	if err := money.ValidatePositiveInt(quantity, "quantity"); err != nil {
		return err
	}
	b.Items[i].Quantity = quantity
	return nil
}

// RemoveItem deletes the item for productID. Removing an absent product is a
// no-op success, which keeps client retries simple.
func (b *Basket) RemoveItem(productID string) {
	i := b.itemIndex(productID)
	if i < 0 {
		return
	}
	b.Items = append(b.Items[:i], b.Items[i+1:]...)
}

// Clear removes all items.
func (b *Basket) Clear() {
	b.Items = nil
}

// Repository defines persistence operations for baskets and their items.
// Update persists the full item set and bumps the basket version.
type Repository interface {
	Add(ctx context.Context, b *Basket) error
	Update(ctx context.Context, b *Basket) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Basket, error)
	FindByCustomer(ctx context.Context, customerID string) (*Basket, error)
}
