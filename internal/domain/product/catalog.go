package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shoply/internal/domain/errs"
)

// Catalog is the pricing collaborator consumed during basket snapshots and
// checkout. Prices always come from here, never from client input.
type Catalog interface {
	CurrentPrice(ctx context.Context, productID string) (decimal.Decimal, error)
	Title(ctx context.Context, productID string) (string, error)
}

var _ Catalog = (*RepoCatalog)(nil)

// RepoCatalog implements Catalog by reading the product repository.
type RepoCatalog struct {
	products Repository
}

// NewRepoCatalog creates a RepoCatalog backed by the given Repository.
func NewRepoCatalog(products Repository) *RepoCatalog {
	return &RepoCatalog{products: products}
}

// CurrentPrice returns the authoritative price for the product.
func (c *RepoCatalog) CurrentPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "current price of %s", productID)
	}
	return p.Price, nil
}

// Title returns the display name for the product.
func (c *RepoCatalog) Title(ctx context.Context, productID string) (string, error) {
	p, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return "", errors.Wrapf(err, "title of %s", productID)
	}
	return p.Name, nil
}

// Exists reports whether the product is present in the catalog.
func (c *RepoCatalog) Exists(ctx context.Context, productID string) (bool, error) {
	_, err := c.products.FindByID(ctx, productID)
	if err != nil {
		if errs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
