package basket

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/money"
	"github.com/xenking/shoply/internal/domain/product"
)

// Service implements basket mutation and read operations over the repository
// and the catalog collaborator. The snapshot cache is optional; pass nil to
// disable caching.
type Service struct {
	baskets Repository
	catalog product.Catalog
	cache   SnapshotCache
}

// NewService creates a basket Service with the required dependencies.
func NewService(baskets Repository, catalog product.Catalog, cache SnapshotCache) *Service {
	return &Service{
		baskets: baskets,
		catalog: catalog,
		cache:   cache,
	}
}

// AddItem adds quantity of the product to the customer's basket, creating the
// basket on first use. The product must exist in the catalog.
func (s *Service) AddItem(ctx context.Context, customerID, productID string, quantity int) (*Snapshot, error) {
	if err := money.ValidatePositiveInt(quantity, "quantity"); err != nil {
		return nil, err
	}

	// The catalog is the product existence authority.
	if _, err := s.catalog.Title(ctx, productID); err != nil {
		return nil, err
	}

	b, err := s.baskets.FindByCustomer(ctx, customerID)
	if err != nil {
		if !errs.IsNotFound(err) {
			return nil, errors.Wrap(err, "load basket")
		}
		b = New(customerID)
		if err := s.baskets.Add(ctx, b); err != nil {
			return nil, errors.Wrap(err, "create basket")
		}
	}

	if err := b.AddItem(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.baskets.Update(ctx, b); err != nil {
		return nil, errors.Wrap(err, "save basket")
	}

	s.invalidate(ctx, customerID)
	return s.resolve(ctx, b)
}

// UpdateItem sets the quantity of an existing basket line.
func (s *Service) UpdateItem(ctx context.Context, customerID, productID string, quantity int) (*Snapshot, error) {
	b, err := s.baskets.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := b.UpdateItem(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.baskets.Update(ctx, b); err != nil {
		return nil, errors.Wrap(err, "save basket")
	}

	s.invalidate(ctx, customerID)
	return s.resolve(ctx, b)
}

// RemoveItem deletes a basket line. Removing an absent product succeeds and
// returns the unchanged basket.
func (s *Service) RemoveItem(ctx context.Context, customerID, productID string) (*Snapshot, error) {
	b, err := s.baskets.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	before := len(b.Items)
	b.RemoveItem(productID)
	if len(b.Items) != before {
		if err := s.baskets.Update(ctx, b); err != nil {
			return nil, errors.Wrap(err, "save basket")
		}
		s.invalidate(ctx, customerID)
	}

	return s.resolve(ctx, b)
}

// Snapshot returns the catalog-resolved view of the customer's basket,
// served from cache when available.
func (s *Service) Snapshot(ctx context.Context, customerID string) (*Snapshot, error) {
	if s.cache != nil {
		if snap, err := s.cache.Get(ctx, customerID); err != nil {
			zctx.From(ctx).Debug("snapshot cache read failed", zap.Error(err))
		} else if snap != nil {
			return snap, nil
		}
	}

	b, err := s.baskets.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, b)
}

// resolve builds a Snapshot by resolving each line against the catalog, then
// populates the cache.
func (s *Service) resolve(ctx context.Context, b *Basket) (*Snapshot, error) {
	snap := &Snapshot{
		BasketID:   b.ID,
		CustomerID: b.CustomerID,
		Lines:      make([]SnapshotLine, 0, len(b.Items)),
	}

	for _, item := range b.Items {
		price, err := s.catalog.CurrentPrice(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		title, err := s.catalog.Title(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		line := SnapshotLine{
			ProductID: item.ProductID,
			Title:     title,
			Quantity:  item.Quantity,
			UnitPrice: price,
			LineTotal: money.ComputeLineTotal(decimal.NewFromInt(int64(item.Quantity)), price),
		}
		snap.Lines = append(snap.Lines, line)
		snap.Subtotal = snap.Subtotal.Add(line.LineTotal)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, b.CustomerID, snap); err != nil {
			zctx.From(ctx).Debug("snapshot cache write failed", zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Service) invalidate(ctx context.Context, customerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, customerID); err != nil {
		zctx.From(ctx).Debug("snapshot cache invalidate failed", zap.Error(err))
	}
}
