// Package checkout converts a customer's basket into a placed order. This is
// the one path in the system with cross-entity transactional requirements:
// the order insert, its line items, the payment stub, and the basket clear
// all commit or roll back together.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/money"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
	"github.com/xenking/shoply/internal/domain/product"
)

// DefaultPaymentMethodID is the method recorded on payment stubs created at
// checkout, before the customer has picked a real payment method.
const DefaultPaymentMethodID = 1

// Config tunes checkout behaviour.
type Config struct {
	// ClockSkew is the allowance for order dates that lie in the future,
	// compensating for client/server clock drift. Zero means
	// order.DefaultClockSkew.
	ClockSkew time.Duration
}

// Service orchestrates basket-to-order conversion.
type Service struct {
	uow     UnitOfWork
	catalog product.Catalog
	cache   basket.SnapshotCache
	cfg     Config
	now     func() time.Time
}

// NewService creates a checkout Service. cache and now may be nil.
func NewService(uow UnitOfWork, catalog product.Catalog, cache basket.SnapshotCache, cfg Config, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		uow:     uow,
		catalog: catalog,
		cache:   cache,
		cfg:     cfg,
		now:     now,
	}
}

// Checkout atomically converts the customer's basket into an order.
//
// The basket is loaded under a row lock inside the transaction, so two
// concurrent checkouts for the same customer cannot both convert the same
// items: the second either fails with a ConcurrencyConflict (lock not
// acquirable) or observes the cleared basket and fails with a NotFoundError.
// Prices come from the catalog, never from the client.
func (s *Service) Checkout(ctx context.Context, customerID, shippingAddress string) (*order.Order, error) {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin checkout")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			zctx.From(ctx).Warn("checkout rollback failed", zap.Error(rbErr))
		}
	}()

	b, err := tx.Baskets().FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if b.IsEmpty() {
		return nil, errs.NotFound("basket with items for customer", customerID)
	}

	specs, err := s.buildSpecs(ctx, b)
	if err != nil {
		return nil, err
	}

	o, err := order.Build(order.BuildParams{
		CustomerID:      customerID,
		ShippingAddress: shippingAddress,
		OrderDate:       s.now(),
		StatusID:        order.StatusPlaced,
		Items:           specs,
		Now:             s.now(),
		ClockSkew:       s.cfg.ClockSkew,
	})
	if err != nil {
		return nil, err
	}

	stub := &payment.Payment{
		ID:              uuid.New().String(),
		OrderID:         o.ID,
		CustomerID:      customerID,
		Amount:          o.TotalAmount,
		PaymentMethodID: DefaultPaymentMethodID,
		Status:          payment.StatusPending,
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}

	b.Clear()

	tx.Register(func(ctx context.Context) error {
		return tx.Orders().Add(ctx, o)
	})
	tx.Register(func(ctx context.Context) error {
		return tx.Payments().Add(ctx, stub)
	})
	tx.Register(func(ctx context.Context) error {
		return tx.Baskets().Update(ctx, b)
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, customerID); err != nil {
			zctx.From(ctx).Debug("snapshot cache invalidate failed", zap.Error(err))
		}
	}

	zctx.From(ctx).Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("customer_id", customerID),
		zap.String("total", o.TotalAmount.String()),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

// buildSpecs freezes each basket line with its authoritative catalog price
// and title.
func (s *Service) buildSpecs(ctx context.Context, b *basket.Basket) ([]order.ItemSpec, error) {
	specs := make([]order.ItemSpec, 0, len(b.Items))
	for _, item := range b.Items {
		price, err := s.catalog.CurrentPrice(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		title, err := s.catalog.Title(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		specs = append(specs, order.ItemSpec{
			ProductID:   item.ProductID,
			ProductName: title,
			Quantity:    qty,
			UnitPrice:   price,
			TotalPrice:  money.ComputeLineTotal(qty, price),
		})
	}
	return specs, nil
}
