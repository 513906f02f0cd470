package delivery

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/order"
)

// Service creates deliveries and advances their status.
type Service struct {
	deliveries Repository
	statuses   StatusRepository
	orders     order.Repository
	now        func() time.Time
}

// NewService creates a delivery Service. now may be nil, in which case
// time.Now is used.
func NewService(deliveries Repository, statuses StatusRepository, orders order.Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		deliveries: deliveries,
		statuses:   statuses,
		orders:     orders,
		now:        now,
	}
}

// Create registers a delivery for a persisted order. The order must exist.
func (s *Service) Create(ctx context.Context, orderID string) (*Delivery, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "resolve order")
	}

	d := &Delivery{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		StatusID:  StatusPreparing,
		CreatedAt: s.now(),
	}
	if err := s.deliveries.Add(ctx, d); err != nil {
		return nil, errors.Wrap(err, "create delivery")
	}
	return d, nil
}

// UpdateStatus moves the delivery to the given status. The delivered
// timestamp is set the first time a terminal status is applied and never
// overwritten afterwards.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID string, statusID int) (*Delivery, error) {
	if _, err := s.statuses.FindByID(ctx, statusID); err != nil {
		return nil, errors.Wrap(err, "resolve status")
	}

	d, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if d.DeliveredAt != nil && statusID != d.StatusID {
		return nil, errs.Invariant("deliveryStatus", "terminal", "further transition")
	}

	d.StatusID = statusID
	if statusID == StatusDelivered && d.DeliveredAt == nil {
		t := s.now()
		d.DeliveredAt = &t
	}

	if err := s.deliveries.Update(ctx, d); err != nil {
		return nil, errors.Wrap(err, "save delivery")
	}
	return d, nil
}
