package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/money"
)

// DefaultClockSkew is how far in the future an order date may lie before it
// is rejected. It compensates for client/server clock drift; override it via
// BuildParams.ClockSkew.
const DefaultClockSkew = 4 * time.Hour

// ItemSpec is the validated input for one order line.
type ItemSpec struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// BuildParams carries the inputs for Build.
type BuildParams struct {
	CustomerID      string
	ShippingAddress string
	OrderDate       time.Time
	StatusID        int
	Items           []ItemSpec

	// TotalAmount is optional. When non-nil it must equal the computed sum of
	// item totals or Build fails with an InvariantViolation.
	TotalAmount *decimal.Decimal

	// Now anchors the clock-skew check; zero means time.Now().
	Now time.Time
	// ClockSkew overrides DefaultClockSkew when positive.
	ClockSkew time.Duration
}

// Build validates the item specs and order fields and returns a fully formed,
// not yet persisted Order with its child items. Validation is fail-fast: the
// first violated rule is returned.
func Build(p BuildParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, errs.Validation("items", "order must contain at least one item")
	}

	for _, spec := range p.Items {
		if err := money.ValidatePositive(spec.Quantity, "quantity"); err != nil {
			return nil, err
		}
		if err := money.ValidatePositive(spec.UnitPrice, "unitPrice"); err != nil {
			return nil, err
		}
		if err := money.ValidatePositive(spec.TotalPrice, "totalPrice"); err != nil {
			return nil, err
		}
		if err := money.ValidateLineConsistency(spec.Quantity, spec.UnitPrice, spec.TotalPrice); err != nil {
			return nil, err
		}
	}

	if p.ShippingAddress == "" {
		return nil, errs.Validation("shippingAddress", "must not be empty")
	}
	if len(p.ShippingAddress) > MaxShippingAddressLen {
		return nil, errs.Validation("shippingAddress", "must not exceed %d characters, got %d",
			MaxShippingAddressLen, len(p.ShippingAddress))
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	skew := p.ClockSkew
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	if p.OrderDate.After(now.Add(skew)) {
		return nil, errs.Validation("orderDate", "must not be later than now plus %s", skew)
	}

	total := decimal.Zero
	for _, spec := range p.Items {
		total = total.Add(spec.TotalPrice)
	}
	if p.TotalAmount != nil && !p.TotalAmount.Equal(total) {
		return nil, errs.Invariant("totalAmount", total.String(), p.TotalAmount.String())
	}

	o := &Order{
		ID:              uuid.New().String(),
		CustomerID:      p.CustomerID,
		ShippingAddress: p.ShippingAddress,
		OrderDate:       p.OrderDate,
		StatusID:        p.StatusID,
		TotalAmount:     total,
		Items:           make([]Item, len(p.Items)),
		CreatedAt:       now,
	}
	for i, spec := range p.Items {
		o.Items[i] = Item{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ProductID:   spec.ProductID,
			ProductName: spec.ProductName,
			Quantity:    spec.Quantity,
			UnitPrice:   spec.UnitPrice,
			TotalPrice:  spec.TotalPrice,
		}
	}
	return o, nil
}
