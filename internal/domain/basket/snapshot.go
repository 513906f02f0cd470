package basket

import (
	"context"

	"github.com/shopspring/decimal"
)

// SnapshotLine is one basket line with its catalog-resolved title and price.
type SnapshotLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Snapshot is an immutable, consistent view of a basket with resolved prices.
// It serves both display and checkout input.
type Snapshot struct {
	BasketID   string          `json:"basket_id"`
	CustomerID string          `json:"customer_id"`
	Lines      []SnapshotLine  `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// SnapshotCache caches basket snapshots per customer. Implementations are
// best-effort: a cache miss or failure never blocks the read path.
type SnapshotCache interface {
	Get(ctx context.Context, customerID string) (*Snapshot, error)
	Set(ctx context.Context, customerID string, s *Snapshot) error
	Invalidate(ctx context.Context, customerID string) error
}
