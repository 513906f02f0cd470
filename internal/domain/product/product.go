package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	CategoryID string
	CreatedAt  time.Time
}

// Category groups catalog items.
type Category struct {
	ID   string
	Name string
}

// Document is a file attached to a product (manual, datasheet, image).
type Document struct {
	ID        string
	ProductID string
	FileName  string
	FileURL   string
	CreatedAt time.Time
}

// Repository defines read/write operations for the product catalog.
type Repository interface {
	Add(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByCategory(ctx context.Context, categoryID string) ([]Product, error)
	List(ctx context.Context) ([]Product, error)
}

// CategoryRepository defines operations for product categories.
type CategoryRepository interface {
	Add(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

// DocumentRepository defines operations for product documents.
type DocumentRepository interface {
	Add(ctx context.Context, d *Document) error
	Remove(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Document, error)
	FindByProduct(ctx context.Context, productID string) ([]Document, error)
}
