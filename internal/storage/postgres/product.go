package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/product"
)

var (
	_ product.Repository         = (*ProductRepository)(nil)
	_ product.CategoryRepository = (*CategoryRepository)(nil)
	_ product.DocumentRepository = (*ProductDocumentRepository)(nil)
)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository over the given DB.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Add inserts a product. An existing product with the same ID is replaced,
// which gives the feed ingest upsert semantics.
func (r *ProductRepository) Add(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, name, price, category_id, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, category_id = EXCLUDED.category_id`,
		p.ID, p.Name, p.Price, p.CategoryID, p.CreatedAt,
	)
	if err != nil {
		return storageErr("insert product", err)
	}
	return nil
}

// Update rewrites the mutable product fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, price = $3, category_id = NULLIF($4, '') WHERE id = $1`,
		p.ID, p.Name, p.Price, p.CategoryID,
	)
	if err != nil {
		return storageErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("product", p.ID)
	}
	return nil
}

// Remove deletes a product.
func (r *ProductRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return storageErr("delete product", err)
	}
	return nil
}

// FindByID returns a single product by its identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	var categoryID *string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, price, category_id, created_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &categoryID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("product", id)
		}
		return nil, storageErr("load product", err)
	}
	if categoryID != nil {
		p.CategoryID = *categoryID
	}
	return &p, nil
}

// FindByCategory returns products in the given category ordered by ID.
func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID string) ([]product.Product, error) {
	return r.list(ctx, `SELECT id, name, price, category_id, created_at FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return r.list(ctx, `SELECT id, name, price, category_id, created_at FROM products ORDER BY id`)
}

func (r *ProductRepository) list(ctx context.Context, q string, args ...any) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		var categoryID *string
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &categoryID, &p.CreatedAt); err != nil {
			return nil, storageErr("scan product", err)
		}
		if categoryID != nil {
			p.CategoryID = *categoryID
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CategoryRepository implements product.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	db DB
}

// NewCategoryRepository returns a CategoryRepository over the given DB.
func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Add inserts a category.
func (r *CategoryRepository) Add(ctx context.Context, c *product.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		c.ID, c.Name,
	)
	if err != nil {
		return storageErr("insert category", err)
	}
	return nil
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, c *product.Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return storageErr("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("category", c.ID)
	}
	return nil
}

// Remove deletes a category.
func (r *CategoryRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return storageErr("delete category", err)
	}
	return nil
}

// FindByID returns one category.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*product.Category, error) {
	var c product.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("category", id)
		}
		return nil, storageErr("load category", err)
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]product.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var out []product.Category
	for rows.Next() {
		var c product.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, storageErr("scan category", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ProductDocumentRepository implements product.DocumentRepository backed by
// PostgreSQL.
type ProductDocumentRepository struct {
	db DB
}

// NewProductDocumentRepository returns a ProductDocumentRepository over the
// given DB.
func NewProductDocumentRepository(db DB) *ProductDocumentRepository {
	return &ProductDocumentRepository{db: db}
}

// Add inserts a document record.
func (r *ProductDocumentRepository) Add(ctx context.Context, d *product.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO product_documents (id, product_id, file_name, file_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.ProductID, d.FileName, d.FileURL, d.CreatedAt,
	)
	if err != nil {
		return storageErr("insert product document", err)
	}
	return nil
}

// Remove deletes a document record.
func (r *ProductDocumentRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_documents WHERE id = $1`, id); err != nil {
		return storageErr("delete product document", err)
	}
	return nil
}

// FindByID returns one document record.
func (r *ProductDocumentRepository) FindByID(ctx context.Context, id string) (*product.Document, error) {
	var d product.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, product_id, file_name, file_url, created_at FROM product_documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.ProductID, &d.FileName, &d.FileURL, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("product document", id)
		}
		return nil, storageErr("load product document", err)
	}
	return &d, nil
}

// FindByProduct returns the documents attached to a product.
func (r *ProductDocumentRepository) FindByProduct(ctx context.Context, productID string) ([]product.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, file_name, file_url, created_at
		 FROM product_documents WHERE product_id = $1 ORDER BY created_at`, productID,
	)
	if err != nil {
		return nil, storageErr("list product documents", err)
	}
	defer rows.Close()

	var out []product.Document
	for rows.Next() {
		var d product.Document
		if err := rows.Scan(&d.ID, &d.ProductID, &d.FileName, &d.FileURL, &d.CreatedAt); err != nil {
			return nil, storageErr("scan product document", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
