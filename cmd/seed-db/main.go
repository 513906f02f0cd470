// Command seed-db loads a catalog seed file (categories, products, demo
// customers) into PostgreSQL. All writes are upserts, so re-running against
// an already seeded database is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shoply/internal/domain/customer"
	"github.com/xenking/shoply/internal/domain/product"
	"github.com/xenking/shoply/internal/storage/postgres"
)

type seedFile struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
	Customers  []customerJSON `json:"customers"`
}

type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

type customerJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCategories(ctx, postgres.NewCategoryRepository(pool), seed.Categories); err != nil {
		return errors.Wrap(err, "seed categories")
	}
	if err := seedProducts(ctx, postgres.NewProductRepository(pool), seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCustomers(ctx, postgres.NewCustomerRepository(pool), seed.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	return nil
}

func seedCategories(ctx context.Context, repo *postgres.CategoryRepository, categories []categoryJSON) error {
	slog.Info("upserting categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		if err := repo.Add(ctx, &product.Category{ID: c.ID, Name: c.Name}); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}

		slog.Info("upserted category", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Add(ctx, &product.Product{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.Category,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedCustomers(ctx context.Context, repo *postgres.CustomerRepository, customers []customerJSON) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		if err := repo.Add(ctx, &customer.Customer{
			ID:        c.ID,
			Email:     c.Email,
			FullName:  c.FullName,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.ID)
		}

		slog.Info("upserted customer", slog.String("id", c.ID), slog.String("email", c.Email))
	}

	return nil
}
