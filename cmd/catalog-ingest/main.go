// Command catalog-ingest imports supplier product feeds into the catalog.
//
// Feeds are gzipped JSONL files, one product record per line. Suppliers
// re-emit the same product many times (every stock or price touch produces a
// line), so feeds run to tens of millions of lines while carrying far fewer
// distinct products. A bloom filter dedupes product IDs across all feeds
// without holding them in memory; the small false positive rate only skips
// the occasional record, which the next ingest run picks up.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shoply/internal/domain/product"
	"github.com/xenking/shoply/internal/storage/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// feedRecord is one line of a supplier feed.
type feedRecord struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	feeds, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(feeds) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ing := &ingester{
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		seen:       bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		knownCats:  make(map[string]struct{}),
	}

	slog.Info("ingesting feeds", slog.Int("files", len(feeds)))

	g, ctx := errgroup.WithContext(ctx)
	for _, feed := range feeds {
		g.Go(ing.ingestFile(ctx, feed))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("feeds ingested",
		slog.Uint64("lines", ing.lines),
		slog.Uint64("upserted", ing.upserted),
		slog.Uint64("skipped", ing.skipped),
	)
	return nil
}

// ingester holds the state shared between concurrent feed readers.
type ingester struct {
	products   *postgres.ProductRepository
	categories *postgres.CategoryRepository

	mu        sync.Mutex
	seen      *bloom.BloomFilter
	knownCats map[string]struct{}
	lines     uint64
	upserted  uint64
	skipped   uint64
}

// ensureCategory upserts the category on first sight so product rows never
// hit a missing foreign key. Supplier feeds carry opaque category codes, so
// the code doubles as the display name until someone renames it.
func (ing *ingester) ensureCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ing.mu.Lock()
	_, known := ing.knownCats[id]
	ing.mu.Unlock()
	if known {
		return nil
	}

	if err := ing.categories.Add(ctx, &product.Category{ID: id, Name: id}); err != nil {
		return err
	}

	ing.mu.Lock()
	ing.knownCats[id] = struct{}{}
	ing.mu.Unlock()
	return nil
}

// firstSight records id in the filter and reports whether it was new.
func (ing *ingester) firstSight(id string) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return !ing.seen.TestAndAddString(id)
}

func (ing *ingester) count(lines, upserted, skipped uint64) {
	ing.mu.Lock()
	ing.lines += lines
	ing.upserted += upserted
	ing.skipped += skipped
	ing.mu.Unlock()
}

func (ing *ingester) ingestFile(ctx context.Context, path string) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open feed %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "gunzip feed %s", path)
		}
		defer func() { _ = gz.Close() }()

		var lines, upserted, skipped uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			lines++
			if lines%progressEvery == 0 {
				slog.Info("ingest progress", slog.String("feed", path), slog.Uint64("lines", lines))
			}

			rec, err := parseRecord(scanner.Bytes())
			if err != nil {
				// Malformed lines are a supplier problem, not ours.
				skipped++
				continue
			}
			if rec.ID == "" || rec.Name == "" || !rec.Price.IsPositive() {
				skipped++
				continue
			}
			if !ing.firstSight(rec.ID) {
				skipped++
				continue
			}

			if err := ing.ensureCategory(ctx, rec.Category); err != nil {
				return errors.Wrapf(err, "ensure category %s", rec.Category)
			}
			if err := ing.products.Add(ctx, &product.Product{
				ID:         rec.ID,
				Name:       rec.Name,
				Price:      rec.Price,
				CategoryID: rec.Category,
				CreatedAt:  time.Now().UTC(),
			}); err != nil {
				return errors.Wrapf(err, "upsert product %s", rec.ID)
			}
			upserted++
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "read feed %s", path)
		}

		ing.count(lines, upserted, skipped)
		slog.Info("feed done",
			slog.String("feed", path),
			slog.Uint64("lines", lines),
			slog.Uint64("upserted", upserted),
		)
		return nil
	}
}

// parseRecord decodes one feed line. Unknown fields are ignored so supplier
// schema additions never break ingest.
func parseRecord(line []byte) (feedRecord, error) {
	var rec feedRecord
	d := jx.DecodeBytes(line)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			rec.ID = v
			return err
		case "name":
			v, err := d.Str()
			rec.Name = v
			return err
		case "price":
			v, err := d.Str()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(v)
			rec.Price = price
			return err
		case "category":
			v, err := d.Str()
			rec.Category = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return feedRecord{}, errors.Wrap(err, "decode record")
	}
	return rec, nil
}
