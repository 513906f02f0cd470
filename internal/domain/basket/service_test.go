package basket

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shoply/internal/domain/errs"
)

// --- Mocks ---

type memRepo struct {
	byCustomer map[string]*Basket
	updates    int
}

func newMemRepo() *memRepo {
	return &memRepo{byCustomer: make(map[string]*Basket)}
}

func (m *memRepo) Add(_ context.Context, b *Basket) error {
	m.byCustomer[b.CustomerID] = b
	return nil
}

func (m *memRepo) Update(_ context.Context, b *Basket) error {
	m.byCustomer[b.CustomerID] = b
	m.updates++
	return nil
}

func (m *memRepo) Remove(_ context.Context, id string) error {
	for cid, b := range m.byCustomer {
		if b.ID == id {
			delete(m.byCustomer, cid)
		}
	}
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*Basket, error) {
	for _, b := range m.byCustomer {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errs.NotFound("basket", id)
}

func (m *memRepo) FindByCustomer(_ context.Context, customerID string) (*Basket, error) {
	b, ok := m.byCustomer[customerID]
	if !ok {
		return nil, errs.NotFound("basket for customer", customerID)
	}
	return b, nil
}

type staticCatalog struct {
	prices map[string]decimal.Decimal
}

func (c *staticCatalog) CurrentPrice(_ context.Context, productID string) (decimal.Decimal, error) {
	p, ok := c.prices[productID]
	if !ok {
		return decimal.Zero, errs.NotFound("product", productID)
	}
	return p, nil
}

func (c *staticCatalog) Title(_ context.Context, productID string) (string, error) {
	if _, ok := c.prices[productID]; !ok {
		return "", errs.NotFound("product", productID)
	}
	return "Product " + productID, nil
}

type countingCache struct {
	snapshots   map[string]*Snapshot
	invalidates int
}

func newCountingCache() *countingCache {
	return &countingCache{snapshots: make(map[string]*Snapshot)}
}

func (c *countingCache) Get(_ context.Context, customerID string) (*Snapshot, error) {
	return c.snapshots[customerID], nil
}

func (c *countingCache) Set(_ context.Context, customerID string, s *Snapshot) error {
	c.snapshots[customerID] = s
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, customerID string) error {
	delete(c.snapshots, customerID)
	c.invalidates++
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	catalog := &staticCatalog{prices: map[string]decimal.Decimal{
		"P1": dec("10.00"),
		"P2": dec("4.25"),
	}}
	return NewService(repo, catalog, nil), repo
}

// --- Tests ---

func TestAddItem_CreatesBasketLazily(t *testing.T) {
	svc, repo := newTestService()

	snap, err := svc.AddItem(context.Background(), "c1", "P1", 2)
	require.NoError(t, err)

	require.Len(t, repo.byCustomer, 1)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.True(t, dec("20.00").Equal(snap.Subtotal))
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "P1", 2)
	require.NoError(t, err)
	snap, err := svc.AddItem(context.Background(), "c1", "P1", 3)
	require.NoError(t, err)

	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	require.Len(t, repo.byCustomer["c1"].Items, 1)
}

func TestAddItem_RejectsBadQuantity(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "P1", 0)
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "GHOST", 1)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	// No basket gets created for a rejected add.
	assert.Empty(t, repo.byCustomer)
}

func TestUpdateItem(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "P1", 2)
	require.NoError(t, err)

	snap, err := svc.UpdateItem(context.Background(), "c1", "P1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Lines[0].Quantity)

	_, err = svc.UpdateItem(context.Background(), "c1", "P2", 1)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = svc.UpdateItem(context.Background(), "c1", "P1", -2)
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "P1", 2)
	require.NoError(t, err)
	updatesAfterAdd := repo.updates

	snap, err := svc.RemoveItem(context.Background(), "c1", "P1")
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)

	// Removing an absent product is a no-op success: no error, no write.
	snap, err = svc.RemoveItem(context.Background(), "c1", "P1")
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.Equal(t, updatesAfterAdd+1, repo.updates)
}

func TestSnapshot_ResolvesPricesAndTitles(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "c1", "P1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "c1", "P2", 4)
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), "c1")
	require.NoError(t, err)

	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "Product P1", snap.Lines[0].Title)
	assert.True(t, dec("10.00").Equal(snap.Lines[0].UnitPrice))
	assert.True(t, dec("17.00").Equal(snap.Lines[1].LineTotal))
	// 10.00 + 4*4.25 = 27.00
	assert.True(t, dec("27.00").Equal(snap.Subtotal))
}

func TestSnapshot_NoBasket(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Snapshot(context.Background(), "nobody")
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSnapshot_ServedFromCache(t *testing.T) {
	repo := newMemRepo()
	catalog := &staticCatalog{prices: map[string]decimal.Decimal{"P1": dec("10.00")}}
	cache := newCountingCache()
	svc := NewService(repo, catalog, cache)

	_, err := svc.AddItem(context.Background(), "c1", "P1", 1)
	require.NoError(t, err)

	first, err := svc.Snapshot(context.Background(), "c1")
	require.NoError(t, err)

	// Second read comes from the cache: same snapshot pointer.
	second, err := svc.Snapshot(context.Background(), "c1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestMutationsInvalidateCache(t *testing.T) {
	repo := newMemRepo()
	catalog := &staticCatalog{prices: map[string]decimal.Decimal{"P1": dec("10.00")}}
	cache := newCountingCache()
	svc := NewService(repo, catalog, cache)

	_, err := svc.AddItem(context.Background(), "c1", "P1", 1)
	require.NoError(t, err)
	_, err = svc.UpdateItem(context.Background(), "c1", "P1", 2)
	require.NoError(t, err)
	_, err = svc.RemoveItem(context.Background(), "c1", "P1")
	require.NoError(t, err)

	assert.Equal(t, 3, cache.invalidates)
}
