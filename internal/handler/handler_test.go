package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/checkout"
	"github.com/xenking/shoply/internal/domain/delivery"
	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
	"github.com/xenking/shoply/internal/domain/product"
)

// --- In-memory collaborators ---

type memStore struct {
	baskets    map[string]*basket.Basket // by customer ID
	orders     map[string]*order.Order
	payments   []*payment.Payment
	products   map[string]*product.Product
	deliveries map[string]*delivery.Delivery
	documents  []*product.Document
}

func newMemStore() *memStore {
	return &memStore{
		baskets:    make(map[string]*basket.Basket),
		orders:     make(map[string]*order.Order),
		products:   make(map[string]*product.Product),
		deliveries: make(map[string]*delivery.Delivery),
	}
}

type memBaskets struct{ s *memStore }

func (m *memBaskets) Add(_ context.Context, b *basket.Basket) error {
	m.s.baskets[b.CustomerID] = b
	return nil
}

func (m *memBaskets) Update(_ context.Context, b *basket.Basket) error {
	m.s.baskets[b.CustomerID] = b
	return nil
}

func (m *memBaskets) Remove(_ context.Context, id string) error {
	for cid, b := range m.s.baskets {
		if b.ID == id {
			delete(m.s.baskets, cid)
		}
	}
	return nil
}

func (m *memBaskets) FindByID(_ context.Context, id string) (*basket.Basket, error) {
	for _, b := range m.s.baskets {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errs.NotFound("basket", id)
}

func (m *memBaskets) FindByCustomer(_ context.Context, customerID string) (*basket.Basket, error) {
	b, ok := m.s.baskets[customerID]
	if !ok {
		return nil, errs.NotFound("basket for customer", customerID)
	}
	return b, nil
}

type memOrders struct{ s *memStore }

func (m *memOrders) Add(_ context.Context, o *order.Order) error {
	m.s.orders[o.ID] = o
	return nil
}

func (m *memOrders) Remove(_ context.Context, id string) error {
	delete(m.s.orders, id)
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.s.orders[id]
	if !ok {
		return nil, errs.NotFound("order", id)
	}
	return o, nil
}

func (m *memOrders) FindByCustomer(_ context.Context, customerID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memPayments struct{ s *memStore }

func (m *memPayments) Add(_ context.Context, p *payment.Payment) error {
	m.s.payments = append(m.s.payments, p)
	return nil
}

func (m *memPayments) Update(_ context.Context, p *payment.Payment) error {
	for i, existing := range m.s.payments {
		if existing.ID == p.ID {
			m.s.payments[i] = p
			return nil
		}
	}
	return errs.NotFound("payment", p.ID)
}

func (m *memPayments) Remove(_ context.Context, _ string) error { return nil }

func (m *memPayments) FindByID(_ context.Context, id string) (*payment.Payment, error) {
	for _, p := range m.s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errs.NotFound("payment", id)
}

func (m *memPayments) FindByOrder(_ context.Context, orderID string) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range m.s.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memProducts struct{ s *memStore }

func (m *memProducts) Add(_ context.Context, p *product.Product) error {
	m.s.products[p.ID] = p
	return nil
}

func (m *memProducts) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *memProducts) Remove(_ context.Context, _ string) error           { return nil }

func (m *memProducts) FindByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.s.products[id]
	if !ok {
		return nil, errs.NotFound("product", id)
	}
	return p, nil
}

func (m *memProducts) FindByCategory(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}

func (m *memProducts) List(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.s.products {
		out = append(out, *p)
	}
	return out, nil
}

// memUoW applies registered changes straight to the shared store; the
// handler-level tests exercise routing and error mapping, not mid-commit
// failure (covered in the checkout package).
type memUoW struct{ s *memStore }

func (u *memUoW) Begin(_ context.Context) (checkout.Tx, error) {
	return &memTx{s: u.s}, nil
}

type memTx struct {
	s       *memStore
	changes []checkout.Change
}

func (t *memTx) Baskets() basket.Repository   { return &memBaskets{s: t.s} }
func (t *memTx) Orders() order.Repository     { return &memOrders{s: t.s} }
func (t *memTx) Payments() payment.Repository { return &memPayments{s: t.s} }

func (t *memTx) Register(c checkout.Change) { t.changes = append(t.changes, c) }

func (t *memTx) Commit(ctx context.Context) error {
	for _, c := range t.changes {
		if err := c(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) Rollback(_ context.Context) error { return nil }

type memDeliveries struct{ s *memStore }

func (m *memDeliveries) Add(_ context.Context, d *delivery.Delivery) error {
	m.s.deliveries[d.ID] = d
	return nil
}

func (m *memDeliveries) Update(_ context.Context, d *delivery.Delivery) error {
	if _, ok := m.s.deliveries[d.ID]; !ok {
		return errs.NotFound("delivery", d.ID)
	}
	m.s.deliveries[d.ID] = d
	return nil
}

func (m *memDeliveries) Remove(_ context.Context, id string) error {
	delete(m.s.deliveries, id)
	return nil
}

func (m *memDeliveries) FindByID(_ context.Context, id string) (*delivery.Delivery, error) {
	d, ok := m.s.deliveries[id]
	if !ok {
		return nil, errs.NotFound("delivery", id)
	}
	return d, nil
}

func (m *memDeliveries) FindByOrder(_ context.Context, orderID string) ([]delivery.Delivery, error) {
	var out []delivery.Delivery
	for _, d := range m.s.deliveries {
		if d.OrderID == orderID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type memDeliveryStatuses struct{}

func (memDeliveryStatuses) FindByID(_ context.Context, id int) (*delivery.Status, error) {
	names := map[int]string{1: "preparing", 2: "in_transit", 3: "delivered", 4: "returned"}
	name, ok := names[id]
	if !ok {
		return nil, errs.NotFound("delivery status", strconv.Itoa(id))
	}
	return &delivery.Status{ID: id, Name: name}, nil
}

func (memDeliveryStatuses) List(_ context.Context) ([]delivery.Status, error) { return nil, nil }

type memOrderStatuses struct{}

func (memOrderStatuses) FindByID(_ context.Context, id int) (*order.Status, error) {
	names := map[int]string{1: "placed", 2: "paid", 3: "shipped", 4: "delivered", 5: "cancelled"}
	name, ok := names[id]
	if !ok {
		return nil, errs.NotFound("order status", strconv.Itoa(id))
	}
	return &order.Status{ID: id, Name: name}, nil
}

func (memOrderStatuses) List(_ context.Context) ([]order.Status, error) { return nil, nil }

type memDocuments struct{ s *memStore }

func (m *memDocuments) Add(_ context.Context, d *product.Document) error {
	m.s.documents = append(m.s.documents, d)
	return nil
}

func (m *memDocuments) Remove(_ context.Context, _ string) error { return nil }

func (m *memDocuments) FindByID(_ context.Context, id string) (*product.Document, error) {
	return nil, errs.NotFound("document", id)
}

func (m *memDocuments) FindByProduct(_ context.Context, productID string) ([]product.Document, error) {
	var out []product.Document
	for _, d := range m.s.documents {
		if d.ProductID == productID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// --- Harness ---

func newServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()
	store.products["P1"] = &product.Product{
		ID: "P1", Name: "Widget", Price: decimal.RequireFromString("10.00"),
	}

	products := &memProducts{s: store}
	catalog := product.NewRepoCatalog(products)
	baskets := basket.NewService(&memBaskets{s: store}, catalog, nil)
	checkoutSvc := checkout.NewService(&memUoW{s: store}, catalog, nil, checkout.Config{}, nil)
	shipments := &memDeliveries{s: store}
	deliverySvc := delivery.NewService(shipments, memDeliveryStatuses{}, &memOrders{s: store}, nil)

	h := New(Deps{
		Baskets:       baskets,
		Checkout:      checkoutSvc,
		Orders:        &memOrders{s: store},
		Products:      products,
		Documents:     &memDocuments{s: store},
		Deliveries:    deliverySvc,
		Shipments:     shipments,
		Payments:      &memPayments{s: store},
		OrderStatuses: memOrderStatuses{},
	})
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func doReq(t *testing.T, method, url, customer, body string) (*http.Response, map[string]any) {
	t.Helper()

	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if customer != "" {
		req.Header.Set("X-Customer-ID", customer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

// --- Tests ---

func TestAddItemAndGetBasket(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"P1","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "20.00", body["subtotal"])

	resp, body = doReq(t, http.MethodGet, srv.URL+"/api/basket", "c1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "P1", line["productId"])
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, "10.00", line["unitPrice"])
}

func TestAddItem_Errors(t *testing.T) {
	srv, _ := newServer(t)

	// Missing identity header.
	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "",
		`{"productId":"P1","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-positive quantity.
	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"P1","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "quantity", body["field"])

	// Unknown product.
	resp, _ = doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"GHOST","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveItem_IdempotentOverHTTP(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"P1","quantity":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/api/basket/items/P1", "c1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Deleting again still succeeds with the unchanged (empty) basket.
	resp, body := doReq(t, http.MethodDelete, srv.URL+"/api/basket/items/P1", "c1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])
}

func TestCheckout_EndToEnd(t *testing.T) {
	srv, store := newServer(t)

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"P1","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/checkout", "c1",
		`{"shippingAddress":"1 Main Street"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "20.00", body["totalAmount"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "Widget", line["productName"])
	assert.Equal(t, "20.00", line["totalPrice"])

	// Basket is empty after checkout, payment stub recorded.
	require.Len(t, store.payments, 1)
	assert.Equal(t, payment.StatusPending, store.payments[0].Status)
	assert.True(t, store.baskets["c1"].IsEmpty())

	// Placed order is readable by its owner and hidden from others.
	orderID := body["orderId"].(string)
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/api/orders/"+orderID, "c1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/api/orders/"+orderID, "c2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckout_EmptyBasket(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/checkout", "c1",
		`{"shippingAddress":"1 Main Street"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckout_MissingAddress(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", "c1",
		`{"productId":"P1","quantity":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/checkout", "c1", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "shippingAddress", body["field"])
}
