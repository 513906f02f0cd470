package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shoply/internal/domain/product"
)

// doReqArr is doReq for endpoints that answer with a JSON array.
func doReqArr(t *testing.T, method, url, customer string) (*http.Response, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader("{}"))
	require.NoError(t, err)
	if customer != "" {
		req.Header.Set("X-Customer-ID", customer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded []map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

// placeOrder runs an add-to-basket plus checkout for the customer and
// returns the created order ID.
func placeOrder(t *testing.T, srv *httptest.Server, customer string) string {
	t.Helper()

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/basket/items", customer,
		`{"productId":"P1","quantity":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/checkout", customer,
		`{"shippingAddress":"1 Main Street"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["orderId"].(string)
}

func TestListOrders(t *testing.T) {
	srv, _ := newServer(t)

	resp, list := doReqArr(t, http.MethodGet, srv.URL+"/api/orders", "c1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	orderID := placeOrder(t, srv, "c1")

	resp, list = doReqArr(t, http.MethodGet, srv.URL+"/api/orders", "c1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, orderID, list[0]["orderId"])
	assert.Equal(t, "placed", list[0]["status"])

	// Another customer sees none of them.
	resp, list = doReqArr(t, http.MethodGet, srv.URL+"/api/orders", "c2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
}

func TestDeliveryLifecycle(t *testing.T) {
	srv, _ := newServer(t)
	orderID := placeOrder(t, srv, "c1")

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/orders/"+orderID+"/delivery", "c1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, orderID, body["orderId"])
	assert.Equal(t, float64(1), body["statusId"])
	assert.Nil(t, body["deliveredAt"])
	deliveryID := body["deliveryId"].(string)

	resp, list := doReqArr(t, http.MethodGet, srv.URL+"/api/orders/"+orderID+"/delivery", "c1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, deliveryID, list[0]["deliveryId"])

	resp, body = doReq(t, http.MethodPut, srv.URL+"/api/deliveries/"+deliveryID+"/status", "c1",
		`{"statusId":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["statusId"])
	assert.NotEmpty(t, body["deliveredAt"])

	// Terminal deliveries refuse further transitions.
	resp, _ = doReq(t, http.MethodPut, srv.URL+"/api/deliveries/"+deliveryID+"/status", "c1",
		`{"statusId":2}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDelivery_Errors(t *testing.T) {
	srv, _ := newServer(t)
	orderID := placeOrder(t, srv, "c1")

	// Foreign orders read as not found.
	resp, _ := doReq(t, http.MethodPost, srv.URL+"/api/orders/"+orderID+"/delivery", "c2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/api/orders/"+orderID+"/delivery", "c1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	deliveryID := body["deliveryId"].(string)

	// Unknown status identifier.
	resp, _ = doReq(t, http.MethodPut, srv.URL+"/api/deliveries/"+deliveryID+"/status", "c1",
		`{"statusId":99}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unknown delivery.
	resp, _ = doReq(t, http.MethodPut, srv.URL+"/api/deliveries/GHOST/status", "c1",
		`{"statusId":2}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPaymentStatusOverHTTP(t *testing.T) {
	srv, _ := newServer(t)
	orderID := placeOrder(t, srv, "c1")

	resp, list := doReqArr(t, http.MethodGet, srv.URL+"/api/orders/"+orderID+"/payments", "c1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Pending", list[0]["status"])
	assert.Equal(t, "10.00", list[0]["amount"])
	paymentID := list[0]["paymentId"].(string)

	resp, body := doReq(t, http.MethodPut, srv.URL+"/api/payments/"+paymentID+"/status", "c1",
		`{"status":"Completed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Completed", body["status"])

	// Pending is entry-only.
	resp, _ = doReq(t, http.MethodPut, srv.URL+"/api/payments/"+paymentID+"/status", "c1",
		`{"status":"Pending"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown status name.
	resp, body = doReq(t, http.MethodPut, srv.URL+"/api/payments/"+paymentID+"/status", "c1",
		`{"status":"Teleported"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "status", body["field"])

	// Foreign payments read as not found.
	resp, _ = doReq(t, http.MethodPut, srv.URL+"/api/payments/"+paymentID+"/status", "c2",
		`{"status":"Refunded"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	srv, store := newServer(t)

	resp, _ := doReq(t, http.MethodGet, srv.URL+"/api/products/GHOST/documents", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, list := doReqArr(t, http.MethodGet, srv.URL+"/api/products/P1/documents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	store.documents = append(store.documents, &product.Document{
		ID: "D1", ProductID: "P1", FileName: "manual.pdf", FileURL: "https://cdn.example/m.pdf",
	})

	resp, list = doReqArr(t, http.MethodGet, srv.URL+"/api/products/P1/documents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "manual.pdf", list[0]["fileName"])
	assert.Equal(t, "https://cdn.example/m.pdf", list[0]["fileUrl"])
}
