// Package handler exposes the checkout core over a thin JSON HTTP surface.
// Routing, authentication, and identity issuance are collaborator concerns;
// the caller's identity arrives in the X-Customer-ID header set by the
// gateway in front of this service.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/checkout"
	"github.com/xenking/shoply/internal/domain/delivery"
	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
	"github.com/xenking/shoply/internal/domain/product"
)

// customerHeader carries the authenticated customer identity.
const customerHeader = "X-Customer-ID"

// maxBodyBytes bounds request bodies; checkout payloads are tiny.
const maxBodyBytes = 64 << 10

// Deps collects the collaborators the HTTP surface is built on.
type Deps struct {
	Baskets    *basket.Service
	Checkout   *checkout.Service
	Orders     order.Repository
	Products   product.Repository
	Documents  product.DocumentRepository
	Deliveries *delivery.Service
	Shipments  delivery.Repository
	Payments   payment.Repository

	// OrderStatuses resolves status names for order read models. Optional:
	// when nil, responses carry only the numeric status.
	OrderStatuses order.StatusRepository
}

// Handler wires the domain services to HTTP routes.
type Handler struct {
	deps Deps
}

// New constructs a Handler with the required domain dependencies.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checkout", h.handleCheckout)
	mux.HandleFunc("GET /api/basket", h.handleGetBasket)
	mux.HandleFunc("POST /api/basket/items", h.handleAddItem)
	mux.HandleFunc("PUT /api/basket/items/{productId}", h.handleUpdateItem)
	mux.HandleFunc("DELETE /api/basket/items/{productId}", h.handleRemoveItem)
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{productId}/documents", h.handleListDocuments)
	mux.HandleFunc("GET /api/orders", h.handleListOrders)
	mux.HandleFunc("GET /api/orders/{orderId}", h.handleGetOrder)
	mux.HandleFunc("POST /api/orders/{orderId}/delivery", h.handleCreateDelivery)
	mux.HandleFunc("GET /api/orders/{orderId}/delivery", h.handleListDeliveries)
	mux.HandleFunc("PUT /api/deliveries/{deliveryId}/status", h.handleUpdateDeliveryStatus)
	mux.HandleFunc("GET /api/orders/{orderId}/payments", h.handleListPayments)
	mux.HandleFunc("PUT /api/payments/{paymentId}/status", h.handleUpdatePaymentStatus)
}

func customerID(r *http.Request) (string, error) {
	id := r.Header.Get(customerHeader)
	if id == "" {
		return "", errs.Validation("customerId", "missing %s header", customerHeader)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errs.Validation("body", "unreadable request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errs.Validation("body", "malformed JSON: %v", err)
	}
	return nil
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.deps.Checkout.Checkout(r.Context(), cid, req.ShippingAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := h.statusName(r, o.StatusID)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o, status)
	})
}

func (h *Handler) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := h.deps.Baskets.Snapshot(r.Context(), cid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

type basketItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req basketItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, r, errs.Validation("productId", "must not be empty"))
		return
	}

	snap, err := h.deps.Baskets.AddItem(r.Context(), cid, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := h.deps.Baskets.UpdateItem(r.Context(), cid, r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := h.deps.Baskets.RemoveItem(r.Context(), cid, r.PathValue("productId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			e.ObjStart()
			e.FieldStart("id")
			e.Str(p.ID)
			e.FieldStart("name")
			e.Str(p.Name)
			e.FieldStart("price")
			e.Str(p.Price.String())
			e.FieldStart("categoryId")
			e.Str(p.CategoryID)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.deps.Orders.FindByID(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Orders are only visible to their owner.
	if o.CustomerID != cid {
		writeError(w, r, errs.NotFound("order", o.ID))
		return
	}

	status := h.statusName(r, o.StatusID)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o, status)
	})
}

// statusName resolves the display name of an order status. Best effort: a
// missing repository or row degrades to the numeric status only.
func (h *Handler) statusName(r *http.Request, statusID int) string {
	if h.deps.OrderStatuses == nil {
		return ""
	}
	s, err := h.deps.OrderStatuses.FindByID(r.Context(), statusID)
	if err != nil {
		return ""
	}
	return s.Name
}
