package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/shoply/internal/domain/errs"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
)

// ownedOrder loads an order and enforces that it belongs to the caller.
// Foreign orders read as not found so the route leaks no existence signal.
func (h *Handler) ownedOrder(r *http.Request, orderID string) (*order.Order, error) {
	cid, err := customerID(r)
	if err != nil {
		return nil, err
	}

	o, err := h.deps.Orders.FindByID(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != cid {
		return nil, errs.NotFound("order", orderID)
	}
	return o, nil
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.deps.Orders.FindByCustomer(r.Context(), cid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i], h.statusName(r, orders[i].StatusID))
		}
		e.ArrEnd()
	})
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if _, err := h.deps.Products.FindByID(r.Context(), productID); err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.deps.Documents.FindByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range docs {
			encodeDocument(e, &docs[i])
		}
		e.ArrEnd()
	})
}

func (h *Handler) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	o, err := h.ownedOrder(r, r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.deps.Deliveries.Create(r.Context(), o.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeDelivery(e, d)
	})
}

func (h *Handler) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	o, err := h.ownedOrder(r, r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	deliveries, err := h.deps.Shipments.FindByOrder(r.Context(), o.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range deliveries {
			encodeDelivery(e, &deliveries[i])
		}
		e.ArrEnd()
	})
}

type deliveryStatusRequest struct {
	StatusID int `json:"statusId"`
}

func (h *Handler) handleUpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	deliveryID := r.PathValue("deliveryId")

	d, err := h.deps.Shipments.FindByID(r.Context(), deliveryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownedOrder(r, d.OrderID); err != nil {
		writeError(w, r, err)
		return
	}

	var req deliveryStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.deps.Deliveries.UpdateStatus(r.Context(), deliveryID, req.StatusID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDelivery(e, updated)
	})
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	o, err := h.ownedOrder(r, r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := h.deps.Payments.FindByOrder(r.Context(), o.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range payments {
			encodePayment(e, &payments[i])
		}
		e.ArrEnd()
	})
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	cid, err := customerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.deps.Payments.FindByID(r.Context(), r.PathValue("paymentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.CustomerID != cid {
		writeError(w, r, errs.NotFound("payment", p.ID))
		return
	}

	var req paymentStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := p.Transition(payment.Status(req.Status)); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Payments.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodePayment(e, p)
	})
}
