package handler

import (
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/shoply/internal/domain/basket"
	"github.com/xenking/shoply/internal/domain/delivery"
	"github.com/xenking/shoply/internal/domain/order"
	"github.com/xenking/shoply/internal/domain/payment"
	"github.com/xenking/shoply/internal/domain/product"
)

// encodeBasket writes the basket read model: the catalog-resolved snapshot of
// the customer's current basket.
func encodeBasket(e *jx.Encoder, s *basket.Snapshot) {
	e.ObjStart()
	e.FieldStart("basketId")
	e.Str(s.BasketID)
	e.FieldStart("customerId")
	e.Str(s.CustomerID)
	e.FieldStart("items")
	e.ArrStart()
	for _, line := range s.Lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(line.ProductID)
		e.FieldStart("title")
		e.Str(line.Title)
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.FieldStart("unitPrice")
		e.Str(line.UnitPrice.String())
		e.FieldStart("lineTotal")
		e.Str(line.LineTotal.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Str(s.Subtotal.String())
	e.ObjEnd()
}

// encodeOrder writes the order read model with its frozen line items.
// statusName may be empty when the status lookup is unavailable.
func encodeOrder(e *jx.Encoder, o *order.Order, statusName string) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID)
	e.FieldStart("customerId")
	e.Str(o.CustomerID)
	e.FieldStart("shippingAddress")
	e.Str(o.ShippingAddress)
	e.FieldStart("orderDate")
	e.Str(o.OrderDate.UTC().Format(time.RFC3339))
	e.FieldStart("statusId")
	e.Int(o.StatusID)
	if statusName != "" {
		e.FieldStart("status")
		e.Str(statusName)
	}
	e.FieldStart("totalAmount")
	e.Str(o.TotalAmount.String())
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("productName")
		e.Str(item.ProductName)
		e.FieldStart("quantity")
		e.Str(item.Quantity.String())
		e.FieldStart("unitPrice")
		e.Str(item.UnitPrice.String())
		e.FieldStart("totalPrice")
		e.Str(item.TotalPrice.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// encodeDelivery writes one shipment.
func encodeDelivery(e *jx.Encoder, d *delivery.Delivery) {
	e.ObjStart()
	e.FieldStart("deliveryId")
	e.Str(d.ID)
	e.FieldStart("orderId")
	e.Str(d.OrderID)
	e.FieldStart("statusId")
	e.Int(d.StatusID)
	e.FieldStart("createdAt")
	e.Str(d.CreatedAt.UTC().Format(time.RFC3339))
	if d.DeliveredAt != nil {
		e.FieldStart("deliveredAt")
		e.Str(d.DeliveredAt.UTC().Format(time.RFC3339))
	}
	e.ObjEnd()
}

// encodePayment writes one payment. Amounts render as strings, like every
// other money field.
func encodePayment(e *jx.Encoder, p *payment.Payment) {
	e.ObjStart()
	e.FieldStart("paymentId")
	e.Str(p.ID)
	if p.OrderID != "" {
		e.FieldStart("orderId")
		e.Str(p.OrderID)
	}
	e.FieldStart("customerId")
	e.Str(p.CustomerID)
	e.FieldStart("amount")
	e.Str(p.Amount.String())
	e.FieldStart("paymentMethodId")
	e.Int(p.PaymentMethodID)
	e.FieldStart("status")
	e.Str(string(p.Status))
	e.ObjEnd()
}

// encodeDocument writes one product attachment.
func encodeDocument(e *jx.Encoder, d *product.Document) {
	e.ObjStart()
	e.FieldStart("documentId")
	e.Str(d.ID)
	e.FieldStart("productId")
	e.Str(d.ProductID)
	e.FieldStart("fileName")
	e.Str(d.FileName)
	e.FieldStart("fileUrl")
	e.Str(d.FileURL)
	e.ObjEnd()
}
