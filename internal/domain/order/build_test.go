package order

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shoply/internal/domain/errs"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validSpec() ItemSpec {
	return ItemSpec{
		ProductID:   "p1",
		ProductName: "Widget",
		Quantity:    dec("2"),
		UnitPrice:   dec("10.00"),
		TotalPrice:  dec("20.00"),
	}
}

func validParams(items ...ItemSpec) BuildParams {
	return BuildParams{
		CustomerID:      "c1",
		ShippingAddress: "1 Main Street, Springfield",
		OrderDate:       time.Now(),
		StatusID:        StatusPlaced,
		Items:           items,
	}
}

func TestBuild_EmptyItems(t *testing.T) {
	_, err := Build(validParams())

	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)
}

func TestBuild_NonPositiveFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ItemSpec)
		field  string
	}{
		{"zero quantity", func(s *ItemSpec) { s.Quantity = decimal.Zero }, "quantity"},
		{"negative quantity", func(s *ItemSpec) { s.Quantity = dec("-1") }, "quantity"},
		{"zero unit price", func(s *ItemSpec) { s.UnitPrice = decimal.Zero }, "unitPrice"},
		{"zero total", func(s *ItemSpec) { s.TotalPrice = decimal.Zero }, "totalPrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			_, err := Build(validParams(spec))

			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestBuild_LineTotalMismatch(t *testing.T) {
	spec := validSpec()
	spec.TotalPrice = dec("19.99")

	_, err := Build(validParams(spec))

	var iv *errs.InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "totalPrice", iv.Field)
	assert.Equal(t, "20.00", iv.Expected)
	assert.Equal(t, "19.99", iv.Actual)
}

func TestBuild_ShippingAddress(t *testing.T) {
	p := validParams(validSpec())
	p.ShippingAddress = ""
	_, err := Build(p)
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shippingAddress", ve.Field)

	p.ShippingAddress = strings.Repeat("x", MaxShippingAddressLen+1)
	_, err = Build(p)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shippingAddress", ve.Field)

	p.ShippingAddress = strings.Repeat("x", MaxShippingAddressLen)
	_, err = Build(p)
	require.NoError(t, err)
}

func TestBuild_OrderDateSkew(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p := validParams(validSpec())
	p.Now = now
	p.OrderDate = now.Add(3 * time.Hour) // within the 4h allowance
	_, err := Build(p)
	require.NoError(t, err)

	p.OrderDate = now.Add(5 * time.Hour)
	_, err = Build(p)
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "orderDate", ve.Field)
}

func TestBuild_CustomClockSkew(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p := validParams(validSpec())
	p.Now = now
	p.ClockSkew = 30 * time.Minute
	p.OrderDate = now.Add(time.Hour)

	_, err := Build(p)
	require.Error(t, err)
}

func TestBuild_TotalAmountAgreement(t *testing.T) {
	spec1 := validSpec()
	spec2 := ItemSpec{
		ProductID:   "p2",
		ProductName: "Gadget",
		Quantity:    dec("1"),
		UnitPrice:   dec("5.50"),
		TotalPrice:  dec("5.50"),
	}

	supplied := dec("25.50")
	p := validParams(spec1, spec2)
	p.TotalAmount = &supplied

	o, err := Build(p)
	require.NoError(t, err)
	assert.True(t, dec("25.50").Equal(o.TotalAmount))

	wrong := dec("26.00")
	p.TotalAmount = &wrong
	_, err = Build(p)
	var iv *errs.InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "totalAmount", iv.Field)
}

func TestBuild_SumInvariant(t *testing.T) {
	specs := []ItemSpec{
		{ProductID: "p1", ProductName: "A", Quantity: dec("3"), UnitPrice: dec("1.25"), TotalPrice: dec("3.75")},
		{ProductID: "p2", ProductName: "B", Quantity: dec("1"), UnitPrice: dec("0.99"), TotalPrice: dec("0.99")},
		{ProductID: "p3", ProductName: "C", Quantity: dec("10"), UnitPrice: dec("2.00"), TotalPrice: dec("20.00")},
	}

	o, err := Build(validParams(specs...))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, o.TotalAmount.Equal(sum))
	assert.True(t, dec("24.74").Equal(o.TotalAmount))
	assert.Len(t, o.Items, 3)
}

func TestBuild_ItemsCarrySnapshots(t *testing.T) {
	o, err := Build(validParams(validSpec()))
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	item := o.Items[0]
	assert.Equal(t, o.ID, item.OrderID)
	assert.Equal(t, "Widget", item.ProductName)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, StatusPlaced, o.StatusID)
}
