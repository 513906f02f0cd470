// Package money holds the pure value rules for price and quantity arithmetic.
//
// All arithmetic runs on shopspring decimals; floating point is never used
// for monetary values. Consistency checks use exact equality rather than a
// tolerance, so a stored total that drifts by even a fraction of a cent from
// quantity times unit price is rejected.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/shoply/internal/domain/errs"
)

// ComputeLineTotal returns quantity * unitPrice in fixed-precision decimal
// arithmetic.
func ComputeLineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// ValidateLineConsistency fails with an InvariantViolation when totalPrice
// does not exactly equal quantity * unitPrice.
func ValidateLineConsistency(quantity, unitPrice, totalPrice decimal.Decimal) error {
	expected := ComputeLineTotal(quantity, unitPrice)
	if !totalPrice.Equal(expected) {
		return errs.Invariant("totalPrice", expected.String(), totalPrice.String())
	}
	return nil
}

// ValidatePositive fails with a ValidationError when value is zero or
// negative.
func ValidatePositive(value decimal.Decimal, field string) error {
	if !value.IsPositive() {
		return errs.Validation(field, "must be greater than 0, got %s", value)
	}
	return nil
}

// ValidatePositiveInt fails with a ValidationError when value is zero or
// negative.
func ValidatePositiveInt(value int, field string) error {
	if value <= 0 {
		return errs.Validation(field, "must be greater than 0, got %d", value)
	}
	return nil
}
