// Package numeric holds the limits every amount and quantity must respect so
// that each storage backing keeps the value exactly as given.
package numeric

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"quickcart/pkg/apperr"
)

// Scale is the number of decimal places an amount may carry.
const Scale = 2

// MaxQuantity is the largest item count a line may hold.
const MaxQuantity = math.MaxInt32

// Exclusive upper bounds of the amount columns.
var (
	MaxFee   = decimal.New(1, 4) // NUMERIC(6,2)
	MaxPrice = decimal.New(1, 6) // NUMERIC(8,2)
	MaxTotal = decimal.New(1, 8) // NUMERIC(10,2)
)

// Amount rejects a negative d, one with more than Scale decimal places, or one
// not below limit.
func Amount(field string, d, limit decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return apperr.Invalid(field, "must not be negative")
	case !d.Equal(d.Truncate(Scale)):
		return apperr.Invalid(field, fmt.Sprintf("must have at most %d decimal places", Scale))
	case d.GreaterThanOrEqual(limit):
		return apperr.Invalid(field, "must be less than "+limit.String())
	}
	return nil
}

// Quantity rejects a count outside 1..MaxQuantity.
func Quantity(field string, q int) error {
	switch {
	case q < 1:
		return apperr.Invalid(field, "must be at least 1")
	case q > MaxQuantity:
		return apperr.Invalid(field, fmt.Sprintf("must not exceed %d", MaxQuantity))
	}
	return nil
}
