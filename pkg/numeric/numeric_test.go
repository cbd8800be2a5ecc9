package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"quickcart/pkg/apperr"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in      string
		limit   decimal.Decimal
		invalid bool
	}{
		{"0", MaxPrice, false},
		{"2.99", MaxPrice, false},
		{"2.990", MaxPrice, false},
		{"999999.99", MaxPrice, false},
		{"2.999", MaxPrice, true},
		{"11.975", MaxTotal, true},
		{"-0.01", MaxPrice, true},
		{"1000000", MaxPrice, true},
		{"123456.789", MaxFee, true},
		{"9999.99", MaxFee, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := Amount("price", decimal.RequireFromString(tt.in), tt.limit)
			if tt.invalid {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQuantity(t *testing.T) {
	assert.NoError(t, Quantity("quantity", 1))
	assert.NoError(t, Quantity("quantity", MaxQuantity))
	assert.ErrorIs(t, Quantity("quantity", 0), apperr.ErrValidation)
	assert.ErrorIs(t, Quantity("quantity", MaxQuantity+1), apperr.ErrValidation)
}
