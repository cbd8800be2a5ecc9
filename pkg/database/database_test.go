package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"quickcart/pkg/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		validation  bool
		unavailable bool
	}{
		{"nil", nil, false, false},
		{"foreign key", &pq.Error{Code: "23503", Constraint: "products_store_id_fkey", Message: "violates foreign key"}, true, false},
		{"check", &pq.Error{Code: "23514", Constraint: "products_price_check"}, true, false},
		{"bad text", &pq.Error{Code: "22P02"}, true, false},
		{"connection failure", &pq.Error{Code: "08006"}, false, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, false, true},
		{"too many connections", &pq.Error{Code: "53300"}, false, true},
		{"syntax", &pq.Error{Code: "42601"}, false, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), false, true},
		{"plain", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.validation, errors.Is(got, apperr.ErrValidation))
			assert.Equal(t, tt.unavailable, errors.Is(got, apperr.ErrUnavailable))
		})
	}
}

func TestClassifyNamesConstraint(t *testing.T) {
	err := Classify("create product", &pq.Error{Code: "23503", Constraint: "products_store_id_fkey", Message: "violates foreign key"})

	var ve *apperr.ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "products_store_id_fkey", ve.Field)
	}
}
