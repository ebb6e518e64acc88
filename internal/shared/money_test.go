package shared

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoneyThousands(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(1234.5))
}

func TestMoneyValidation(t *testing.T) {
	v := validator.New()
	RegisterMoney(v)

	tests := []struct {
		value float64
		valid bool
	}{
		{value: 18, valid: true},
		{value: 21.35, valid: true},
		{value: 0.1, valid: true},
		{value: 0.001, valid: false},
		{value: 12.345, valid: false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, MoneyTag)
		if tt.valid {
			assert.NoError(t, err, "%v", tt.value)
		} else {
			assert.Error(t, err, "%v", tt.value)
		}
	}
}
