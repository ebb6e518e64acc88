package shared

import (
	"math"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders a unit price with grouping and two decimals.
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("$%.2f", v)
}

// MoneyTag is the validator tag that accepts at most two decimal places.
const MoneyTag = "money"

// HasCents reports whether v has no more than two decimal places.
func HasCents(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// RegisterMoney adds MoneyTag to v.
func RegisterMoney(v *validator.Validate) {
	_ = v.RegisterValidation(MoneyTag, func(fl validator.FieldLevel) bool {
		return HasCents(fl.Field().Float())
	})
}
