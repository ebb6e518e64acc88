package products

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/northwind-admin/northwind-admin/internal/platform/httpx"
	"github.com/northwind-admin/northwind-admin/internal/shared"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	shared.RegisterMoney(v)
	return v
}

func (s *Service) validate(p Product) error {
	err := s.validator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := httpx.FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case shared.MoneyTag:
		return "must have at most 2 decimal places"
	default:
		return "is invalid"
	}
}

// normalize trims free-text fields before validation and persistence.
func normalize(p Product) Product {
	p.Name = strings.TrimSpace(p.Name)
	p.QuantityPerUnit = strings.TrimSpace(p.QuantityPerUnit)
	return p
}
