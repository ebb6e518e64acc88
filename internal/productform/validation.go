package productform

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/northwind-admin/northwind-admin/internal/shared"
)

// ErrInvalidForm matches every *ValidationError.
var ErrInvalidForm = errors.New("productform: invalid form")

// FieldErrors maps field names to operator-facing messages.
type FieldErrors map[string]string

// ValidationError is returned by Submit when the form does not validate.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "productform: invalid fields: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	shared.RegisterMoney(v)
	return v
}

// coerced holds every form field converted to its declared type.
type coerced struct {
	text     map[string]string
	integers map[string]int64
	decimals map[string]float64
	booleans map[string]bool
}

// Validate coerces and checks every field, returning nil when the form is
// valid.
func (f *Form) Validate() FieldErrors {
	_, errs := f.coerce()
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *Form) coerce() (coerced, FieldErrors) {
	c := coerced{
		text:     map[string]string{},
		integers: map[string]int64{},
		decimals: map[string]float64{},
		booleans: map[string]bool{},
	}
	errs := FieldErrors{}
	for _, field := range f.fields {
		raw := strings.TrimSpace(field.Value)
		var value any
		switch field.Kind {
		case KindText:
			c.text[field.Name] = raw
			value = raw
		case KindInteger:
			n, err := parseInteger(raw)
			if err != nil {
				errs[field.Name] = "must be a whole number"
				continue
			}
			c.integers[field.Name] = n
			value = n
		case KindDecimal:
			n, err := parseDecimal(raw)
			if err != nil {
				errs[field.Name] = "must be a number"
				continue
			}
			c.decimals[field.Name] = n
			value = n
		case KindBoolean:
			c.booleans[field.Name] = parseBoolean(raw)
			continue
		}
		if field.Rules == "" {
			continue
		}
		if err := validate.Var(value, field.Rules); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				errs[field.Name] = ruleMessage(field.Kind, verrs[0])
			} else {
				errs[field.Name] = "is invalid"
			}
		}
	}
	return c, errs
}

func parseInteger(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseDecimal(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func parseBoolean(raw string) bool {
	if strings.EqualFold(raw, "on") {
		return true
	}
	b, _ := strconv.ParseBool(raw)
	return b
}

func ruleMessage(kind FieldKind, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if kind == KindText {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case shared.MoneyTag:
		return "must have at most 2 decimal places"
	default:
		return "is invalid"
	}
}
