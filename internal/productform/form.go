package productform

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
)

// FieldKind decides how a field's string value is coerced.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInteger
	KindDecimal
	KindBoolean
)

// Field is one named control of the form. Values are kept as the strings an
// HTML form posts.
type Field struct {
	Name  string
	Kind  FieldKind
	Value string
	// Rules is a validator tag applied to the coerced value.
	Rules string
}

// Form is an ordered set of fields.
type Form struct {
	fields []Field
	index  map[string]int
}

// Product form field names. They equal the JSON attribute names of
// catalogapi.Product.
const (
	FieldSupplierID      = "supplierId"
	FieldCategoryID      = "categoryId"
	FieldQuantityPerUnit = "quantityPerUnit"
	FieldUnitPrice       = "unitPrice"
	FieldUnitsInStock    = "unitsInStock"
	FieldUnitsOnOrder    = "unitsOnOrder"
	FieldReorderLevel    = "reorderLevel"
	FieldDiscontinued    = "discontinued"
	FieldName            = "name"
)

func productSchema() []Field {
	return []Field{
		{Name: FieldSupplierID, Kind: KindInteger, Value: "0", Rules: "gte=1"},
		{Name: FieldCategoryID, Kind: KindInteger, Value: "0", Rules: "gte=1"},
		{Name: FieldQuantityPerUnit, Kind: KindText, Value: "", Rules: "required"},
		{Name: FieldUnitPrice, Kind: KindDecimal, Value: "0", Rules: "gte=0,lte=9999999999.99,money"},
		{Name: FieldUnitsInStock, Kind: KindInteger, Value: "0", Rules: "gte=0"},
		{Name: FieldUnitsOnOrder, Kind: KindInteger, Value: "", Rules: "gte=0"},
		{Name: FieldReorderLevel, Kind: KindInteger, Value: "", Rules: "gte=0"},
		{Name: FieldDiscontinued, Kind: KindBoolean, Value: "false"},
		{Name: FieldName, Kind: KindText, Value: "", Rules: "required,min=2"},
	}
}

// NewProductForm returns the product form with its default values.
func NewProductForm() *Form {
	return newForm(productSchema())
}

func newForm(fields []Field) *Form {
	f := &Form{fields: fields, index: make(map[string]int, len(fields))}
	for i, field := range fields {
		f.index[field.Name] = i
	}
	return f
}

// Fields returns a copy of the fields in schema order.
func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Get returns the current value of a field.
func (f *Form) Get(name string) (string, bool) {
	i, ok := f.index[name]
	if !ok {
		return "", false
	}
	return f.fields[i].Value, true
}

// Value returns the current value of a field or "" when it does not exist.
func (f *Form) Value(name string) string {
	v, _ := f.Get(name)
	return v
}

// Set overwrites a field value. Unknown names are ignored and reported false.
func (f *Form) Set(name, value string) bool {
	i, ok := f.index[name]
	if !ok {
		return false
	}
	f.fields[i].Value = value
	return true
}

// Values returns the field values keyed by name.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.Name] = field.Value
	}
	return out
}

// Patch overwrites fields whose name appears in values; other fields keep
// their value and unknown names are ignored.
func (f *Form) Patch(values map[string]string) {
	for name, value := range values {
		f.Set(name, value)
	}
}

// PatchProduct copies a product's attributes into same-named fields.
func (f *Form) PatchProduct(p catalogapi.Product) {
	f.Patch(productValues(p))
}

// Bind copies a posted HTML form. A boolean field missing from the post is an
// unchecked checkbox and becomes false.
func (f *Form) Bind(posted url.Values) {
	for i, field := range f.fields {
		values, ok := posted[field.Name]
		switch {
		case ok && len(values) > 0:
			f.fields[i].Value = values[len(values)-1]
		case field.Kind == KindBoolean:
			f.fields[i].Value = "false"
		}
	}
}

// Clone returns a deep copy.
func (f *Form) Clone() *Form {
	return newForm(f.Fields())
}

// productValues renders a product as the string values a form holds, keyed by
// JSON attribute name. Numbers keep their exact decimal text.
func productValues(p catalogapi.Product) map[string]string {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for name, v := range raw {
		switch tv := v.(type) {
		case string:
			out[name] = tv
		case json.Number:
			out[name] = tv.String()
		case bool:
			out[name] = strconv.FormatBool(tv)
		}
	}
	return out
}
