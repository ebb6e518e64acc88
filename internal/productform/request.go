package productform

import "github.com/northwind-admin/northwind-admin/internal/catalogapi"

// buildRequest shapes the outgoing payload. Create and update coerce the same
// way; only the id differs.
func buildRequest(c coerced, mode Mode) catalogapi.Product {
	req := catalogapi.Product{
		Name:            c.text[FieldName],
		CategoryID:      c.integers[FieldCategoryID],
		SupplierID:      c.integers[FieldSupplierID],
		QuantityPerUnit: c.text[FieldQuantityPerUnit],
		UnitPrice:       c.decimals[FieldUnitPrice],
		UnitsInStock:    c.integers[FieldUnitsInStock],
		UnitsOnOrder:    c.integers[FieldUnitsOnOrder],
		ReorderLevel:    c.integers[FieldReorderLevel],
		Discontinued:    c.booleans[FieldDiscontinued],
	}
	if edit, ok := mode.(EditMode); ok {
		req.ID = edit.Product.ID
	}
	return req
}
