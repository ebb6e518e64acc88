package products

import "time"

// Product is the persisted catalog product. JSON names are the wire names of
// the catalog API.
type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name" validate:"required,min=2,max=40"`
	CategoryID      int64     `json:"categoryId" validate:"gte=1"`
	SupplierID      int64     `json:"supplierId" validate:"gte=1"`
	QuantityPerUnit string    `json:"quantityPerUnit" validate:"required,max=20"`
	UnitPrice       float64   `json:"unitPrice" validate:"gte=0,lte=9999999999.99,money"`
	UnitsInStock    int64     `json:"unitsInStock" validate:"gte=0"`
	UnitsOnOrder    int64     `json:"unitsOnOrder" validate:"gte=0"`
	ReorderLevel    int64     `json:"reorderLevel" validate:"gte=0"`
	Discontinued    bool      `json:"discontinued"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ListResult is the paged response of the list endpoint.
type ListResult struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent describes a committed product mutation.
type ChangeEvent struct {
	Action  string
	Product Product
	Actor   string
	At      time.Time
}
