package catalogapi

// Product is the wire representation of a catalog product.
type Product struct {
	ID              int64   `json:"id,omitempty"`
	Name            string  `json:"name"`
	CategoryID      int64   `json:"categoryId"`
	SupplierID      int64   `json:"supplierId"`
	QuantityPerUnit string  `json:"quantityPerUnit"`
	UnitPrice       float64 `json:"unitPrice"`
	UnitsInStock    int64   `json:"unitsInStock"`
	UnitsOnOrder    int64   `json:"unitsOnOrder"`
	ReorderLevel    int64   `json:"reorderLevel"`
	Discontinued    bool    `json:"discontinued"`
}

// Category is a read-only reference entity.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Supplier is a read-only reference entity.
type Supplier struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}

// ProductPage is one page of the product list.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

// ProductQuery filters the product list.
type ProductQuery struct {
	Search       string
	CategoryID   int64
	SupplierID   int64
	Discontinued *bool
	Sort         string
	Dir          string
	Page         int
	Limit        int
	// All asks for every matching product in one page.
	All bool
}
