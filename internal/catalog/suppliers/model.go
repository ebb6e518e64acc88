package suppliers

// Supplier represents a company the catalog buys products from.
type Supplier struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}
