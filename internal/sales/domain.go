package sales

// LineItem is one purchased product entry of a sale.
type LineItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// TaxConfig maps a tax category (e.g. "city", "state") to its rate.
type TaxConfig map[string]float64

// Sale represents a completed, priced and persisted sales transaction.
type Sale struct {
	ID             int64      `json:"id"`
	Items          []LineItem `json:"items"`
	TaxDue         float64    `json:"tax_due"`
	TotalDue       float64    `json:"total_due"`
	TotalPurchased float64    `json:"total_purchased"`
}
