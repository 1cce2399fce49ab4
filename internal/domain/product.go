package domain

// Product is one sellable catalog entry. Read-only within a sale; price
// changes take effect on the next session.
type Product struct {
	ID    int64   `json:"id"`
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}
