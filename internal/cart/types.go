package cart

import "github.com/shopspring/decimal"

// LineItem is one cart line. Lines are partitioned by StoreSlug: every
// read, mutation and total is scoped to a single store unless the caller
// explicitly asks for the whole cart.
//
// UnitPrice is the price snapshot taken when the line was first added; later
// merges of the same product never overwrite it.
type LineItem struct {
	StoreSlug    string          `json:"storeSlug"`
	StoreID      int64           `json:"storeId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
}

// Subtotal returns UnitPrice * Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) sameLine(storeSlug string, productID int64) bool {
	return l.StoreSlug == storeSlug && l.ProductID == productID
}
