package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/tiendazo/storefront-backend/internal/cart"
)

// Input is the checkout submission for a single store's lines.
type Input struct {
	StoreSlug       string `json:"storeSlug" validate:"required"`
	ShippingName    string `json:"shippingName" validate:"required"`
	ShippingPhone   string `json:"shippingPhone" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
	ShippingCity    string `json:"shippingCity" validate:"required"`
	ShippingState   string `json:"shippingState"`
	ShippingZip     string `json:"shippingZip"`
	ShippingCountry string `json:"shippingCountry" validate:"required"`
	Notes           string `json:"notes"`
}

// StockIssue describes one line whose requested quantity exceeds the
// backend's current stock.
type StockIssue struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// Result is the successful checkout outcome. RedirectURL points at the
// payment gateway when the backend opened a session, otherwise at the order
// confirmation page.
type Result struct {
	OrderNumber string          `json:"orderNumber"`
	RedirectURL string          `json:"redirectUrl"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
	Items       []cart.LineItem `json:"items"`
}
