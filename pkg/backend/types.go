package backend

import (
	"github.com/shopspring/decimal"

	"github.com/tiendazo/storefront-backend/pkg/pagination"
)

// Store is the marketplace tenant metadata served by the backend.
type Store struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logoUrl,omitempty"`
	BannerURL   *string `json:"bannerUrl,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// Product is one catalog entry within a store. Stock and price here are the
// backend's current truth; the cart keeps its own price snapshot.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Category    *string         `json:"category,omitempty"`
}

// ProductPage wraps a paginated product listing.
type ProductPage struct {
	Products []Product       `json:"products"`
	Meta     pagination.Meta `json:"meta"`
}

// ListProductsParams mirrors the backend's browse query surface.
type ListProductsParams struct {
	Search string
	Sort   string
	Page   int
	Limit  int
}

// PaymentMethodOnline is the only payment method this storefront submits;
// the backend decides whether a gateway session is needed.
const PaymentMethodOnline = "ONLINE"

// OrderItem is the only per-line data sent at order creation; the backend
// reprices every line itself.
type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the payload for POST /orders.
type OrderRequest struct {
	StoreID         int64       `json:"storeId"`
	PaymentMethod   string      `json:"paymentMethod"`
	Items           []OrderItem `json:"items"`
	ShippingName    string      `json:"shippingName"`
	ShippingPhone   string      `json:"shippingPhone"`
	ShippingAddress string      `json:"shippingAddress"`
	ShippingCity    string      `json:"shippingCity"`
	ShippingState   string      `json:"shippingState,omitempty"`
	ShippingZip     string      `json:"shippingZip,omitempty"`
	ShippingCountry string      `json:"shippingCountry"`
	Notes           string      `json:"notes,omitempty"`
}

// OrderResponse is the backend's acknowledgement of a created order.
type OrderResponse struct {
	OrderNumber              string  `json:"orderNumber"`
	PaymentGatewaySessionURL *string `json:"paymentGatewaySessionUrl,omitempty"`
}

// OrderDetailItem is one line of a placed order as reported by the backend.
type OrderDetailItem struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// OrderDetail is the confirmation-page view of a placed order.
type OrderDetail struct {
	OrderNumber   string            `json:"orderNumber"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
	Total         decimal.Decimal   `json:"total"`
	Items         []OrderDetailItem `json:"items"`
	CreatedAt     string            `json:"createdAt"`
}

// Credentials is the login payload proxied to the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUser is the profile mirrored into client-side session storage.
type AuthUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// LoginResponse carries the bearer token plus the user profile.
type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	User        AuthUser `json:"user"`
}

// RefreshResponse carries the rotated bearer token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}
