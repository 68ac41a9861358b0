package checkout

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tiendazo/storefront-backend/internal/cart"
	"github.com/tiendazo/storefront-backend/pkg/backend"
	"github.com/tiendazo/storefront-backend/pkg/config"
	apperrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/metrics"
)

// Gateway is the slice of the backend client checkout needs.
type Gateway interface {
	GetProduct(ctx context.Context, slug string, productID int64) (*backend.Product, error)
	CreateOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderResponse, error)
}

// Service submits one store's cart lines as an order. The cart is cleared
// for that store only, and only after the backend accepts the order; any
// failure leaves the cart exactly as it was.
type Service interface {
	Submit(ctx context.Context, ownerKey string, input Input) (*Result, error)
}

type service struct {
	carts    cart.Service
	gateway  Gateway
	cfg      config.CheckoutConfig
	recheck  bool
	validate *validator.Validate
	metrics  *metrics.StorefrontMetrics
	logg     *logger.Logger
}

// NewService wires the checkout service. recheck gates the pre-submission
// stock pass; metrics may be nil.
func NewService(carts cart.Service, gateway Gateway, cfg config.CheckoutConfig, recheck bool, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, errors.New("checkout: cart service is required")
	}
	if gateway == nil {
		return nil, errors.New("checkout: gateway is required")
	}
	if logg == nil {
		return nil, errors.New("checkout: logger is required")
	}
	return &service{
		carts:    carts,
		gateway:  gateway,
		cfg:      cfg,
		recheck:  recheck,
		validate: newValidator(),
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) Submit(ctx context.Context, ownerKey string, input Input) (*Result, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	ctx = s.logg.WithStoreSlug(ctx, input.StoreSlug)

	items, err := s.carts.Items(ctx, ownerKey, input.StoreSlug)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.CodeStateConflict, "el carrito está vacío")
	}

	if s.recheck {
		if err := s.recheckStock(ctx, input.StoreSlug, items); err != nil {
			s.metrics.IncCheckout("stock_rejected")
			return nil, err
		}
	}

	// The backend reprices every line from its own catalog; only product
	// ids and quantities travel in the order payload.
	orderItems := make([]backend.OrderItem, 0, len(items))
	for _, line := range items {
		orderItems = append(orderItems, backend.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	resp, err := s.gateway.CreateOrder(ctx, backend.OrderRequest{
		StoreID:         items[0].StoreID,
		PaymentMethod:   backend.PaymentMethodOnline,
		Items:           orderItems,
		ShippingName:    input.ShippingName,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingState:   input.ShippingState,
		ShippingZip:     input.ShippingZip,
		ShippingCountry: input.ShippingCountry,
		Notes:           input.Notes,
	})
	if err != nil {
		s.metrics.IncCheckout("failure")
		return nil, s.translateOrderError(err)
	}
	s.metrics.IncCheckout("success")

	// Clearing only after the order is accepted, and only for this store.
	if err := s.carts.Clear(ctx, ownerKey, input.StoreSlug); err != nil {
		s.logg.Error(ctx, "order accepted but cart clear failed", err)
	}

	subtotal := decimal.Zero
	for _, line := range items {
		subtotal = subtotal.Add(line.Subtotal())
	}
	tax := subtotal.Mul(s.cfg.TaxRateDecimal()).Round(2)
	shipping := decimal.Zero

	redirect := "/client/orders?order=" + resp.OrderNumber
	if resp.PaymentGatewaySessionURL != nil && *resp.PaymentGatewaySessionURL != "" {
		redirect = *resp.PaymentGatewaySessionURL
	}

	return &Result{
		OrderNumber: resp.OrderNumber,
		RedirectURL: redirect,
		Subtotal:    subtotal,
		Tax:         tax,
		Shipping:    shipping,
		Total:       subtotal.Add(tax).Add(shipping),
		Items:       items,
	}, nil
}

func (s *service) validateInput(input Input) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return apperrors.Wrap(apperrors.CodeInternal, err, "validation failed")
	}
	fields := make(map[string]string, len(invalid))
	for _, fieldErr := range invalid {
		switch fieldErr.Tag() {
		case "required":
			fields[fieldErr.Field()] = "este campo es obligatorio"
		case "oneof":
			fields[fieldErr.Field()] = "valor no permitido"
		default:
			fields[fieldErr.Field()] = "valor inválido"
		}
	}
	return apperrors.New(apperrors.CodeValidation, "datos de envío incompletos").WithDetails(fields)
}

// recheckStock compares every requested line against the backend's current
// stock and rejects the submission with a per-line diff when any line no
// longer fits. A product the backend cannot return counts as unavailable.
func (s *service) recheckStock(ctx context.Context, slug string, items []cart.LineItem) error {
	var issues []StockIssue
	for _, line := range items {
		product, err := s.gateway.GetProduct(ctx, slug, line.ProductID)
		if err != nil {
			issues = append(issues, StockIssue{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Available:   0,
			})
			continue
		}
		if product.Stock < line.Quantity {
			issues = append(issues, StockIssue{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Available:   product.Stock,
			})
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return apperrors.New(apperrors.CodeConflict, "Stock insuficiente").WithDetails(issues)
}

// translateOrderError keeps the backend's own message when the rejection is
// the client's fault, so the storefront shows exactly what the backend said.
func (s *service) translateOrderError(err error) error {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		var coded *apperrors.Error
		if errors.As(err, &coded) {
			return err
		}
		return apperrors.Wrap(apperrors.CodeDependency, err, s.cfg.FallbackMessage)
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.CodeUnauthorized, err, "debes iniciar sesión para completar tu pedido")
	case http.StatusForbidden:
		return apperrors.Wrap(apperrors.CodeForbidden, err, apiErr.UpstreamMessage())
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return apperrors.Wrap(apperrors.CodeConflict, err, apiErr.UpstreamMessage())
	default:
		return apperrors.Wrap(apperrors.CodeDependency, err, s.cfg.FallbackMessage)
	}
}

// newValidator reports field names by their json tag so the details map
// matches the request payload the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
