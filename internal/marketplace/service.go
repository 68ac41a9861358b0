package marketplace

import (
	"context"
	"errors"

	"github.com/tiendazo/storefront-backend/pkg/backend"
	apperrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/pagination"
)

// Gateway is the slice of the backend client the browse surface needs.
type Gateway interface {
	GetStore(ctx context.Context, slug string) (*backend.Store, error)
	ListProducts(ctx context.Context, slug string, params backend.ListProductsParams) (*backend.ProductPage, error)
	GetProduct(ctx context.Context, slug string, productID int64) (*backend.Product, error)
}

// Service proxies storefront browsing to the commerce backend. It owns no
// state; it normalizes inputs and translates upstream failures into coded
// errors the HTTP layer can render.
type Service interface {
	Store(ctx context.Context, slug string) (*backend.Store, error)
	Products(ctx context.Context, slug string, search, sort string, page pagination.Params) (*backend.ProductPage, error)
	Product(ctx context.Context, slug string, productID int64) (*backend.Product, error)
}

type service struct {
	gateway Gateway
	logg    *logger.Logger
}

func NewService(gateway Gateway, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, errors.New("marketplace: gateway is required")
	}
	if logg == nil {
		return nil, errors.New("marketplace: logger is required")
	}
	return &service{gateway: gateway, logg: logg}, nil
}

func (s *service) Store(ctx context.Context, slug string) (*backend.Store, error) {
	if slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "store slug is required")
	}
	store, err := s.gateway.GetStore(ctx, slug)
	if err != nil {
		return nil, translate(err, "store not found")
	}
	return store, nil
}

func (s *service) Products(ctx context.Context, slug, search, sort string, page pagination.Params) (*backend.ProductPage, error) {
	if slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "store slug is required")
	}
	page = page.Normalize()
	result, err := s.gateway.ListProducts(ctx, slug, backend.ListProductsParams{
		Search: search,
		Sort:   sort,
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, translate(err, "store not found")
	}
	return result, nil
}

func (s *service) Product(ctx context.Context, slug string, productID int64) (*backend.Product, error) {
	if slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "store slug is required")
	}
	if productID <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	product, err := s.gateway.GetProduct(ctx, slug, productID)
	if err != nil {
		return nil, translate(err, "product not found")
	}
	return product, nil
}

// translate maps upstream 404s to not-found errors and leaves everything
// else to the dependency code so the error envelope stays honest.
func translate(err error, notFoundMsg string) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		return apperrors.Wrap(apperrors.CodeNotFound, err, notFoundMsg)
	}
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeDependency, err, "commerce backend request failed")
}
