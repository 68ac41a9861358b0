package orders

import (
	"context"
	"errors"
	"net/http"

	"github.com/tiendazo/storefront-backend/pkg/backend"
	apperrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

// Gateway is the slice of the backend client the confirmation page needs.
type Gateway interface {
	GetOrder(ctx context.Context, orderNumber string) (*backend.OrderDetail, error)
}

// Service fetches placed orders for the confirmation view.
type Service interface {
	Confirmation(ctx context.Context, orderNumber string) (*backend.OrderDetail, error)
}

type service struct {
	gateway Gateway
	logg    *logger.Logger
}

func NewService(gateway Gateway, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, errors.New("orders: gateway is required")
	}
	if logg == nil {
		return nil, errors.New("orders: logger is required")
	}
	return &service{gateway: gateway, logg: logg}, nil
}

func (s *service) Confirmation(ctx context.Context, orderNumber string) (*backend.OrderDetail, error) {
	if orderNumber == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "order number is required")
	}
	detail, err := s.gateway.GetOrder(ctx, orderNumber)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusNotFound:
				return nil, apperrors.Wrap(apperrors.CodeNotFound, err, "pedido no encontrado")
			case http.StatusUnauthorized:
				return nil, apperrors.Wrap(apperrors.CodeUnauthorized, err, "debes iniciar sesión para ver tu pedido")
			case http.StatusForbidden:
				return nil, apperrors.Wrap(apperrors.CodeForbidden, err, "este pedido pertenece a otra cuenta")
			}
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "no pudimos cargar tu pedido")
	}
	return detail, nil
}
