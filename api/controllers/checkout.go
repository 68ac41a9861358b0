package controllers

import (
	"net/http"

	"github.com/tiendazo/storefront-backend/api/responses"
	"github.com/tiendazo/storefront-backend/api/validators"
	checkoutsvc "github.com/tiendazo/storefront-backend/internal/checkout"
	"github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

// CheckoutSubmit places an order for one store's cart lines. The cart stays
// untouched unless the backend accepts the order.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())

		var payload checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), owner, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
