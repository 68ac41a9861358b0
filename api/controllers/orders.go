package controllers

import (
	"net/http"

	"github.com/tiendazo/storefront-backend/api/responses"
	ordersvc "github.com/tiendazo/storefront-backend/internal/orders"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

// OrderConfirmation returns the confirmation view for ?order=.
func OrderConfirmation(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.Confirmation(r.Context(), r.URL.Query().Get("order"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
