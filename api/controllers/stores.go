package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tiendazo/storefront-backend/api/responses"
	"github.com/tiendazo/storefront-backend/api/validators"
	marketplacesvc "github.com/tiendazo/storefront-backend/internal/marketplace"
	pkgerrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/pagination"
)

// StoreGet returns one store's public profile.
func StoreGet(svc marketplacesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := svc.Store(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// ProductsList browses a store's catalog with search, sort and pagination.
func ProductsList(svc marketplacesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Products(
			r.Context(),
			chi.URLParam(r, "slug"),
			r.URL.Query().Get("search"),
			r.URL.Query().Get("sort"),
			pagination.Params{Page: page, Limit: limit},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductGet returns one product within a store.
func ProductGet(svc marketplacesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer"))
			return
		}

		product, err := svc.Product(r.Context(), chi.URLParam(r, "slug"), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
