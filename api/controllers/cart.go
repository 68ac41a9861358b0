package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tiendazo/storefront-backend/api/responses"
	"github.com/tiendazo/storefront-backend/api/validators"
	cartsvc "github.com/tiendazo/storefront-backend/internal/cart"
	"github.com/tiendazo/storefront-backend/internal/session"
	pkgerrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

type cartView struct {
	StoreSlug string             `json:"storeSlug,omitempty"`
	Items     []cartsvc.LineItem `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     decimal.Decimal    `json:"total"`
}

func newCartView(storeSlug string, items []cartsvc.LineItem) cartView {
	view := cartView{StoreSlug: storeSlug, Items: items, Total: decimal.Zero}
	if view.Items == nil {
		view.Items = []cartsvc.LineItem{}
	}
	for _, line := range items {
		view.ItemCount += line.Quantity
		view.Total = view.Total.Add(line.Subtotal())
	}
	return view
}

// CartGet returns the visitor's cart, scoped to ?store= when present.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())
		storeSlug := r.URL.Query().Get("store")

		items, err := svc.Items(r.Context(), owner, storeSlug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(storeSlug, items))
	}
}

type addItemRequest struct {
	StoreSlug    string          `json:"storeSlug" validate:"required"`
	StoreID      int64           `json:"storeId" validate:"required,gt=0"`
	ProductID    int64           `json:"productId" validate:"required,gt=0"`
	ProductName  string          `json:"productName" validate:"required"`
	ProductImage string          `json:"productImage"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
}

// CartAddItem adds a line or merges quantities into an existing one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.AddItem(r.Context(), owner, cartsvc.LineItem{
			StoreSlug:    payload.StoreSlug,
			StoreID:      payload.StoreID,
			ProductID:    payload.ProductID,
			ProductName:  payload.ProductName,
			ProductImage: payload.ProductImage,
			UnitPrice:    payload.UnitPrice,
			Quantity:     payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(payload.StoreSlug, items))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateItem sets a line's quantity; zero or less removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())
		storeSlug, productID, err := cartLineParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.UpdateQuantity(r.Context(), owner, storeSlug, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(storeSlug, items))
	}
}

// CartRemoveItem drops a line; removing an absent line succeeds.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())
		storeSlug, productID, err := cartLineParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.RemoveItem(r.Context(), owner, storeSlug, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(storeSlug, items))
	}
}

// CartClear empties the ?store= scoped lines, or the whole cart without it.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.IDFromContext(r.Context())
		storeSlug := r.URL.Query().Get("store")

		if err := svc.Clear(r.Context(), owner, storeSlug); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(storeSlug, nil))
	}
}

func cartLineParams(r *http.Request) (string, int64, error) {
	storeSlug := r.URL.Query().Get("store")
	if storeSlug == "" {
		return "", 0, pkgerrors.New(pkgerrors.CodeValidation, "store query parameter is required")
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		return "", 0, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	return storeSlug, productID, nil
}
