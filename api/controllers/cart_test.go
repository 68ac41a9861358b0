package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	cartsvc "github.com/tiendazo/storefront-backend/internal/cart"
	"github.com/tiendazo/storefront-backend/internal/session"
	pkgerrors "github.com/tiendazo/storefront-backend/pkg/errors"
)

type stubCartService struct {
	items    []cartsvc.LineItem
	err      error
	gotOwner string
	gotSlug  string
	gotQty   int
}

func (s *stubCartService) AddItem(_ context.Context, ownerKey string, item cartsvc.LineItem) ([]cartsvc.LineItem, error) {
	s.gotOwner = ownerKey
	s.gotSlug = item.StoreSlug
	return s.items, s.err
}

func (s *stubCartService) Items(_ context.Context, ownerKey, storeSlug string) ([]cartsvc.LineItem, error) {
	s.gotOwner = ownerKey
	s.gotSlug = storeSlug
	return s.items, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, ownerKey, storeSlug string, _ int64, quantity int) ([]cartsvc.LineItem, error) {
	s.gotOwner = ownerKey
	s.gotSlug = storeSlug
	s.gotQty = quantity
	return s.items, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, ownerKey, storeSlug string, _ int64) ([]cartsvc.LineItem, error) {
	s.gotOwner = ownerKey
	s.gotSlug = storeSlug
	return s.items, s.err
}

func (s *stubCartService) Clear(_ context.Context, ownerKey, storeSlug string) error {
	s.gotOwner = ownerKey
	s.gotSlug = storeSlug
	return s.err
}

func (s *stubCartService) Total(context.Context, string, string) (decimal.Decimal, error) {
	return decimal.Zero, s.err
}

func (s *stubCartService) ItemCount(context.Context, string, string) (int, error) {
	return 0, s.err
}

func visitorRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(session.WithID(req.Context(), "visitor-1"))
}

func decodeCartView(t *testing.T, resp *httptest.ResponseRecorder) cartView {
	t.Helper()
	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCartGetScopedByStore(t *testing.T) {
	svc := &stubCartService{items: []cartsvc.LineItem{
		{StoreSlug: "acme", ProductID: 10, UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{StoreSlug: "acme", ProductID: 11, UnitPrice: decimal.RequireFromString("5.00"), Quantity: 2},
	}}
	handler := CartGet(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodGet, "/api/v1/cart?store=acme", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotOwner != "visitor-1" || svc.gotSlug != "acme" {
		t.Fatalf("unexpected scope: owner=%s slug=%s", svc.gotOwner, svc.gotSlug)
	}

	view := decodeCartView(t, resp)
	if view.ItemCount != 4 {
		t.Fatalf("expected item count 4 got %d", view.ItemCount)
	}
	if !view.Total.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected total 30 got %s", view.Total)
	}
}

func TestCartAddItemCreated(t *testing.T) {
	svc := &stubCartService{items: []cartsvc.LineItem{
		{StoreSlug: "acme", ProductID: 10, UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}}
	handler := CartAddItem(svc, nil)

	body := `{"storeSlug":"acme","storeId":1,"productId":10,"productName":"Widget","unitPrice":"5.00","quantity":1}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	body := `{"storeSlug":"acme","storeId":1,"productId":10,"productName":"Widget","surprise":true}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemRequiresStoreQuery(t *testing.T) {
	handler := CartUpdateItem(&stubCartService{}, nil)

	req := visitorRequest(http.MethodPatch, "/api/v1/cart/items/10", `{"quantity":3}`)
	req = withURLParam(req, "productID", "10")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemPassesQuantityThrough(t *testing.T) {
	svc := &stubCartService{}
	handler := CartUpdateItem(svc, nil)

	req := visitorRequest(http.MethodPatch, "/api/v1/cart/items/10?store=acme", `{"quantity":0}`)
	req = withURLParam(req, "productID", "10")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotQty != 0 {
		t.Fatalf("expected quantity 0 got %d", svc.gotQty)
	}
}

func TestCartRemoveItemOK(t *testing.T) {
	handler := CartRemoveItem(&stubCartService{}, nil)

	req := visitorRequest(http.MethodDelete, "/api/v1/cart/items/10?store=acme", "")
	req = withURLParam(req, "productID", "10")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartClearPropagatesServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInternal, "storage down")}
	handler := CartClear(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodDelete, "/api/v1/cart?store=acme", ""))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
