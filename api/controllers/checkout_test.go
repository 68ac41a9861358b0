package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	checkoutsvc "github.com/tiendazo/storefront-backend/internal/checkout"
	pkgerrors "github.com/tiendazo/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	result   *checkoutsvc.Result
	err      error
	gotOwner string
	gotInput checkoutsvc.Input
}

func (s *stubCheckoutService) Submit(_ context.Context, ownerKey string, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	s.gotOwner = ownerKey
	s.gotInput = input
	return s.result, s.err
}

const checkoutBody = `{
	"storeSlug": "acme",
	"shippingName": "Ana Pérez",
	"shippingPhone": "+57 300 000 0000",
	"shippingAddress": "Calle 10 #5-51",
	"shippingCity": "Bogotá",
	"shippingCountry": "CO"
}`

func TestCheckoutSubmitCreated(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		OrderNumber: "ORD-1",
		RedirectURL: "/client/orders?order=ORD-1",
	}}
	handler := CheckoutSubmit(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/checkout", checkoutBody))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotOwner != "visitor-1" {
		t.Fatalf("unexpected owner %q", svc.gotOwner)
	}
	if svc.gotInput.StoreSlug != "acme" {
		t.Fatalf("unexpected store slug %q", svc.gotInput.StoreSlug)
	}

	var envelope struct {
		Data checkoutsvc.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RedirectURL != "/client/orders?order=ORD-1" {
		t.Fatalf("unexpected redirect %q", envelope.Data.RedirectURL)
	}
}

func TestCheckoutSubmitMissingFields(t *testing.T) {
	handler := CheckoutSubmit(&stubCheckoutService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/checkout", `{"storeSlug":"acme"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSubmitSurfacesBackendRejection(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "Stock insuficiente")}
	handler := CheckoutSubmit(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/checkout", checkoutBody))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "Stock insuficiente" {
		t.Fatalf("expected backend message verbatim, got %q", envelope.Error.Message)
	}
}
