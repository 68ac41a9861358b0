package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sessionsvc "github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/backend"
	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

type stubAuthGateway struct {
	login *backend.LoginResponse
	err   error
}

func (s stubAuthGateway) Login(context.Context, backend.Credentials) (*backend.LoginResponse, error) {
	return s.login, s.err
}

func newSessions(t *testing.T) sessionsvc.Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard})
	svc, err := sessionsvc.NewService(sessionsvc.NewMemoryStore(), config.SessionConfig{CookieName: "access_token"}, logg)
	if err != nil {
		t.Fatalf("session service: %v", err)
	}
	return svc
}

func TestAuthLoginEstablishesSession(t *testing.T) {
	sessions := newSessions(t)
	gateway := stubAuthGateway{login: &backend.LoginResponse{
		AccessToken: "tok-1",
		User:        backend.AuthUser{ID: 7, Email: "ana@example.com", Role: "CLIENT"},
	}}
	handler := AuthLogin(gateway, sessions, nil)

	body := `{"email":"ana@example.com","password":"secret"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/auth/login", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	found := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "access_token" && cookie.Value == "tok-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected access_token cookie to be set")
	}

	var envelope struct {
		Data backend.AuthUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", envelope.Data)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	gateway := stubAuthGateway{err: &backend.APIError{Status: http.StatusUnauthorized, Method: "POST", Path: "/auth/login", Message: "invalid credentials"}}
	handler := AuthLogin(gateway, newSessions(t), nil)

	body := `{"email":"ana@example.com","password":"wrong"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/auth/login", body))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginValidatesEmail(t *testing.T) {
	handler := AuthLogin(stubAuthGateway{}, newSessions(t), nil)

	body := `{"email":"not-an-email","password":"secret"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/auth/login", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLogoutExpiresCookie(t *testing.T) {
	handler := AuthLogout(newSessions(t), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodPost, "/api/v1/auth/logout", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expired cookie, got %+v", cookies)
	}
}

func TestAuthMeAnonymous(t *testing.T) {
	handler := AuthMe(newSessions(t), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, visitorRequest(http.MethodGet, "/api/v1/auth/me", ""))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
