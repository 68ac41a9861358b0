package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/tiendazo/storefront-backend/api/responses"
	"github.com/tiendazo/storefront-backend/api/validators"
	sessionsvc "github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/backend"
	pkgerrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

// AuthGateway is the slice of the backend client the auth surface needs.
type AuthGateway interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResponse, error)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin proxies credentials to the backend and mirrors the issued token
// and user profile into the visitor's session.
func AuthLogin(gateway AuthGateway, sessions sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := gateway.Login(r.Context(), backend.Credentials{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, translateLoginError(err))
			return
		}

		if err := sessions.Establish(r.Context(), w, login); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, login.User)
	}
}

// AuthLogout clears the session mirror and expires the token cookie.
func AuthLogout(sessions sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Clear(r.Context(), w); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// AuthMe returns the signed-in user mirrored in the session.
func AuthMe(sessions sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessions.User(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func translateLoginError(err error) error {
	var apiErr *backend.APIError
	if pkgerrors.As(err) == nil && errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "correo o contraseña incorrectos")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "no pudimos iniciar sesión, intenta nuevamente")
	}
	return err
}
