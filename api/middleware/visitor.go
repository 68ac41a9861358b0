package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

// Visitor guarantees every request carries a visitor id. The id lives in a
// long-lived cookie and doubles as the cart owner key and the session key,
// so every tab of the same browser sees the same cart. First-time visitors
// get a fresh uuid minted on the way in; the handler already sees it in the
// request context.
func Visitor(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""
			if cookie, err := r.Cookie(cfg.CartCookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					visitorID = cookie.Value
				}
			}
			if visitorID == "" {
				visitorID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CartCookieName,
					Value:    visitorID,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					MaxAge:   int(cfg.CookieTTL / time.Second),
					Secure:   cfg.CookieSecure,
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
				})
			}

			ctx := session.WithID(r.Context(), visitorID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, visitorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
