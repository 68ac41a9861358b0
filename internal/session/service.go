package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiendazo/storefront-backend/pkg/backend"
	"github.com/tiendazo/storefront-backend/pkg/config"
	apperrors "github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
)

const (
	fieldAccessToken = "access_token"
	fieldUser        = "user"
)

// Service owns the server-side session mirror: the bearer token and the
// authenticated user profile, keyed by the visitor session id. It also
// maintains the access_token cookie the browser carries.
//
// Service satisfies backend.TokenSource, so the API client can read and
// rotate tokens without knowing about cookies or redis.
type Service interface {
	backend.TokenSource
	Establish(ctx context.Context, w http.ResponseWriter, login *backend.LoginResponse) error
	Clear(ctx context.Context, w http.ResponseWriter) error
	User(ctx context.Context) (*backend.AuthUser, error)
}

type service struct {
	store Store
	cfg   config.SessionConfig
	logg  *logger.Logger
	nowFn func() time.Time
}

// NewService wires the session service. All dependencies are required.
func NewService(store Store, cfg config.SessionConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if logg == nil {
		return nil, errors.New("session: logger is required")
	}
	return &service{store: store, cfg: cfg, logg: logg, nowFn: time.Now}, nil
}

func (s *service) Establish(ctx context.Context, w http.ResponseWriter, login *backend.LoginResponse) error {
	sid := IDFromContext(ctx)
	if sid == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "no visitor session")
	}
	if login == nil || login.AccessToken == "" {
		return apperrors.New(apperrors.CodeValidation, "login response is missing a token")
	}

	ttl := s.tokenTTL(login.AccessToken)
	if err := s.store.SetField(ctx, sid, fieldAccessToken, login.AccessToken, ttl); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to persist access token")
	}

	profile, err := json.Marshal(login.User)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to encode user profile")
	}
	if err := s.store.SetField(ctx, sid, fieldUser, string(profile), ttl); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to persist user profile")
	}

	s.writeCookie(w, login.AccessToken, ttl)
	return nil
}

func (s *service) Clear(ctx context.Context, w http.ResponseWriter) error {
	sid := IDFromContext(ctx)
	if sid != "" {
		if err := s.store.DeleteFields(ctx, sid, fieldAccessToken, fieldUser); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "failed to clear session")
		}
	}
	s.writeCookie(w, "", -time.Hour)
	return nil
}

func (s *service) User(ctx context.Context) (*backend.AuthUser, error) {
	sid := IDFromContext(ctx)
	if sid == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "no visitor session")
	}
	raw, err := s.store.GetField(ctx, sid, fieldUser)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not signed in")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load user profile")
	}
	var user backend.AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "stored user profile is corrupt")
	}
	return &user, nil
}

// AccessToken returns the stored bearer token, or "" when the visitor is
// anonymous. Missing tokens are not an error: anonymous browsing is the
// default state.
func (s *service) AccessToken(ctx context.Context) (string, error) {
	sid := IDFromContext(ctx)
	if sid == "" {
		return "", nil
	}
	token, err := s.store.GetField(ctx, sid, fieldAccessToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// SetAccessToken stores a rotated token under the current session. The
// browser cookie catches up on the next authenticated response.
func (s *service) SetAccessToken(ctx context.Context, token string) error {
	sid := IDFromContext(ctx)
	if sid == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "no visitor session")
	}
	return s.store.SetField(ctx, sid, fieldAccessToken, token, s.tokenTTL(token))
}

func (s *service) writeCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	if w == nil {
		return
	}
	cookie := &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   int(ttl / time.Second),
		Secure:   s.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl <= 0 {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

// tokenTTL clamps the session TTL to the token's own exp claim when the
// token carries one. The signature is not verified here; the backend is the
// authority and this peek only sizes the TTL.
func (s *service) tokenTTL(token string) time.Duration {
	ttl := s.cfg.CookieTTL
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ttl
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ttl
	}
	if remaining := exp.Sub(s.nowFn()); remaining > 0 && remaining < ttl {
		return remaining
	}
	return ttl
}
