package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/errors"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/metrics"
)

// TokenSource provides the bearer token for outgoing requests and accepts
// rotated tokens after a refresh. internal/session implements it against
// redis-backed session storage.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
}

// Doer lets tests swap the underlying HTTP transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the upstream commerce API. All requests attach the current
// bearer token when one exists; a 401 response triggers exactly one token
// refresh (deduplicated across concurrent callers) followed by a single
// retry of the original request.
type Client struct {
	baseURL  string
	http     Doer
	tokens   TokenSource
	fallback string
	refresh  singleflight.Group
	metrics  *metrics.StorefrontMetrics
	logg     *logger.Logger
}

// New builds a backend client from config. tokens may be nil for anonymous
// surfaces; metrics may be nil in tests.
func New(cfg *config.Config, tokens TokenSource, m *metrics.StorefrontMetrics, logg *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backend: config is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("backend: logger is required")
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.Backend.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Backend.RequestTimeout},
		tokens:   tokens,
		fallback: cfg.Checkout.FallbackMessage,
		metrics:  m,
		logg:     logg,
	}, nil
}

// WithHTTP replaces the transport. Test hook.
func (c *Client) WithHTTP(d Doer) *Client {
	c.http = d
	return c
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// route is the endpoint's path template ("/marketplace/stores/{slug}"); it
// keeps the latency metric's label set bounded while path carries the real
// request target.
func (c *Client) do(ctx context.Context, method, path, route string, query url.Values, body, out any) error {
	token := ""
	if c.tokens != nil {
		t, err := c.tokens.AccessToken(ctx)
		if err != nil {
			c.logg.Warn(ctx, "token lookup failed, sending anonymous request")
		} else {
			token = t
		}
	}

	err := c.doOnce(ctx, method, path, route, query, body, token, out)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusUnauthorized || token == "" || c.tokens == nil {
		return err
	}

	// One refresh per token value regardless of how many requests hit the
	// 401 at the same time.
	fresh, refreshErr, _ := c.refresh.Do(token, func() (any, error) {
		return c.refreshToken(ctx, token)
	})
	if refreshErr != nil {
		c.logg.Error(ctx, "token refresh failed", refreshErr)
		return err
	}
	return c.doOnce(ctx, method, path, route, query, body, fresh.(string), out)
}

func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	var resp RefreshResponse
	if err := c.doOnce(ctx, http.MethodPost, "/auth/refresh", "/auth/refresh", nil, nil, stale, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("backend: refresh returned an empty token")
	}
	if err := c.tokens.SetAccessToken(ctx, resp.AccessToken); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) doOnce(ctx context.Context, method, path, route string, query url.Values, body any, token string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to encode request body")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveUpstream(method+" "+route, time.Since(start))
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "commerce backend is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, method, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "failed to decode upstream response")
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, method, path string) error {
	apiErr := &APIError{
		Status:   resp.StatusCode,
		Method:   method,
		Path:     path,
		Fallback: c.fallback,
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil {
			if body.Message != "" {
				apiErr.Message = body.Message
			} else if body.Error != "" {
				apiErr.Message = body.Error
			}
		}
	}
	return apiErr
}
