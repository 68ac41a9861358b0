package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/metrics"
)

type stubTokens struct {
	mu    sync.Mutex
	token string
}

func (s *stubTokens) AccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *stubTokens) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()

	cfg := &config.Config{}
	cfg.Backend.BaseURL = baseURL
	cfg.Backend.RequestTimeout = 5 * time.Second
	cfg.Checkout.FallbackMessage = "No pudimos procesar tu pedido. Intenta nuevamente."

	logg := logger.New(logger.Options{ServiceName: "backend-test", Output: io.Discard})
	client, err := New(cfg, tokens, nil, logg)
	require.NoError(t, err)
	return client
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Store{ID: 1, Slug: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &stubTokens{token: "tok-1"})
	store, err := client.GetStore(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "acme", store.Slug)
}

func TestClientAnonymousWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Store{ID: 1, Slug: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &stubTokens{})
	_, err := client.GetStore(context.Background(), "acme")

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientRefreshesOn401AndRetriesOnce(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/refresh":
			refreshes.Add(1)
			json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "tok-fresh"})
		case r.Header.Get("Authorization") == "Bearer tok-fresh":
			json.NewEncoder(w).Encode(Store{ID: 1, Slug: "acme", Name: "Acme"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
		}
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-stale"}
	client := newTestClient(t, srv.URL, tokens)

	store, err := client.GetStore(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "acme", store.Slug)
	assert.Equal(t, int32(1), refreshes.Load())

	persisted, err := tokens.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", persisted)
}

func TestClientReturnsOriginalErrorWhenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"message": "refresh rejected"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-stale"}
	client := newTestClient(t, srv.URL, tokens)

	_, err := client.GetStore(context.Background(), "acme")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "token expired", apiErr.Message)

	// The stale token stays put when the refresh is rejected.
	persisted, perr := tokens.AccessToken(context.Background())
	require.NoError(t, perr)
	assert.Equal(t, "tok-stale", persisted)
}

func TestClientSingleFlightsConcurrentRefreshes(t *testing.T) {
	var refreshes atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/refresh":
			refreshes.Add(1)
			<-release
			json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "tok-fresh"})
		case r.Header.Get("Authorization") == "Bearer tok-fresh":
			json.NewEncoder(w).Encode(Store{ID: 1, Slug: "acme", Name: "Acme"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
		}
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-stale"}
	client := newTestClient(t, srv.URL, tokens)

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.GetStore(context.Background(), "acme")
		}(i)
	}

	// Let every caller hit the 401 and pile onto the refresh before it
	// completes.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
	}
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestClientLabelsUpstreamMetricsByRouteTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Product{ID: 42, Name: "Widget"})
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.RequestTimeout = 5 * time.Second

	registry := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "backend-test", Output: io.Discard})
	client, err := New(cfg, &stubTokens{}, metrics.NewStorefrontMetrics(registry), logg)
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "acme", 42)
	require.NoError(t, err)

	mfs, err := registry.Gather()
	require.NoError(t, err)

	labels := map[string]bool{}
	for _, mf := range mfs {
		if mf.GetName() != "upstream_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "endpoint" {
					labels[label.GetValue()] = true
				}
			}
		}
	}

	// The concrete slug and product id never reach the label set.
	assert.True(t, labels["GET /marketplace/stores/{slug}/products/{productID}"], "labels: %v", labels)
	assert.False(t, labels["GET /marketplace/stores/acme/products/42"], "labels: %v", labels)
}

func TestClientSurfacesBackendMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Stock insuficiente"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &stubTokens{})
	_, err := client.CreateOrder(context.Background(), OrderRequest{StoreID: 1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Stock insuficiente", apiErr.UpstreamMessage())
	assert.Equal(t, "POST /orders", apiErr.Endpoint())
}

func TestClientFallsBackWhenErrorBodyIsOpaque(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &stubTokens{})
	_, err := client.CreateOrder(context.Background(), OrderRequest{StoreID: 1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No pudimos procesar tu pedido. Intenta nuevamente.", apiErr.UpstreamMessage())
}
