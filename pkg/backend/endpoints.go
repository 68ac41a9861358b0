package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetStore fetches one active store by slug.
func (c *Client) GetStore(ctx context.Context, slug string) (*Store, error) {
	var store Store
	if err := c.do(ctx, http.MethodGet, "/marketplace/stores/"+url.PathEscape(slug), "/marketplace/stores/{slug}", nil, nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// ListProducts browses a store's catalog with search, sort and pagination.
func (c *Client) ListProducts(ctx context.Context, slug string, params ListProductsParams) (*ProductPage, error) {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/marketplace/stores/%s/products", url.PathEscape(slug)), "/marketplace/stores/{slug}/products", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches a single product within a store.
func (c *Client) GetProduct(ctx context.Context, slug string, productID int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/marketplace/stores/%s/products/%d", url.PathEscape(slug), productID)
	if err := c.do(ctx, http.MethodGet, path, "/marketplace/stores/{slug}/products/{productID}", nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateOrder submits an order for one store. Error responses come back as
// *APIError so the caller can surface the backend's message unchanged.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", "/orders", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder fetches the confirmation view of a placed order.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*OrderDetail, error) {
	query := url.Values{}
	query.Set("order", orderNumber)

	var detail OrderDetail
	if err := c.do(ctx, http.MethodGet, "/orders", "/orders", query, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Login exchanges credentials for a bearer token and user profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping probes the backend's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "/health", nil, nil, nil)
}
