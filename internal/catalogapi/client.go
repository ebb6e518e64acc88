// Package catalogapi is the HTTP client of the catalog API consumed by the
// dashboard.
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	apiKeyHeader = "X-API-Key"
	actorHeader  = "X-Actor"
)

// Client talks to the catalog API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sends the given API key on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient constructs a new client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type actorKey struct{}

// WithActor tags outgoing mutations with the operator performing them.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by WithActor.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSuppliers returns every supplier.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	if err := c.do(ctx, http.MethodGet, "/suppliers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts returns a filtered page of products.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.CategoryID > 0 {
		values.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.SupplierID > 0 {
		values.Set("supplierId", strconv.FormatInt(q.SupplierID, 10))
	}
	if q.Discontinued != nil {
		values.Set("discontinued", strconv.FormatBool(*q.Discontinued))
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Dir != "" {
		values.Set("dir", q.Dir)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	switch {
	case q.All:
		values.Set("limit", "0")
	case q.Limit > 0:
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/products"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return ProductPage{}, err
	}
	return out, nil
}

// GetProduct fetches one product; a missing product yields ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// AddProduct creates a product and returns it with the assigned id.
func (c *Client) AddProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = 0
	var out Product
	err := c.do(ctx, http.MethodPost, "/products", p, &out)
	return out, err
}

// UpdateProduct replaces the product identified by p.ID.
func (c *Client) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodPut, "/products/"+strconv.FormatInt(p.ID, 10), p, &out)
	return out, err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("catalogapi: encode %s %s: %w", method, path, err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(apiKeyHeader, c.token)
	}
	if actor := ActorFromContext(ctx); actor != "" {
		req.Header.Set(actorHeader, actor)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalogapi: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return decodeProblem(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalogapi: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeProblem(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	var problem struct {
		Title  string            `json:"title"`
		Detail string            `json:"detail"`
		Errors map[string]string `json:"errors"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(data) > 0 && json.Unmarshal(data, &problem) == nil {
		if problem.Title != "" {
			apiErr.Title = problem.Title
		}
		apiErr.Detail = problem.Detail
		apiErr.Fields = problem.Errors
	}
	return apiErr
}
