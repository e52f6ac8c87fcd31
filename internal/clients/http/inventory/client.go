package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

var (
	ErrNotFound         = errors.New("inventory: not found")
	ErrBadRequest       = errors.New("inventory: bad request")
	ErrUnauthorized     = errors.New("inventory: unauthorized")
	ErrUnexpectedStatus = errors.New("inventory: unexpected status")
)

// StatusError describes a non-2xx response. It unwraps to one of the
// package sentinels so callers can classify it with errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
	kind       error
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.StatusCode, body)
}

func (e *StatusError) Unwrap() error { return e.kind }

// RequestEditorFn mutates outbound requests, typically to attach credentials.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// WithBearerToken forwards a caller's token. An empty token adds nothing.
func WithBearerToken(token string) RequestEditorFn {
	return func(_ context.Context, req *http.Request) error {
		if strings.TrimSpace(token) != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// CheckParams are the query parameters of the availability check.
type CheckParams struct {
	SKU      string
	Quantity int32
}

// DeductParams are the query parameters of a stock deduction.
type DeductParams struct {
	SKUCode  string
	Quantity int32
}

// Client calls the inventory authority's HTTP API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient instantiates the inventory client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("inventory base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse inventory base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// CheckAvailability asks whether quantity units of a SKU can be supplied.
// GET /api/v1/inventory/check?sku=&qty=
func (c *Client) CheckAvailability(ctx context.Context, params CheckParams, reqEditors ...RequestEditorFn) (bool, error) {
	query := url.Values{}
	if err := addQueryParam(query, "sku", params.SKU); err != nil {
		return false, err
	}
	if err := addQueryParam(query, "qty", params.Quantity); err != nil {
		return false, err
	}
	resp, err := c.do(ctx, http.MethodGet, "check", query, reqEditors)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var available bool
	if err := json.NewDecoder(resp.Body).Decode(&available); err != nil {
		return false, fmt.Errorf("decode availability response: %w", err)
	}
	return available, nil
}

// Deduct removes quantity units of a SKU from stock.
// POST /api/v1/inventory/deduct?skuCode=&qty=
func (c *Client) Deduct(ctx context.Context, params DeductParams, reqEditors ...RequestEditorFn) error {
	query := url.Values{}
	if err := addQueryParam(query, "skuCode", params.SKUCode); err != nil {
		return err
	}
	if err := addQueryParam(query, "qty", params.Quantity); err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "deduct", query, reqEditors)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, operation string, query url.Values, reqEditors []RequestEditorFn) (*http.Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("inventory client not configured")
	}
	target := c.baseURL.JoinPath("api", "v1", "inventory", operation)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for _, edit := range reqEditors {
		if edit == nil {
			continue
		}
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body), kind: classifyStatus(resp.StatusCode)}
}

func classifyStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrUnexpectedStatus
	}
}

// addQueryParam styles a single form-exploded query parameter.
func addQueryParam(values url.Values, name string, value any) error {
	fragment, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("style %s parameter: %w", name, err)
	}
	parsed, err := url.ParseQuery(fragment)
	if err != nil {
		return fmt.Errorf("parse %s parameter: %w", name, err)
	}
	for key, vals := range parsed {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	return nil
}
