package iam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrTokenRejected means the issuer answered and said the token is not valid.
	ErrTokenRejected    = errors.New("iam: token rejected")
	ErrUnexpectedStatus = errors.New("iam: unexpected status")
)

// ValidationResult is the issuer's verdict on a token.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Client calls the credential issuer.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient instantiates the issuer client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("iam base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse iam base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// Validate posts the raw token to /api/v1/auth/validate.
func (c *Client) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	resp, err := c.post(ctx, "validate", "text/plain", strings.NewReader(token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &ValidationResult{Valid: false}, nil
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read validation response: %w", err)
	}
	// A bare 2xx is a valid verdict without a subject.
	if len(bytes.TrimSpace(body)) == 0 {
		return &ValidationResult{Valid: true}, nil
	}
	var result ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode validation response: %w", err)
	}
	return &result, nil
}

// ValidateToken returns the subject of a valid token or ErrTokenRejected.
func (c *Client) ValidateToken(ctx context.Context, token string) (string, error) {
	result, err := c.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	if !result.Valid {
		return "", ErrTokenRejected
	}
	return result.Subject, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	resp, err := c.post(ctx, "login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrTokenRejected
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return body.Token, nil
}

func (c *Client) post(ctx context.Context, operation, contentType string, body io.Reader) (*http.Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("iam client not configured")
	}
	target := c.baseURL.JoinPath("api", "v1", "auth", operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call iam API: %w", err)
	}
	return resp, nil
}
