package pnpsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Client talks to the personnel API as one browser would. It is safe for
// concurrent use, but concurrent logins on one Client share a cookie jar.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client with its own cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Do sends body as JSON to path and decodes a response with status expected
// into out. out may be nil for empty responses.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, expected int) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expected {
		return parseErrorResponse(resp, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login submits credentials. The returned state is authenticated or
// otp_required.
func (c *Client) Login(ctx context.Context, username, password string) (*SessionResponse, error) {
	var out SessionResponse
	err := c.Do(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{Username: username, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, code string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/auth/otp/verify", VerifyOTPRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOTP(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/auth/otp/resend", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Session(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.Do(ctx, http.MethodGet, "/v1/auth/session", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, http.StatusNoContent)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/auth/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Notifications(ctx context.Context, page int) (*Inbox, error) {
	var out Inbox
	path := fmt.Sprintf("/v1/notifications?page=%d", page)
	if err := c.Do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.Do(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.Do(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
