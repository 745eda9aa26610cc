// Package authstore fetches the authenticated user record for an access token.
package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/roomlobby/internal/model"
)

// UserPath is the endpoint returning the current user
const UserPath = "/api/v1/users/me"

// ErrNoAccessToken is returned when FetchUser is called without a token
var ErrNoAccessToken = errors.New("no access token")

// APIError is an error response from the auth service
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unauthorized reports whether the token was refused
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

type errorResponse struct {
	Error APIError `json:"error"`
}

type userResponse struct {
	DisplayName string `json:"displayName"`
	Rating      int    `json:"rating"`
}

// Client is an HTTP client for the auth service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new auth client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchUser returns the user the access token belongs to
func (c *Client) FetchUser(ctx context.Context, token model.AccessToken) (*model.AuthenticatedUser, error) {
	if token == "" {
		return nil, ErrNoAccessToken
	}

	var resp userResponse
	if err := c.do(ctx, http.MethodGet, UserPath, string(token), &resp); err != nil {
		return nil, err
	}
	return &model.AuthenticatedUser{DisplayName: resp.DisplayName, Rating: resp.Rating}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.StatusCode = resp.StatusCode
			return &errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
