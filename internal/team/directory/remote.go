package directory

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
)

// RemoteClient talks to the platform's user-directory service over HTTP.
// All calls carry the service token; ResolveToken additionally forwards the
// end-user credential for the directory to verify.
type RemoteClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ServiceToken authenticates this service to the directory.
	ServiceToken string
}

// NewRemoteClient creates a directory client with sane timeouts.
func NewRemoteClient(baseURL, serviceToken string) *RemoteClient {
	return &RemoteClient{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		ServiceToken: serviceToken,
	}
}

var _ Directory = (*RemoteClient)(nil)

func (c *RemoteClient) ResolveToken(ctx context.Context, token string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/v1/users/resolve", nil, &user, map[string]string{
		"X-Subject-Token": token,
	})
	return user, err
}

func (c *RemoteClient) LookupByEmail(ctx context.Context, email string) (User, error) {
	var user User
	path := "/v1/users/by-email?email=" + url.QueryEscape(strings.ToLower(email))
	err := c.do(ctx, http.MethodGet, path, nil, &user, nil)
	return user, err
}

func (c *RemoteClient) CreateAccount(ctx context.Context, email, password string) (User, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: strings.ToLower(email), Password: password}

	var user User
	err := c.do(ctx, http.MethodPost, "/v1/users", payload, &user, nil)
	return user, err
}

func (c *RemoteClient) GetProfile(ctx context.Context, userID string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID), nil, &user, nil)
	return user, err
}

// do performs one JSON request/response round trip and maps the directory's
// error statuses onto this package's sentinel errors.
func (c *RemoteClient) do(
	ctx context.Context,
	method, path string,
	payload any,
	out any,
	headers map[string]string,
) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("directory: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ServiceToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("directory: decode response: %w", err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidToken
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	default:
		return fmt.Errorf("directory: unexpected status %d from %s %s", resp.StatusCode, method, path)
	}
}
