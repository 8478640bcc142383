package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/sethvargo/go-retry"
)

const requestTimeout = 12 * time.Second

// HTTPClient implements Client against the NewsMarks REST API. It carries an
// access/refresh token pair; when a call fails with 401 "token expired" the
// pair is refreshed and the call replayed once.
type HTTPClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

// NewHighlightClient returns an HTTPClient for the given base URL
// (e.g. "http://127.0.0.1:8080").
func NewHighlightClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type apiError struct {
	Error string `json:"error"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// do performs one JSON request with transient-network retry, the expired
// token refresh-and-replay, and status-to-sentinel error mapping. out may
// be nil for calls with no response body of interest.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	err := c.doOnce(ctx, method, path, body, out)
	if err == nil {
		return nil
	}

	if errors.Is(err, common.ErrTokenExpired) && c.refreshToken != "" {
		if rerr := c.refresh(ctx); rerr != nil {
			return rerr
		}
		return c.doOnce(ctx, method, path, body, out)
	}
	return err
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.accessToken != "" {
			req.Header.Set(common.AccessTokenHeaderName, c.accessToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Network-level failures are worth another attempt.
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return mapStatus(resp)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}

// mapStatus converts an error response to a sentinel the caller can match
// with errors.Is.
func mapStatus(resp *http.Response) error {
	var apiErr apiError
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &apiErr)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if apiErr.Error == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		if apiErr.Error != "" {
			return fmt.Errorf("%w: %s", common.ErrorInternal, apiErr.Error)
		}
		return fmt.Errorf("%w: status %d", common.ErrorInternal, resp.StatusCode)
	}
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	var tokens tokenPair
	body := map[string]string{"refresh_token": c.refreshToken}
	if err := c.doOnce(ctx, http.MethodPost, "/api/v1/users/refresh", body, &tokens); err != nil {
		return err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username string, password []byte) error {
	return c.do(ctx, http.MethodPost, "/api/v1/users/register",
		credentials{Username: username, Password: string(password)}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) error {
	var tokens tokenPair
	err := c.do(ctx, http.MethodPost, "/api/v1/users/login",
		credentials{Username: username, Password: string(password)}, &tokens)
	if err != nil {
		return err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil, &status); err != nil {
		return err
	}
	if status.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) CreateHighlight(ctx context.Context, h highlight.Highlight) (*highlight.Highlight, error) {
	var created highlight.Highlight
	if err := c.do(ctx, http.MethodPost, "/api/v1/highlights", h, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) ListHighlights(ctx context.Context, articleURL string) ([]highlight.Highlight, error) {
	path := "/api/v1/highlights?article_url=" + url.QueryEscape(articleURL)
	var out []highlight.Highlight
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListAllHighlights(ctx context.Context) ([]highlight.Highlight, error) {
	var out []highlight.Highlight
	if err := c.do(ctx, http.MethodGet, "/api/v1/highlights/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateHighlight(ctx context.Context, id int64, upd HighlightUpdate) (*highlight.Highlight, error) {
	var updated highlight.Highlight
	path := fmt.Sprintf("/api/v1/highlights/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, upd, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeleteHighlight(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/highlights/%d", id), nil, nil)
}

// Close releases the transport's idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
