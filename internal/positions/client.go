package positions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/urls"
	"github.com/muurk/positions/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 8 << 20
)

// Client is an HTTP client for the document positions backend.
//
// The client never retries: a failed call is reported once and the caller
// decides what to do (the grid surfaces a notice and waits for the user).
type Client struct {
	// Endpoints builds the absolute URL of every route
	Endpoints urls.Endpoints

	// Username and Password enable HTTP Basic Auth when Username is non-empty
	Username string
	Password string

	// HTTPClient is the underlying HTTP client. It carries a cookie jar so a
	// session cookie issued by the backend is replayed on later calls.
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string
}

// NewClient creates a client for the backend at baseURL (e.g. "http://erp.local:8080").
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		Endpoints:  urls.New(baseURL),
		HTTPClient: &http.Client{Timeout: DefaultTimeout, Jar: jar},
		UserAgent:  version.UserAgent(),
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetAuth sets HTTP Basic Auth credentials
func (c *Client) SetAuth(username, password string) {
	c.Username = username
	c.Password = password
}

// do performs one request and returns the response body of a 2xx response.
// Non-2xx responses are converted with ErrorFromResponse.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	logging.LogRequest(method, rawURL)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewNetworkError(fmt.Sprintf("%s request canceled", method), ctx.Err())
		}
		return nil, NewNetworkError(fmt.Sprintf("%s request failed", method), err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogResponse(method, rawURL, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrorFromResponse(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	data, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewParseError(fmt.Sprintf("failed to parse response from %s", rawURL), err)
	}
	return nil
}

// DisplaySettings fetches the grid display settings.
func (c *Client) DisplaySettings(ctx context.Context) (DisplaySettings, error) {
	var settings DisplaySettings
	err := c.getJSON(ctx, c.Endpoints.GridConfig(), &settings)
	return settings, err
}

// Units fetches the unit vocabulary in server order.
func (c *Client) Units(ctx context.Context) ([]Option, error) {
	var options []Option
	err := c.getJSON(ctx, c.Endpoints.Units(), &options)
	return options, err
}

// PalletTypes fetches the pallet type vocabulary in server order.
func (c *Client) PalletTypes(ctx context.Context) ([]Option, error) {
	var options []Option
	err := c.getJSON(ctx, c.Endpoints.TypeOfPallets(), &options)
	return options, err
}

// ListRows fetches one page of rows for a document.
func (c *Client) ListRows(ctx context.Context, formID string, req PageRequest) (*Page, error) {
	var page Page
	rawURL := urls.WithQuery(c.Endpoints.DocumentRows(formID), req.Values())
	if err := c.getJSON(ctx, rawURL, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateRow sends an edited row: PUT .../documentPositions/{id}.html.
func (c *Client) UpdateRow(ctx context.Context, id string, body []byte) error {
	_, err := c.do(ctx, http.MethodPut, c.Endpoints.Position(id), body)
	return err
}

// CreateRow sends a new row: PUT .../documentPositions.html.
func (c *Client) CreateRow(ctx context.Context, body []byte) error {
	_, err := c.do(ctx, http.MethodPut, c.Endpoints.Positions(), body)
	return err
}

// DeleteRow removes a row: DELETE .../documentPositions/{id}.html with no body.
func (c *Client) DeleteRow(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.Endpoints.Position(id), nil)
	return err
}

// Search runs a lookup search against endpoint with the typed text as the
// "query" parameter.
func (c *Client) Search(ctx context.Context, endpoint, query string) ([]Candidate, error) {
	var candidates []Candidate
	rawURL := urls.WithQuery(endpoint, url.Values{"query": {query}})
	if err := c.getJSON(ctx, rawURL, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// ProductUnit fetches the unit of a product. The backend answers with a bare
// string; a JSON-quoted string is accepted too.
func (c *Client) ProductUnit(ctx context.Context, product string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, c.Endpoints.ProductUnit(product), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, `"`) {
		var unit string
		if err := json.Unmarshal([]byte(text), &unit); err != nil {
			return "", NewParseError("failed to parse product unit", err)
		}
		return unit, nil
	}
	return text, nil
}
