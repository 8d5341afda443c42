// internal/common/http/client.go
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client is a cookie-keeping HTTP client, so a sequence of calls shares one visitor
// session.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// WithoutRedirects makes the client return 3xx responses instead of following them.
func (c *Client) WithoutRedirects() *Client {
	c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *Client) PostForm(ctx context.Context, path string, values url.Values) (*http.Response, error) {
	return c.post(ctx, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

func (c *Client) PostJSON(ctx context.Context, path, body string) (*http.Response, error) {
	return c.post(ctx, path, "application/json", strings.NewReader(body))
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}
