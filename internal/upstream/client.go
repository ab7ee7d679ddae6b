// Package upstream holds one adapter per external public API. Each adapter
// issues a single request per call (Kalshi follows a bounded number of
// listing pages), maps vendor fields onto the canonical
// records in internal/models and reports failures as *Error. Adapters never
// retry; retry policy belongs to the caller.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	userAgent       = "civic-radar/1.0 (+https://github.com/DeafMist/civic-radar)"
	maxBodyBytes    = 16 << 20
	maxErrorMessage = 512
)

// Client is the HTTP plumbing shared by all adapters.
type Client struct {
	http *http.Client
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewClientWithHTTP wraps an existing http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Request describes one upstream GET.
type Request struct {
	Source  string
	URL     string
	Query   url.Values
	Headers map[string]string
	Accept  string
	// Timeout, when set, bounds this request below the client timeout.
	Timeout time.Duration
}

// GetBytes performs the request and returns the raw body of a 2xx response.
func (c *Client) GetBytes(ctx context.Context, req Request) ([]byte, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, transportError(req.Source, "build request", withoutURL(err))
	}
	httpReq.Header.Set("User-Agent", userAgent)
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(req.Source, "request failed", withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorMessage))
		return nil, statusError(req.Source, resp.StatusCode, req.redact(strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(req.Source, "read body", err)
	}
	return body, nil
}

// GetJSON performs the request and parses a JSON body.
func (c *Client) GetJSON(ctx context.Context, req Request) (gjson.Result, error) {
	body, err := c.GetBytes(ctx, req)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, transportError(req.Source, "decode response", fmt.Errorf("invalid JSON body"))
	}
	return gjson.ParseBytes(body), nil
}

// secretParams are query parameters that carry credentials.
var secretParams = []string{"api_key", "key", "token"}

// redact removes credential values from text an upstream echoed back.
func (req Request) redact(text string) string {
	for _, name := range secretParams {
		if v := req.Query.Get(name); v != "" {
			text = strings.ReplaceAll(text, v, "[redacted]")
		}
	}
	for _, v := range req.Headers {
		if v != "" {
			text = strings.ReplaceAll(text, v, "[redacted]")
		}
	}
	return text
}

// withoutURL drops the request URL from net/http errors. Some upstreams take
// their API key as a query parameter, and error text reaches clients and logs.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func clamp(v, fallback, max int) int {
	if v <= 0 {
		return fallback
	}
	if v > max {
		return max
	}
	return v
}
