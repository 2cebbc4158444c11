// Package httplist speaks the list endpoint contract over HTTP.
//
// Client side, List turns a base URL and a path into a listing.ListFunc:
//
//	client := httplist.New(httplist.DefaultConfig("https://api.example.id"),
//		httplist.WithHeader("Authorization", "Bearer "+token))
//	list := httplist.List[News](client, "/berita")
//	res, err := list(ctx, state.Query()) // GET /berita?page=1&limit=10
//
// Server side, Handler serves a listing.Lister with the same envelope:
//
//	{"data": [...], "meta": {"total": 25, "per_page": 10, ...}}
package httplist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"go.uber.org/zap"

	"github.com/nrfta/listing-go"
)

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the default number of retries after the first attempt.
	DefaultRetries = 3
	// DefaultRetryWait is the default wait between attempts.
	DefaultRetryWait = 1 * time.Second

	maxErrorBody = 4 << 10
)

// Config holds the transport settings of a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

// DefaultConfig returns a Config for baseURL with default timeout and retries.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		RetryWait: DefaultRetryWait,
	}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHeader sets a header on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHTTPClient replaces the underlying *http.Client. Config.Timeout is
// then ignored.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger sets the logger. Default: zap.NewNop().
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues GET requests against list endpoints, retrying transport
// errors and 5xx responses. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	headers http.Header
	logger  *zap.Logger
}

// New creates a Client.
func New(cfg Config, opts ...ClientOption) *Client {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		headers: http.Header{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for a non-2xx response that is not retried, or
// still failing after the last retry.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := "list endpoint responded " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// List returns a ListFunc fetching path relative to the client base URL.
// The query travels as URL parameters, see listing.Query.Values.
func List[T any](c *Client, path string) listing.ListFunc[T] {
	return func(ctx context.Context, q listing.Query) (*listing.Result[T], error) {
		var res listing.Result[T]
		if err := c.Get(ctx, path, q.Values(), &res); err != nil {
			return nil, err
		}
		return &res, nil
	}
}

// Get fetches path with params and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := c.endpoint(path, params)
	if err != nil {
		return err
	}

	body, err := c.do(ctx, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode list response from %s", path)
	}
	return nil
}

func (c *Client) endpoint(path string, params url.Values) (string, error) {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	u, err := url.Parse(base + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", errors.Wrapf(err, "invalid list endpoint %q", path)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying list request",
				zap.String("url", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))

			if err := sleep(ctx, c.cfg.RetryWait); err != nil {
				return nil, errors.Wrap(err, "list request cancelled")
			}
		}

		body, retry, err := c.once(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	c.logger.Warn("list request failed",
		zap.String("url", endpoint),
		zap.Int("retries", c.cfg.Retries),
		zap.Error(lastErr))
	return nil, lastErr
}

// once performs a single attempt and reports whether a failure may be retried.
func (c *Client) once(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		req.Header[key] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, errors.Wrap(ctx.Err(), "list request cancelled")
		}
		return nil, true, errors.Wrap(err, "list request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode >= 500, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "failed to read response body")
	}
	return body, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
