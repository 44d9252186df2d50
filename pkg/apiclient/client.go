// Package apiclient is the HTTP plumbing shared by the price and rate clients:
// a base URL, a fixed set of headers, GET with status checking, and JSON decoding
// into the closed error kinds of package entities.
package apiclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/langowen/cryant/internal/metrics"
	"github.com/langowen/cryant/pkg/entities"
	"github.com/pkg/errors"
)

type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(c *Client)

// WithBaseURL points the client at another host, e.g. a test server or a pro plan endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying http.Client. The client is copied, the caller's value is not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for service. header is attached to every outgoing request
// and cannot be changed afterwards.
func New(service, baseURL string, header http.Header, opts ...Option) *Client {
	c := &Client{
		service:    service,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default().With("component", service)
	}

	hc := *c.httpClient
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &headerTransport{header: header.Clone(), next: next}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}

	c.httpClient = &hc
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch issues a GET for path with query and hands the body to decode.
func (c *Client) Fetch(ctx context.Context, op, path string, query url.Values, decode Decoder) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveClient(c.service, op, outcome(err), time.Since(start))
	}()

	body, err := c.Get(ctx, op, path, query)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "path", path, "error", err)
		return err
	}

	if err = decode(op, body); err != nil {
		c.logger.Warn("response rejected", "op", op, "path", path, "error", err)
		return err
	}

	return nil
}

// Get returns the raw body of a successful (2xx) response.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, entities.NewError(entities.KindInvalidArgument, op, errors.Wrap(err, "build url"))
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, entities.NewError(entities.KindInvalidArgument, op, errors.Wrap(err, "create request"))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, entities.NewError(entities.KindTransport, op, errors.Wrap(err, "send request"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, entities.NewError(entities.KindTransport, op, errors.Wrap(err, "read body"))
	}

	c.logger.Debug("response received",
		"op", op,
		"path", u.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, entities.NewError(entities.KindUpstream, op,
			errors.Errorf("bad status %s: %s", resp.Status, upstreamMessage(body, resp.StatusCode)))
	}

	return body, nil
}

type headerTransport struct {
	header http.Header
	next   http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for name, values := range t.header {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return t.next.RoundTrip(req)
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return strings.ReplaceAll(entities.KindOf(err).String(), " ", "_")
}
