package api

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

// DefaultTimeout bounds every API call.
const DefaultTimeout = 10 * time.Second

// Config configures a [Client].
type Config struct {
	// BackendURL is the server origin; "/api" is appended.
	BackendURL string
	Timeout    time.Duration
	UserAgent  string
}

// Observer is notified after every request. status is 0 when no response was
// received.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration, err error)
}

// Option customizes a [Client].
type Option func(*Client)

// WithObserver installs a request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithTransport sets the round tripper underneath bearer injection.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// Client talks to the storefront backend.
type Client struct {
	base      *url.URL
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	observer  Observer

	authed *http.Client
	raw    *http.Client

	Auth     *AuthService
	Packages *PackageService
	Bookings *BookingService
	Payments *PaymentService
	Wishlist *WishlistService
	Catalog  *CatalogService
}

// New builds a Client. tokens supplies the bearer token for every resource
// call; a nil tokens sends all resource calls anonymously.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := parseBase(cfg.BackendURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      base,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}

	c.authed = &http.Client{
		Timeout:   c.timeout,
		Transport: &BearerTransport{Base: c.transport, Tokens: tokens},
	}
	c.raw = &http.Client{
		Timeout:   c.timeout,
		Transport: c.transport,
	}

	c.Auth = &AuthService{c: c}
	c.Packages = &PackageService{c: c}
	c.Bookings = &BookingService{c: c}
	c.Payments = &PaymentService{c: c}
	c.Wishlist = &WishlistService{c: c}
	c.Catalog = &CatalogService{c: c}

	return c, nil
}

func parseBase(backendURL string) (*url.URL, error) {
	if strings.TrimSpace(backendURL) == "" {
		return nil, errors.New("api: backend url required")
	}
	u, err := url.Parse(strings.TrimRight(backendURL, "/") + "/api")
	if err != nil {
		return nil, fmt.Errorf("api: invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: backend url must be http(s), got %q", u.Scheme)
	}
	return u, nil
}

// BaseURL returns the resolved API base (backend origin + "/api").
func (c *Client) BaseURL() string {
	return c.base.String()
}

type call struct {
	method string
	// route is the templated path used for observation, e.g. "/bookings/{id}".
	route  string
	// path is escaped; ids go through escape.
	path   string
	query  url.Values
	header http.Header
	body   any
	out    any
	anon   bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	status, err := c.send(ctx, cl)
	if c.observer != nil {
		c.observer.ObserveRequest(cl.method, cl.route, status, time.Since(start), err)
	}
	return err
}

func (c *Client) send(ctx context.Context, cl call) (int, error) {
	// cl.path is already escaped; RawPath keeps "%2F" inside an id intact.
	u := *c.base
	u.RawPath = c.base.EscapedPath() + cl.path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return 0, fmt.Errorf("api: build %s %s: %w", cl.method, cl.route, err)
	}
	u.Path = unescaped
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("api: encode %s %s: %w", cl.method, cl.route, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("api: build %s %s: %w", cl.method, cl.route, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	hc := c.authed
	if cl.anon {
		hc = c.raw
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrTransport) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s %s: %v", ErrTransport, cl.method, cl.route, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &Error{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return resp.StatusCode, fmt.Errorf("api: decode %s %s: %w", cl.method, cl.route, err)
	}
	return resp.StatusCode, nil
}

// escape encodes one path segment.
func escape(id string) string {
	return url.PathEscape(id)
}
