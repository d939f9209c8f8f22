// Package backend is the portal's only way out to the Soremed REST API. Every
// call goes through one http.Client whose transport attaches the session
// credential, and every non-2xx answer comes back as a *StatusError wrapping a
// domain sentinel.
package backend

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

	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
)

// Observer receives one callback per backend round trip. route is the path
// template (e.g. "/orders/{id}"), status is 0 when no response arrived.
type Observer func(method, route string, status int, elapsed time.Duration)

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials ports.CredentialStore
	Transport   http.RoundTripper
	Observer    Observer
	Logger      zerolog.Logger
}

// Client talks to the backend REST API.
type Client struct {
	base     *url.URL
	http     *http.Client
	observer Observer
	log      zerolog.Logger
}

// New builds a Client. Credentials may be nil, in which case only credentials
// pinned on the context are sent.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	next := opts.Transport
	if next == nil {
		next = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: newCredentialTransport(next, opts.Credentials, opts.Logger),
		},
		observer: opts.Observer,
		log:      opts.Logger,
	}, nil
}

// call describes one backend request. route is used for metrics and logs only.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs the round trip and maps non-2xx statuses to errors. On success
// the caller owns resp.Body.
func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	body, contentType, err := encodeBody(cl.body)
	if err != nil {
		return nil, fmt.Errorf("backend %s %s: encode body: %w", cl.method, cl.route, err)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query), body)
	if err != nil {
		return nil, fmt.Errorf("backend %s %s: %w", cl.method, cl.route, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(cl, 0, elapsed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("backend %s %s: %w", cl.method, cl.route, ctxErr)
		}
		return nil, fmt.Errorf("backend %s %s: %w: %w", cl.method, cl.route, domain.ErrBackendUnavailable, err)
	}
	c.observe(cl, resp.StatusCode, elapsed)

	c.log.Debug().
		Str("method", cl.method).
		Str("route", cl.route).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, newStatusError(cl.method, cl.route, resp.StatusCode, snippet)
	}
	return resp, nil
}

// do sends the call and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("backend %s %s: decode response: %w: %w", cl.method, cl.route, domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (c *Client) observe(cl call, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(cl.method, cl.route, status, elapsed)
	}
}

// encodeBody picks the wire shape: multipart bodies keep the writer's own
// content type (with its boundary), everything else is sent as JSON.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(buf), "application/json", nil
	}
}

// Ping checks that the backend answers at all. Any HTTP status counts as alive.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(domain.WithAnonymous(ctx), http.MethodHead, c.endpoint("/", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

var _ ports.PortalAPI = (*Client)(nil)
