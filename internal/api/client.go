// Package api is the HTTP adapter for the Lost & Found server.
//
// Every call goes through Client.Do. Before dispatch it reads the current
// session and, if there is one, sends its id in the X-User-Id header. It never
// puts the id in the body. Calls are not retried, and errors reach the caller
// unchanged.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/idilsaglam/campusfinder/internal/model"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderRequestID = "X-Request-Id"
)

// IdentitySource is the read side of the session store.
type IdentitySource interface {
	Get() *model.Session
}

// Response is a 2xx answer.
type Response struct {
	Status int
	Data   json.RawMessage
	Header http.Header
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

type Client struct {
	base     *url.URL
	http     *http.Client
	identity IdentitySource
	log      *zap.Logger

	timeout    time.Duration
	hasTimeout bool
}

type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc. hc itself is never
// modified; a copy without a cookie jar gets the client's own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		if cp.Jar == nil {
			cp.Jar = c.http.Jar
		}
		c.http = &cp
	}
}

// WithTimeout bounds each request; zero means wait forever. It applies
// whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout, c.hasTimeout = d, true }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a client for the API rooted at baseURL (e.g. http://host/api).
func New(baseURL string, identity IdentitySource, opts ...Option) (*Client, error) {
	if identity == nil {
		return nil, errors.New("identity source is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	c := &Client{
		base:     u,
		http:     &http.Client{Jar: jar},
		identity: identity,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		c.http.Timeout = c.timeout
	}
	return c, nil
}

// BaseURL is the API root requests are joined onto.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends one request and returns the 2xx response, a *StatusError or a
// *TransportError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("json marshal: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rdr)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)
	if s := c.identity.Get(); s != nil && s.ID != "" {
		req.Header.Set(HeaderUserID, s.ID.String())
	}

	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("reading response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, err: fmt.Errorf("read body: %w", err)}
	}
	log.Debug("request done", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("non-2xx response", zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: data}
	}
	return &Response{Status: resp.StatusCode, Data: data, Header: resp.Header}, nil
}
