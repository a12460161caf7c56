// Package apiclient is the single HTTP entry point to the remote portfolio
// REST API.
//
// Every call:
//   - attaches "Authorization: Bearer <token>" when the request's TokenStore
//     holds a token (read at call time, never cached here)
//   - sends JSON, except uploads which are multipart
//   - unwraps the {"data": ...} envelope of successful responses
//   - on 401 clears the stored token and returns apperror.ErrUnauthorized;
//     deciding where to navigate is left to the HTTP layer
//
// There are no retries and no client-side timeout: a call lives as long as
// the inbound request's context.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/sakif/portfolio-cms/internal/apperror"
)

// maxResponseBytes caps how much of an API response is read.
const maxResponseBytes = 10 << 20

// Client talks to one API base URL. It is safe for concurrent use; all
// per-browser state arrives through the context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client (tests point it at an
// httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records per-call counters and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
		tracer:  otel.Tracer("github.com/sakif/portfolio-cms/internal/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one API call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonRequest builds a request whose body is v encoded as JSON.
func jsonRequest(method, path string, v any) (request, error) {
	req := request{method: method, path: path}
	if v == nil {
		return req, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return req, fmt.Errorf("apiclient: encoding %s %s body: %w", method, path, err)
	}
	req.body = bytes.NewReader(b)
	req.contentType = "application/json"
	return req, nil
}

// httpClient returns the client to send with: the plain one when there is
// no token, otherwise one whose transport adds the bearer header.
func (c *Client) httpClient(store TokenStore) *http.Client {
	if store == nil {
		return c.http
	}
	token := store.BearerToken()
	if token == "" {
		return c.http
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		},
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
	}
}

// do sends req and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	resource := resourceOf(req.path)

	ctx, span := c.tracer.Start(ctx, "api "+req.method+" /"+resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		),
	)
	defer span.End()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return fmt.Errorf("apiclient: building %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	store := tokenStoreFrom(ctx)
	start := time.Now()

	resp, err := c.httpClient(store).Do(httpReq)
	if err != nil {
		c.metrics.observe(resource, req.method, "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Warn("api request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("error", err.Error()),
		)
		return apperror.Upstream(0, "Could not reach the server. Please try again.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.observe(resource, req.method, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading body")
		return apperror.Upstream(resp.StatusCode, "Could not read the server response.")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		span.SetStatus(codes.Error, "unauthorized")
		if store != nil {
			if err := store.ClearBearerToken(ctx); err != nil {
				c.logger.Error("clearing rejected token", slog.String("error", err.Error()))
			}
		}
		return apperror.Unauthorized(messageOf(body, "Your session has expired. Please log in again."))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return statusError(resp.StatusCode, messageOf(body, ""))
	}

	if out == nil {
		return nil
	}
	return decodeData(body, out)
}

// statusError maps an API failure status to an AppError carrying the
// server's message (may be empty; callers then fall back to their own).
func statusError(status int, message string) *apperror.AppError {
	e := apperror.Upstream(status, message)
	switch status {
	case http.StatusNotFound:
		e.Err = apperror.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Err = apperror.ErrValidation
	case http.StatusConflict:
		e.Err = apperror.ErrConflict
	case http.StatusForbidden:
		e.Err = apperror.ErrForbidden
	}
	return e
}

// messageOf extracts the API's "message" (or "error") string.
func messageOf(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, path := range []string{"message", "error"} {
		if m := gjson.GetBytes(body, path); m.Type == gjson.String && m.String() != "" {
			return m.String()
		}
	}
	return fallback
}

// decodeData unmarshals the envelope's "data" member into out.
func decodeData(body []byte, out any) error {
	if !gjson.ValidBytes(body) {
		return apperror.Upstream(http.StatusOK, "The server sent an unreadable response.")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return apperror.Upstream(http.StatusOK, "The server response had no data.")
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("apiclient: decoding data: %w", err)
	}
	return nil
}

// resourceOf returns the first path segment ("/projects/id/1" → "projects"),
// which keeps metric and span names low-cardinality.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

// segment escapes one dynamic path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
