// Package client sends REST calls to the console backend on behalf of the logged-in
// principal, renewing an expired access credential and replaying the call once.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/metrics"
)

const instrumentationName = "github.com/DNBN-rft/dnbn-f-sub000/internal/api/http/client"

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Renewer renews the session credential, sharing one renewal among concurrent callers.
type Renewer interface {
	Renew(ctx context.Context) error
}

// Request describes one call. Body is kept as bytes so the call can be replayed
// unchanged.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
	// SkipRenewal returns an unauthorized response as-is instead of renewing.
	SkipRenewal bool
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics counts replays on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(cl *Client) { cl.metrics = c }
}

// WithTracerProvider sets where dispatch spans are reported.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cl *Client) { cl.tracer = tp.Tracer(instrumentationName) }
}

// Client dispatches requests relative to a base URL.
type Client struct {
	doer    HTTPDoer
	baseURL string
	renewer Renewer
	metrics *metrics.Collector
	tracer  trace.Tracer
	logger  *logger.Logger
}

func New(doer HTTPDoer, baseURL string, renewer Renewer, logger *logger.Logger, opts ...Option) *Client {
	c := &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		renewer: renewer,
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch sends req. An unauthorized response triggers one renewal; when it
// succeeds the identical request is sent once more and that response is returned
// whatever its status. When renewal fails its error is returned and the session has
// already been logged out. Every other response, and every transport error, is
// returned untouched. The caller must close the returned body.
func (c *Client) Dispatch(ctx context.Context, req Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, "http.dispatch", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	))
	defer span.End()

	resp, err := c.send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.SkipRenewal {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return resp, nil
	}

	drain(resp)
	c.logger.Debug("access credential rejected, renewing",
		"method", req.Method,
		"path", req.Path)

	if err := c.renewer.Renew(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "renewal failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	c.metrics.Replay()
	span.AddEvent("replay")
	resp, err = c.send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, c.url(req), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", req.Method, req.Path, err)
	}
	if req.Header != nil {
		hr.Header = req.Header.Clone()
	}
	if req.ContentType != "" {
		hr.Header.Set("Content-Type", req.ContentType)
	}

	resp, err := c.doer.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return resp, nil
}

func (c *Client) url(req Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(req.Path, "?") {
		sep = "&"
	}
	return u + sep + req.Query.Encode()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
