package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/metrics"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

const (
	instrumentationName = "github.com/DNBN-rft/dnbn-f-sub000/internal/service"
	defaultRenewTimeout = 10 * time.Second
)

// HTTPDoer sends HTTP requests. *http.Client satisfies it; its cookie jar carries
// the session credential.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Identity resolves the active principal and clears it on forced logout.
type Identity interface {
	CurrentKind(ctx context.Context) model.Kind
	RenewalEndpoint(kind model.Kind) string
	LoginDestination(kind model.Kind) string
	Clear(ctx context.Context) error
}

// RenewerOption configures a Renewer.
type RenewerOption func(*Renewer)

// WithRenewTimeout bounds a single renewal call.
func WithRenewTimeout(d time.Duration) RenewerOption {
	return func(r *Renewer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMetrics records renewal outcomes and forced logouts on c.
func WithMetrics(c *metrics.Collector) RenewerOption {
	return func(r *Renewer) { r.metrics = c }
}

// WithTracerProvider sets where renewal spans are reported.
func WithTracerProvider(tp trace.TracerProvider) RenewerOption {
	return func(r *Renewer) { r.tracer = tp.Tracer(instrumentationName) }
}

// WithLogoutHook registers fn to run after every forced logout, before waiters are
// released.
func WithLogoutHook(fn func(kind model.Kind)) RenewerOption {
	return func(r *Renewer) { r.hooks = append(r.hooks, fn) }
}

// Renewer exchanges the live session for a fresh access credential. Concurrent Renew
// calls share a single in-flight renewal and all observe its outcome.
type Renewer struct {
	doer      HTTPDoer
	identity  Identity
	navigator model.Navigator
	baseURL   string
	timeout   time.Duration
	metrics   *metrics.Collector
	tracer    trace.Tracer
	hooks     []func(kind model.Kind)
	logger    *logger.Logger

	mu       sync.Mutex
	renewing bool
	waiters  []chan error
}

func NewRenewer(doer HTTPDoer, identity Identity, navigator model.Navigator, baseURL string, logger *logger.Logger, opts ...RenewerOption) *Renewer {
	r := &Renewer{
		doer:      doer,
		identity:  identity,
		navigator: navigator,
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultRenewTimeout,
		tracer:    otel.GetTracerProvider().Tracer(instrumentationName),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Renew joins the in-flight renewal or starts one. It returns nil once the session
// has been renewed. On failure every waiter gets the same error, and the session has
// already been force-logged-out by the time it is returned. ctx only bounds this
// caller's wait; the renewal itself keeps running for the other waiters.
func (r *Renewer) Renew(ctx context.Context) error {
	done := make(chan error, 1)

	r.mu.Lock()
	r.waiters = append(r.waiters, done)
	start := !r.renewing
	r.renewing = true
	r.mu.Unlock()

	if start {
		go r.run(context.WithoutCancel(ctx))
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many callers are waiting on the in-flight renewal.
func (r *Renewer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

func (r *Renewer) run(ctx context.Context) {
	kind, err := r.RenewNow(ctx)
	if err != nil {
		r.ForceLogout(ctx, kind)
	}

	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.renewing = false
	r.mu.Unlock()

	for _, w := range waiters {
		w <- err
	}
}

// RenewNow issues one renewal call for the active principal without waiter
// bookkeeping and without forced logout. It returns the kind it renewed for.
func (r *Renewer) RenewNow(ctx context.Context) (model.Kind, error) {
	kind := r.identity.CurrentKind(ctx)
	if kind == model.KindNone {
		return kind, &model.RenewalError{Kind: kind, Err: model.ErrNoPrincipal}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.identity.RenewalEndpoint(kind)
	ctx, span := r.tracer.Start(ctx, "session.renew", trace.WithAttributes(
		attribute.String("session.kind", kind.String()),
		attribute.String("http.path", endpoint),
	))
	defer span.End()

	start := time.Now()
	err := r.call(ctx, kind, endpoint)
	r.metrics.Renewal(err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "renewal failed")
		r.logger.Error("credential renewal failed",
			"kind", kind.String(),
			"path", endpoint,
			"error", err)
		return kind, err
	}

	r.logger.Debug("credential renewal completed",
		"kind", kind.String(),
		"path", endpoint,
		"duration_ms", time.Since(start).Milliseconds())
	return kind, nil
}

func (r *Renewer) call(ctx context.Context, kind model.Kind, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+endpoint, nil)
	if err != nil {
		return &model.RenewalError{Kind: kind, Err: err}
	}

	resp, err := r.doer.Do(req)
	if err != nil {
		return &model.RenewalError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.RenewalError{Kind: kind, Status: resp.StatusCode}
	}
	return nil
}

// ForceLogout clears every session marker and navigates to the login destination
// of kind, the principal that was active before the failure.
func (r *Renewer) ForceLogout(ctx context.Context, kind model.Kind) {
	destination := r.identity.LoginDestination(kind)
	if err := r.identity.Clear(ctx); err != nil {
		r.logger.Error("failed to clear session markers", "kind", kind.String(), "error", err)
	}
	r.metrics.ForcedLogout(kind)
	for _, hook := range r.hooks {
		hook(kind)
	}

	r.logger.Warn("forced logout",
		"kind", kind.String(),
		"destination", destination)
	r.navigator.Navigate(destination)
}
