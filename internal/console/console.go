// Package console assembles the authenticated API client: marker store, identity
// resolver, renewal coordinator, background ticker and request dispatcher.
package console

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/api/http/client"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/api/http/middleware"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/metrics"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/service"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/session"
)

type options struct {
	store          model.MarkerStore
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	transport      http.RoundTripper
}

// Option configures New.
type Option func(*options)

// WithStore uses store instead of the one selected by configuration.
func WithStore(store model.MarkerStore) Option {
	return func(o *options) { o.store = store }
}

// WithRegisterer registers the session counters on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTracerProvider reports dispatch and renewal spans to tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithTransport sends requests through rt instead of http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// Session is an authenticated API client bound to one persisted session.
type Session struct {
	*client.Client

	resolver   *session.Resolver
	renewer    *service.Renewer
	ticker     *service.Ticker
	jar        http.CookieJar
	closeStore func() error
	logger     *logger.Logger
}

// New wires a Session from cfg. navigator receives the login destination on forced
// logout.
func New(ctx context.Context, cfg *config.Config, navigator model.Navigator, logger *logger.Logger, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, closeStore := o.store, func() error { return nil }
	if store == nil {
		var err error
		store, closeStore, err = NewStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	var collector *metrics.Collector
	if o.registerer != nil {
		var err error
		collector, err = metrics.NewCollector(o.registerer)
		if err != nil {
			_ = closeStore()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Jar:       jar,
		Transport: middleware.NewRequestID(middleware.NewLogging(o.transport, logger)),
		Timeout:   cfg.API.Timeout,
	}

	s := &Session{
		jar:        jar,
		closeStore: closeStore,
		logger:     logger,
	}
	s.resolver = session.NewResolver(store, cfg.Routes(), logger)

	renewerOpts := []service.RenewerOption{
		service.WithRenewTimeout(cfg.Session.RenewTimeout),
		service.WithMetrics(collector),
		service.WithLogoutHook(func(model.Kind) { s.ticker.Stop() }),
	}
	clientOpts := []client.Option{client.WithMetrics(collector)}
	if o.tracerProvider != nil {
		renewerOpts = append(renewerOpts, service.WithTracerProvider(o.tracerProvider))
		clientOpts = append(clientOpts, client.WithTracerProvider(o.tracerProvider))
	}

	s.renewer = service.NewRenewer(httpClient, s.resolver, navigator, cfg.API.BaseURL, logger, renewerOpts...)
	s.ticker = service.NewTicker(s.renewer, cfg.TickInterval(), collector, logger)
	s.Client = client.New(httpClient, cfg.API.BaseURL, s.renewer, logger, clientOpts...)

	return s, nil
}

// Login records that kind is now logged in and starts background renewal. The
// credential itself must already be in the cookie jar, typically from a login call
// made with client.WithoutRenewal.
func (s *Session) Login(ctx context.Context, kind model.Kind, blob []byte) error {
	if err := s.resolver.SetKind(ctx, kind, blob); err != nil {
		return fmt.Errorf("failed to record %s session: %w", kind, err)
	}
	s.ticker.Start()
	s.logger.Info("session started", "kind", kind.String())
	return nil
}

// Resume starts background renewal when a persisted marker names a principal, and
// reports that principal.
func (s *Session) Resume(ctx context.Context) model.Kind {
	kind := s.resolver.CurrentKind(ctx)
	if kind != model.KindNone {
		s.ticker.Start()
		s.logger.Info("session resumed", "kind", kind.String())
	}
	return kind
}

// Logout stops background renewal and clears the session markers without navigating.
func (s *Session) Logout(ctx context.Context) error {
	s.ticker.Stop()
	if err := s.resolver.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("session ended")
	return nil
}

// Kind reports the active principal kind.
func (s *Session) Kind(ctx context.Context) model.Kind {
	return s.resolver.CurrentKind(ctx)
}

// Renewing reports whether background renewal is active.
func (s *Session) Renewing() bool {
	return s.ticker.Running()
}

// Jar exposes the cookie jar holding the transport-level credentials.
func (s *Session) Jar() http.CookieJar {
	return s.jar
}

// Close stops background renewal and releases the marker store, leaving markers in place.
func (s *Session) Close() error {
	s.ticker.Stop()
	return s.closeStore()
}
