package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/console"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/server"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(resource.NewSchemaless(
		attribute.String("service.name", "console-agent"),
		attribute.String("service.version", buildVersion),
	)))
	otel.SetTracerProvider(tp)

	// A forced logout ends the agent: without a session there is nothing to renew.
	navigator := model.NavigatorFunc(func(destination string) {
		logger.Warn("session ended, login required", "destination", destination)
		stop()
	})

	session, err := console.New(ctx, cfg, navigator, logger,
		console.WithRegisterer(registry),
		console.WithTracerProvider(tp))
	if err != nil {
		logger.Fatal("failed to initialize console session", "error", err)
	}

	logAppVersion()

	kind := session.Resume(ctx)
	if kind == model.KindNone {
		logger.Warn("no active session, log in before starting the agent",
			"destination", cfg.Routes().Primary.LoginPath)
		stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		metricsServer := server.NewHTTPServer(mux, cfg.MetricsAddr)

		g.Go(func() error {
			logger.Info("Starting metrics server on", "address", metricsServer.Address())
			return metricsServer.Start(server.NewPlainListener())
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return metricsServer.Stop(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("agent stopped with error", "error", err)
	}

	if err := session.Close(); err != nil {
		logger.Error("failed to close session", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracer provider", "error", err)
	}

	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
