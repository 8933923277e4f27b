package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/backend"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
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

	routes := cfg.Routes()
	b := backend.New(
		cfg.DevServer.JWTSecret,
		cfg.DevServer.AccessTTL,
		cfg.DevServer.EnableHTTPS,
		logger,
		routes.Primary.Marker,
		routes.Secondary.Marker,
	)

	httpServer := server.NewHTTPServer(b, fmt.Sprintf(":%s", cfg.DevServer.Port))
	sl := server.NewSecurityLayer(cfg.DevServer.EnableHTTPS, cfg.DevServer.CertFileName, cfg.DevServer.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
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
