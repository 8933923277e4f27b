package service

import (
	"context"
	"sync"
	"time"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/metrics"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// DirectRenewer is the renewal primitive the background ticker drives.
type DirectRenewer interface {
	RenewNow(ctx context.Context) (model.Kind, error)
	ForceLogout(ctx context.Context, kind model.Kind)
}

// Ticker renews credentials on a fixed period, independent of request traffic.
// At most one timer runs at a time.
type Ticker struct {
	renewer  DirectRenewer
	interval time.Duration
	metrics  *metrics.Collector
	logger   *logger.Logger

	mu   sync.Mutex
	stop chan struct{} // nil when idle
}

func NewTicker(renewer DirectRenewer, interval time.Duration, metrics *metrics.Collector, logger *logger.Logger) *Ticker {
	return &Ticker{
		renewer:  renewer,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start begins periodic renewal. It is a no-op while a timer is already running.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	go t.loop(stop)

	t.logger.Info("background renewal started", "interval", t.interval.String())
}

// Stop prevents future ticks. A tick already in progress is not aborted, but if it
// fails it no longer forces logout, so a session started after Stop is left alone.
// Stopping an idle ticker is a no-op.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil

	t.logger.Info("background renewal stopped")
}

// Running reports whether a timer is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *Ticker) loop(stop chan struct{}) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C:
		}

		select {
		case <-stop:
			return
		default:
		}

		if !t.tick(stop) {
			return
		}
	}
}

// tick renews once. A failed tick stops the ticker and forces logout, unless the
// ticker was stopped while the tick was in flight.
func (t *Ticker) tick(stop chan struct{}) bool {
	ctx := context.Background()

	kind, err := t.renewer.RenewNow(ctx)
	t.metrics.Tick(err == nil)
	if err == nil {
		return true
	}

	t.mu.Lock()
	owned := t.stop == stop
	if owned {
		close(stop)
		t.stop = nil
	}
	t.mu.Unlock()

	if !owned {
		return false
	}

	t.logger.Error("scheduled renewal failed, stopping background renewal",
		"kind", kind.String(),
		"error", err)
	t.renewer.ForceLogout(ctx, kind)
	return false
}
