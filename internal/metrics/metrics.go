// Package metrics exposes Prometheus counters for the session client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

const namespace = "console"

// Collector counts renewals, replays, forced logouts and background ticks.
// A nil *Collector is valid and records nothing.
type Collector struct {
	renewals      *prometheus.CounterVec
	replays       prometheus.Counter
	forcedLogouts *prometheus.CounterVec
	ticks         *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renewals_total",
			Help:      "Credential renewal network calls by result.",
		}, []string{"result"}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replays_total",
			Help:      "Requests replayed after a successful renewal.",
		}),
		forcedLogouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_logouts_total",
			Help:      "Forced logouts by principal kind.",
		}, []string{"kind"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Background renewal ticks by result.",
		}, []string{"result"}),
	}

	for _, col := range []prometheus.Collector{c.renewals, c.replays, c.forcedLogouts, c.ticks} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) Renewal(ok bool) {
	if c == nil {
		return
	}
	c.renewals.WithLabelValues(result(ok)).Inc()
}

func (c *Collector) Replay() {
	if c == nil {
		return
	}
	c.replays.Inc()
}

func (c *Collector) ForcedLogout(kind model.Kind) {
	if c == nil {
		return
	}
	c.forcedLogouts.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) Tick(ok bool) {
	if c == nil {
		return
	}
	c.ticks.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
