// Package metrics exposes Prometheus instrumentation for repository
// operations.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/garrett9/servicerepo/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicerepo_repository_ops_total",
			Help: "Repository operations by resource, operation and outcome.",
		},
		[]string{"resource", "op", "outcome"},
	)

	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servicerepo_repository_op_duration_seconds",
			Help:    "Repository operation latency by resource and operation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "op"},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(opsTotal, opDuration)
	})
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func Handler() http.Handler {
	register()
	return promhttp.Handler()
}

// RepositoryHook returns a core.Hook that records every repository
// operation. Wire it with core.WithHook when constructing repositories.
func RepositoryHook() core.Hook {
	register()
	return func(resource, op string, duration time.Duration, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		opsTotal.WithLabelValues(resource, op, outcome).Inc()
		opDuration.WithLabelValues(resource, op).Observe(duration.Seconds())
	}
}
