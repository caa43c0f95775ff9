package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_health_probes_total",
			Help: "Engine health probes by engine type and resulting status",
		},
		[]string{"engine", "status"},
	)

	probeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_health_probe_duration_seconds",
			Help:    "Latency of successful engine health probes",
			Buckets: prometheus.DefBuckets,
		},
	)
)
