package provision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_runs_total",
			Help: "Provisioning runs by final status",
		},
		[]string{"status"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_steps_total",
			Help: "Provisioning steps by step name and outcome",
		},
		[]string{"step", "outcome"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provisioning_step_duration_seconds",
			Help:    "Wall time per provisioning step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)
)
