package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Live table sessions
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admintable_sessions_active",
			Help: "Number of table sessions currently held in memory",
		},
	)

	// Sessions removed by the idle sweeper
	sessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admintable_sessions_expired_total",
			Help: "Number of table sessions expired for inactivity",
		},
	)

	// Post mutations partitioned by operation and outcome
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admintable_post_mutations_total",
			Help: "Total number of post mutations sent to the remote API",
		},
		[]string{"operation", "outcome"},
	)
)
