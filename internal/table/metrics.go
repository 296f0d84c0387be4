package table

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess    = "success"
	outcomeError      = "error"
	outcomeSuperseded = "superseded"
)

var (
	// Page queries partitioned by table and outcome
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admintable_page_queries_total",
			Help: "Total number of page queries issued by table sessions",
		},
		[]string{"table", "outcome"},
	)

	// Page query latency in seconds
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admintable_page_query_duration_seconds",
			Help:    "Page query latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	// Filter changes that reset pagination
	paginationResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admintable_pagination_resets_total",
			Help: "Number of times a filter change reset a table to its first page",
		},
		[]string{"table"},
	)
)
