package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	TasksMarkedOverdue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_marked_overdue_total",
			Help: "Tasks promoted to Overdue by listing reads",
		},
	)
	TasksGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_generated_total",
			Help: "Tasks created from AI-extracted drafts",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, TasksMarkedOverdue, TasksGenerated)
}
