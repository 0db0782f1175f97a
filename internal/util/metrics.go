package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhooks_received_total",
		Help: "Total number of webhook deliveries received",
	})

	WebhooksDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhooks_duplicate_total",
		Help: "Total number of webhook deliveries rejected as duplicates",
	})

	ReservationsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_upserted_total",
		Help: "Total number of reservations upserted from webhooks",
	})

	RepasseComputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repasse_computed_total",
		Help: "Total number of payout estimates computed",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits on read endpoints",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses on read endpoints",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_invalidations_total",
		Help: "Total number of month cache entries invalidated by events",
	})

	StaysRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stays_requests_total",
		Help: "Total number of requests against the Stays API",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
