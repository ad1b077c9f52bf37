package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relay",
		Name:      "active_connections",
		Help:      "Number of live websocket connections.",
	})

	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Name:      "broadcasts_total",
		Help:      "Events fanned out, by event type.",
	}, []string{"event"})

	DroppedMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Name:      "dropped_messages_total",
		Help:      "Messages dropped because a client's send buffer was full.",
	})

	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Name:      "persistence_failures_total",
		Help:      "Fire-and-forget backend calls that failed, by operation.",
	}, []string{"op"})

	RoomsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Name:      "rooms_created_total",
		Help:      "Rooms successfully created against the backend.",
	})

	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Name:      "heartbeats_total",
		Help:      "Heartbeat ticks broadcast to all connections.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relay",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, path and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
