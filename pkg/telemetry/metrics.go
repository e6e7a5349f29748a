// Metrics binds the abstract meter contract in the teacher's
// pkg/telemetry/metrics.go to github.com/prometheus/client_golang: that
// file only declared an interface with no backend, which this system
// replaces with real collectors so the proxy and topic-label database
// actually export /metrics (SPEC_FULL.md §11's admin surface).
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the set of Prometheus collectors both processes register
// against their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	MessagesLabeled     prometheus.Counter
	MessagesDropped     *prometheus.CounterVec
	AnnouncementsSent   prometheus.Counter
	SignatureVerifyFail *prometheus.CounterVec
	BrokerErrors        *prometheus.CounterVec
	BrokerReconnects    prometheus.Counter
	ActorQueueDepth     prometheus.Gauge
	SocketConnections   prometheus.Counter
	SocketRequests      *prometheus.CounterVec
}

// NewMetrics constructs and registers all collectors under a fresh
// registry, namespaced by service (e.g. "proxy" or "labeldb").
func NewMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		MessagesLabeled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "messages_labeled_total",
			Help:      "Messages signed, labeled, and republished to the sink broker.",
		}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "messages_dropped_total",
			Help:      "Messages dropped instead of being labeled, by reason.",
		}, []string{"reason"}),
		AnnouncementsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "announcements_sent_total",
			Help:      "Signed topic-label announcements published to the mls topic.",
		}),
		SignatureVerifyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "signature_verify_failures_total",
			Help:      "Envelope signature verification failures, by kind.",
		}, []string{"kind"}),
		BrokerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "broker_errors_total",
			Help:      "Broker connection errors observed, by delay class.",
		}, []string{"class"}),
		BrokerReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "broker_reconnects_total",
			Help:      "Successful broker reconnections (ConnAck observed).",
		}),
		ActorQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "actor_queue_depth",
			Help:      "Outstanding requests queued against the label database actor.",
		}),
		SocketConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "socket_connections_total",
			Help:      "Unix socket connections accepted.",
		}),
		SocketRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labelmesh",
			Subsystem: service,
			Name:      "socket_requests_total",
			Help:      "Unix socket GET requests, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.MessagesLabeled,
		m.MessagesDropped,
		m.AnnouncementsSent,
		m.SignatureVerifyFail,
		m.BrokerErrors,
		m.BrokerReconnects,
		m.ActorQueueDepth,
		m.SocketConnections,
		m.SocketRequests,
	)

	return m
}
