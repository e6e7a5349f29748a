// Package broker declares the MQTT-like publish/subscribe contract that
// the proxy and the topic-label database run against. The broker client
// itself is out of scope for this module (spec §1, Non-goals): only the
// interface, the event/QoS vocabulary, and the transport-error taxonomy
// used to drive reconnect backoff live here. pkg/broker/wsbroker provides
// one concrete implementation for tests and local use.
package broker

import "context"

// QoS mirrors the three MQTT delivery guarantees the reference
// implementation distinguishes (original_source/src/bin/proxy.rs
// publishes data at the inbound message's own QoS and announcements at
// QoS 2).
type QoS int

const (
	QoSAtMostOnce QoS = iota
	QoSAtLeastOnce
	QoSExactlyOnce
)

// Message is an inbound publish delivered to a subscriber.
type Message struct {
	Topic   string
	Payload []byte
	QoS     QoS
	Retain  bool
}

// EventKind distinguishes the lifecycle notifications a Client surfaces
// on its Events channel, mirroring the rumqttc::Event/ConnAck handling in
// original_source/src/bin/proxy.rs and label_db.rs.
type EventKind int

const (
	// EventConnected signals a fresh connection (ConnAck), the point at
	// which callers reset their ErrorCounter and (re-)subscribe.
	EventConnected EventKind = iota
	// EventDisconnected signals the connection was lost.
	EventDisconnected
)

// Event is a lifecycle notification delivered on Client.Events.
type Event struct {
	Kind EventKind
}

// Client is the publish/subscribe contract the proxy and the topic-label
// database depend on. It models (without implementing, per spec's
// Non-goal "does not provide a broker client") the subset of MQTT client
// behavior both processes need: publish, subscribe, and be notified of
// connection lifecycle and transport errors.
type Client interface {
	// Publish sends payload to topic at the given QoS/retain settings.
	Publish(ctx context.Context, topic string, payload []byte, qos QoS, retain bool) error

	// Subscribe registers interest in topic (which may contain
	// wildcards) at the given QoS.
	Subscribe(ctx context.Context, topic string, qos QoS) error

	// Messages returns the channel of inbound publishes for subscribed
	// topics. It is closed when the client shuts down.
	Messages() <-chan Message

	// Events returns the channel of connection lifecycle notifications.
	// It is closed when the client shuts down.
	Events() <-chan Event

	// Errors returns the channel of transport errors observed while
	// connected or attempting to connect. It is closed when the client
	// shuts down.
	Errors() <-chan error

	// Close releases the underlying connection.
	Close() error
}
