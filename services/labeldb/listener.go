// Package labeldb implements the label database process (spec §4.4):
// a broker listener that verifies topic-label announcements, a socket
// server that answers wildcard label lookups, and a supervisor that
// runs both against the shared pkg/labeldb.Actor.
package labeldb

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/broker"
	"github.com/anchormesh/labelmesh/pkg/envelope"
	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/errorcounter"
	"github.com/anchormesh/labelmesh/pkg/labeldb"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
)

// Listener subscribes to the announcement topic, verifies every inbound
// SignedMsg against the trusted public key, and submits accepted
// (topic, label) pairs to the actor. Grounded on
// original_source/src/bin/label_db.rs's listener task, which does the
// same verify-then-insert for every message on mls_topic.
type Listener struct {
	client   broker.Client
	mlsTopic string
	pubKey   envelope.PublicKey
	actor    *labeldb.Actor

	errors    errorcounter.Counter
	connected bool
	log       *telemetry.Logger
	metrics   *telemetry.Metrics
	health    *telemetry.Health
}

// NewListener wires a Listener against client, the announcement topic,
// the trusted public key, and the shared actor.
func NewListener(client broker.Client, mlsTopic string, pubKey envelope.PublicKey, actor *labeldb.Actor, log *telemetry.Logger, metrics *telemetry.Metrics, health *telemetry.Health) *Listener {
	return &Listener{client: client, mlsTopic: mlsTopic, pubKey: pubKey, actor: actor, log: log, metrics: metrics, health: health}
}

// Run subscribes to the announcement topic and processes announcements
// until ctx is cancelled or the broker connection fails beyond recovery.
// Each announcement is verified and inserted in its own goroutine (spec
// §4.4: "each inbound message is handled in its own task"), so a slow
// verification never delays receipt of the next message; grounded on
// original_source/src/bin/label_db.rs:242's
// task::spawn(handle_topic_info(...)).
func (l *Listener) Run(ctx context.Context) error {
	if err := l.client.Subscribe(ctx, l.mlsTopic, broker.QoSAtMostOnce); err != nil {
		return lerrors.Transport("subscribe to "+l.mlsTopic, err)
	}
	l.health.Set("broker", telemetry.StatusOK, "")
	l.connected = true

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-l.client.Messages():
			if !ok {
				return lerrors.Transport("label-db message channel closed", nil)
			}
			l.log.Debug(ctx, "processing incoming announcement", map[string]any{"topic": msg.Topic})
			go l.handleAsync(ctx, msg)

		case ev, ok := <-l.client.Events():
			if !ok {
				return lerrors.Transport("label-db event channel closed", nil)
			}
			l.log.Debug(ctx, "received label-db broker event", map[string]any{"kind": ev.Kind})
			if ev.Kind == broker.EventConnected {
				l.errors.Reset()
				l.health.Set("broker", telemetry.StatusOK, "")
				if !l.connected {
					l.metrics.BrokerReconnects.Inc()
				}
				l.connected = true
				if err := l.client.Subscribe(ctx, l.mlsTopic, broker.QoSAtMostOnce); err != nil {
					return lerrors.Transport("resubscribe to "+l.mlsTopic, err)
				}
			} else {
				l.connected = false
				l.health.Set("broker", telemetry.StatusDegraded, "disconnected")
			}

		case err, ok := <-l.client.Errors():
			if !ok {
				return lerrors.Transport("label-db error channel closed", nil)
			}
			l.errors.Inc()
			l.metrics.BrokerErrors.WithLabelValues(delayClass(err)).Inc()
			l.log.Error(ctx, "label-db broker error", map[string]any{"error": err})
			if l.errors.TooMuch() {
				return lerrors.Transport("label-db broker error count exceeded threshold", err)
			}
		}
	}
}

// handleAsync runs handle for one announcement and reports the outcome;
// it is always run on its own goroutine by Run, so it cannot rely on the
// caller's loop to report errors or log rejections for it.
func (l *Listener) handleAsync(ctx context.Context, msg broker.Message) {
	if err := l.handle(ctx, msg); err != nil {
		l.log.Warn(ctx, "rejected announcement", map[string]any{"error": err})
		outcome := "verify_failed"
		if kind, ok := verifyFailureKind(err); ok {
			l.metrics.SignatureVerifyFail.WithLabelValues(string(kind)).Inc()
		} else {
			outcome = "decode_or_insert_failed"
		}
		l.metrics.MessagesDropped.WithLabelValues(outcome).Inc()
	}
}

// verifyFailureKind reports the envelope.Verify CryptoKind if err is (or
// wraps) a CodeCrypto error, distinguishing signature verification
// failures from decode/actor errors for the signature_verify_failures
// metric.
func verifyFailureKind(err error) (lerrors.CryptoKind, bool) {
	e, ok := lerrors.Is(err)
	if !ok || e.Code != lerrors.CodeCrypto {
		return "", false
	}
	return e.Kind, true
}

// handle verifies and decodes a single announcement, then submits it to
// the actor (spec §4.4 steps 1-4: decode outer envelope, verify
// signature, decode payload, insert).
func (l *Listener) handle(ctx context.Context, msg broker.Message) error {
	signed, err := envelope.DecodeSignedMsg(msg.Payload)
	if err != nil {
		return err
	}
	payload, err := envelope.Verify(signed, l.pubKey)
	if err != nil {
		return err
	}
	info, err := envelope.DecodeLabeledInfo(payload)
	if err != nil {
		return err
	}
	if err := l.actor.Insert(ctx, info.Topic, info.Label); err != nil {
		return lerrors.Actor("insert announcement into trie", err)
	}
	l.metrics.ActorQueueDepth.Set(float64(l.actor.QueueDepth()))
	return nil
}

func delayClass(err error) string {
	if broker.Delay(err) == 0 {
		return "protocol"
	}
	return "transport"
}
