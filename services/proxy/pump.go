// Package proxy implements the label-and-republish side of the trust
// overlay (spec §4.6): a source pump consumes from one broker, signs and
// labels each message, and hands it to a sink pump that republishes both
// the labeled data and a topic-label announcement.
//
// The pump/ring-buffer handoff is adapted from
// services/connector-hub/internal/streaming/stream_manager.go's
// reader-loop/writer-loop split, generalized from an io.Reader/io.Writer
// byte-stream pipeline to a message-at-a-time pipeline over
// pkg/ringbuffer.
package proxy

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/broker"
	"github.com/anchormesh/labelmesh/pkg/envelope"
	"github.com/anchormesh/labelmesh/pkg/errorcounter"
	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/ringbuffer"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
)

// HandoffCapacity bounds the source-pump-to-sink-pump ring buffer.
const HandoffCapacity = 3200

// SourcePump subscribes to every configured topic on the source broker,
// labels and signs each inbound message, and hands the result to the
// sink pump via a RingBuffer (spec §4.6).
type SourcePump struct {
	client   broker.Client
	topics   map[string]uint16
	mlsTopic string
	labelKey *envelope.Key
	infoKey  *envelope.Key

	out       *ringbuffer.RingBuffer[labeledEnvelope]
	errors    errorcounter.Counter
	connected bool
	log       *telemetry.Logger
	metrics   *telemetry.Metrics
	health    *telemetry.Health
}

// NewSourcePump wires a SourcePump against client, the configured
// topic-to-label map, and the two distinct signing keys (spec §4.6:
// "initialization fails if they coincide" is enforced earlier, at config
// load time, by pkg/config.LoadProxyConfig).
func NewSourcePump(client broker.Client, topics map[string]uint16, mlsTopic string, labelKey, infoKey *envelope.Key, out *ringbuffer.RingBuffer[labeledEnvelope], log *telemetry.Logger, metrics *telemetry.Metrics, health *telemetry.Health) *SourcePump {
	return &SourcePump{
		client:   client,
		topics:   topics,
		mlsTopic: mlsTopic,
		labelKey: labelKey,
		infoKey:  infoKey,
		out:      out,
		log:      log,
		metrics:  metrics,
		health:   health,
	}
}

// Run subscribes to all configured topics and labels every inbound
// message until ctx is cancelled or the source connection fails beyond
// recovery (spec §5: the supervisor cancels the sink pump's context in
// that case).
func (p *SourcePump) Run(ctx context.Context) error {
	for topic := range p.topics {
		if err := p.client.Subscribe(ctx, topic, broker.QoSAtMostOnce); err != nil {
			return lerrors.Transport("subscribe to "+topic, err)
		}
	}
	p.health.Set("source", telemetry.StatusOK, "")
	p.connected = true

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-p.client.Messages():
			if !ok {
				return lerrors.Transport("source message channel closed", nil)
			}
			p.log.Debug(ctx, "processing inbound message", map[string]any{"topic": msg.Topic})
			env, err := p.label(msg)
			if err != nil {
				p.metrics.MessagesDropped.WithLabelValues("unlabeled_topic").Inc()
				p.log.Warn(ctx, "dropping message for unlabeled topic", map[string]any{"topic": msg.Topic})
				continue
			}
			if err := p.out.Push(ctx, env); err != nil {
				return lerrors.Transport("push to sink handoff buffer", err)
			}
			p.metrics.MessagesLabeled.Inc()

		case ev, ok := <-p.client.Events():
			if !ok {
				return lerrors.Transport("source event channel closed", nil)
			}
			p.log.Debug(ctx, "received source broker event", map[string]any{"kind": ev.Kind})
			if ev.Kind == broker.EventConnected {
				p.errors.Reset()
				p.health.Set("source", telemetry.StatusOK, "")
				if !p.connected {
					p.metrics.BrokerReconnects.Inc()
				}
				p.connected = true
				for topic := range p.topics {
					if err := p.client.Subscribe(ctx, topic, broker.QoSAtMostOnce); err != nil {
						return lerrors.Transport("resubscribe to "+topic, err)
					}
				}
			} else {
				p.connected = false
				p.health.Set("source", telemetry.StatusDegraded, "disconnected")
			}

		case err, ok := <-p.client.Errors():
			if !ok {
				return lerrors.Transport("source error channel closed", nil)
			}
			p.errors.Inc()
			p.metrics.BrokerErrors.WithLabelValues(delayClass(err)).Inc()
			p.log.Error(ctx, "source broker error", map[string]any{"error": err})
			if p.errors.TooMuch() {
				return lerrors.Transport("source broker error count exceeded threshold", err)
			}
		}
	}
}

// label builds the two signed payloads for an inbound message, or an
// error if msg's topic has no configured label (spec §9: unlabeled
// topics are dropped, matching proxy.rs's label_msg, which left this arm
// as an unimplemented placeholder).
func (p *SourcePump) label(msg broker.Message) (labeledEnvelope, error) {
	label, ok := p.topics[msg.Topic]
	if !ok {
		return labeledEnvelope{}, lerrors.Policy("no label configured for topic "+msg.Topic, nil)
	}

	adBytes, err := envelope.EncodeAdditionalData(envelope.AdditionalData{Label: label})
	if err != nil {
		return labeledEnvelope{}, err
	}
	signedData := p.labelKey.SignWithAD(msg.Payload, adBytes)
	signedDataBytes, err := envelope.EncodeSignedMsg(signedData)
	if err != nil {
		return labeledEnvelope{}, err
	}

	infoBytes, err := envelope.EncodeLabeledInfo(envelope.LabeledInfo{Topic: msg.Topic, Label: label})
	if err != nil {
		return labeledEnvelope{}, err
	}
	signedInfo := p.infoKey.Sign(infoBytes)
	signedInfoBytes, err := envelope.EncodeSignedMsg(signedInfo)
	if err != nil {
		return labeledEnvelope{}, err
	}

	return labeledEnvelope{
		topic:         msg.Topic,
		qos:           msg.QoS,
		retain:        msg.Retain,
		signedData:    signedDataBytes,
		announceTopic: p.mlsTopic,
		announceQoS:   broker.QoSExactlyOnce,
		signedInfo:    signedInfoBytes,
	}, nil
}

func delayClass(err error) string {
	if broker.Delay(err) == 0 {
		return "protocol"
	}
	return "transport"
}
