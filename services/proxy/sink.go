package proxy

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/broker"
	"github.com/anchormesh/labelmesh/pkg/errorcounter"
	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/ringbuffer"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
)

// SinkPump drains labeled envelopes from the handoff buffer and
// publishes both the labeled data and the topic-label announcement to
// the sink broker. It owns its own ErrorCounter, independent of the
// source pump's, since the two connections fail independently
// (original_source/src/bin/proxy.rs's sink_loop likewise tracks its own
// connection state separately from source_loop).
type SinkPump struct {
	client broker.Client
	in     *ringbuffer.RingBuffer[labeledEnvelope]

	errors    errorcounter.Counter
	connected bool
	log       *telemetry.Logger
	metrics   *telemetry.Metrics
	health    *telemetry.Health
}

// NewSinkPump wires a SinkPump against client and the handoff buffer
// shared with a SourcePump.
func NewSinkPump(client broker.Client, in *ringbuffer.RingBuffer[labeledEnvelope], log *telemetry.Logger, metrics *telemetry.Metrics, health *telemetry.Health) *SinkPump {
	return &SinkPump{client: client, in: in, log: log, metrics: metrics, health: health}
}

// Run drains and republishes until ctx is cancelled or the sink
// connection fails beyond recovery.
func (s *SinkPump) Run(ctx context.Context) error {
	s.health.Set("sink", telemetry.StatusOK, "")
	s.connected = true

	popped := make(chan labeledEnvelope)
	popErrs := make(chan error, 1)
	go func() {
		for {
			env, err := s.in.Pop(ctx)
			if err != nil {
				popErrs <- err
				return
			}
			select {
			case popped <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-s.client.Events():
			if !ok {
				return lerrors.Transport("sink event channel closed", nil)
			}
			s.log.Debug(ctx, "received sink broker event", map[string]any{"kind": ev.Kind})
			if ev.Kind == broker.EventConnected {
				s.errors.Reset()
				s.health.Set("sink", telemetry.StatusOK, "")
				if !s.connected {
					s.metrics.BrokerReconnects.Inc()
				}
				s.connected = true
			} else {
				s.connected = false
				s.health.Set("sink", telemetry.StatusDegraded, "disconnected")
			}

		case err, ok := <-s.client.Errors():
			if !ok {
				return lerrors.Transport("sink error channel closed", nil)
			}
			s.errors.Inc()
			s.metrics.BrokerErrors.WithLabelValues(delayClass(err)).Inc()
			s.log.Error(ctx, "sink broker error", map[string]any{"error": err})
			if s.errors.TooMuch() {
				return lerrors.Transport("sink broker error count exceeded threshold", err)
			}

		case err := <-popErrs:
			if err == ringbuffer.ErrClosed || ctx.Err() != nil {
				return nil
			}
			return lerrors.Transport("pop from handoff buffer", err)

		case env := <-popped:
			s.log.Debug(ctx, "publishing labeled envelope", map[string]any{"topic": env.topic})
			if err := s.client.Publish(ctx, env.topic, env.signedData, env.qos, env.retain); err != nil {
				return lerrors.Transport("publish labeled message to "+env.topic, err)
			}
			if err := s.client.Publish(ctx, env.announceTopic, env.signedInfo, env.announceQoS, false); err != nil {
				return lerrors.Transport("publish announcement to "+env.announceTopic, err)
			}
			s.metrics.AnnouncementsSent.Inc()
		}
	}
}
