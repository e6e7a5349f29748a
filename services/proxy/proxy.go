package proxy

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/broker/wsbroker"
	"github.com/anchormesh/labelmesh/pkg/config"
	"github.com/anchormesh/labelmesh/pkg/envelope"
	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/keys"
	"github.com/anchormesh/labelmesh/pkg/ringbuffer"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
)

// Service owns everything needed to run the proxy: both broker
// connections, both signing keys, the handoff buffer between the pumps,
// and the telemetry surfaces the admin server exposes.
type Service struct {
	Supervisor *Supervisor
	Logger     *telemetry.Logger
	Metrics    *telemetry.Metrics
	Health     *telemetry.Health
}

// New builds a Service from cfg, dialing both brokers and loading both
// signing keys. The two keys must already have been validated distinct
// by config.LoadProxyConfig.
func New(ctx context.Context, cfg *config.ProxyConfig, log *telemetry.Logger, metrics *telemetry.Metrics) (*Service, error) {
	health := telemetry.NewHealth("proxy")

	labelSecret, err := keys.LoadSigningKey(cfg.LabelKey.Path)
	if err != nil {
		return nil, lerrors.Config("load label_key", err)
	}
	infoSecret, err := keys.LoadSigningKey(cfg.InfoKey.Path)
	if err != nil {
		return nil, lerrors.Config("load info_key", err)
	}
	labelKey := envelope.NewKey(labelSecret, cfg.LabelKey.ID)
	infoKey := envelope.NewKey(infoSecret, cfg.InfoKey.ID)

	sourceClient, err := wsbroker.Dial(ctx, cfg.Source)
	if err != nil {
		return nil, lerrors.Transport("dial source broker", err)
	}
	sinkClient, err := wsbroker.Dial(ctx, cfg.Sink)
	if err != nil {
		return nil, lerrors.Transport("dial sink broker", err)
	}

	topics := make(map[string]uint16, len(cfg.Topics))
	for topic, label := range cfg.Topics {
		topics[topic] = uint16(label)
	}

	handoff := ringbuffer.New[labeledEnvelope](HandoffCapacity)

	source := NewSourcePump(sourceClient, topics, cfg.MLSTopic, labelKey, infoKey, handoff, log, metrics, health)
	sink := NewSinkPump(sinkClient, handoff, log, metrics, health)

	return &Service{
		Supervisor: NewSupervisor(source, sink),
		Logger:     log,
		Metrics:    metrics,
		Health:     health,
	}, nil
}

// Run blocks until the supervisor returns.
func (s *Service) Run(ctx context.Context) error {
	return s.Supervisor.Run(ctx)
}
