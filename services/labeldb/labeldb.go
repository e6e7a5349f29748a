package labeldb

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/broker/wsbroker"
	"github.com/anchormesh/labelmesh/pkg/config"
	"github.com/anchormesh/labelmesh/pkg/envelope"
	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/keys"
	"github.com/anchormesh/labelmesh/pkg/labeldb"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
)

// Service owns everything needed to run the label database: the broker
// connection, the trusted public key, the actor, and the telemetry
// surfaces the admin server exposes.
type Service struct {
	Supervisor *Supervisor
	Logger     *telemetry.Logger
	Metrics    *telemetry.Metrics
	Health     *telemetry.Health
}

// New builds a Service from cfg, dialing the broker, parsing the
// trusted public key, and starting the actor.
func New(ctx context.Context, cfg *config.LabelDBConfig, log *telemetry.Logger, metrics *telemetry.Metrics) (*Service, error) {
	health := telemetry.NewHealth("labeldb")

	pub, err := keys.ParseOpenSSHPublicKey(cfg.MLSPubkey.Key)
	if err != nil {
		return nil, lerrors.Config("parse mls_pubkey", err)
	}
	pubKey := envelope.NewPublicKey(pub)

	client, err := wsbroker.Dial(ctx, cfg.Broker)
	if err != nil {
		return nil, lerrors.Transport("dial broker", err)
	}

	actor := labeldb.Start(ctx)

	listener := NewListener(client, cfg.MLSTopic, pubKey, actor, log, metrics, health)
	socket := NewSocketServer(cfg.SocketPath, actor, log, metrics, health)

	return &Service{
		Supervisor: NewSupervisor(listener, socket),
		Logger:     log,
		Metrics:    metrics,
		Health:     health,
	}, nil
}

// Run blocks until the supervisor returns.
func (s *Service) Run(ctx context.Context) error {
	return s.Supervisor.Run(ctx)
}
