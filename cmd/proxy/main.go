// Command proxy runs the label-and-republish side of the trust overlay
// (spec §4.6): it signs plain messages with a numeric security label and
// republishes both the labeled data and a topic-label announcement to a
// sink broker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anchormesh/labelmesh/pkg/config"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
	"github.com/anchormesh/labelmesh/services/proxy"
)

func main() {
	configPath := flag.String("config", config.DefaultProxyConfigPath, "path to proxy config file")
	adminAddr := flag.String("admin-addr", ":9090", "address for the /healthz and /metrics admin server")
	flag.Parse()

	if err := run(*configPath, *adminAddr); err != nil {
		fmt.Fprintln(os.Stderr, "proxy:", err)
		os.Exit(1)
	}
}

func run(configPath, adminAddr string) error {
	cfg, err := config.LoadProxyConfig(configPath)
	if err != nil {
		return err
	}

	log := telemetry.New(os.Stdout, telemetry.Options{Service: "proxy", Level: telemetry.Level(cfg.LogLevel)})
	metrics := telemetry.NewMetrics("proxy")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := proxy.New(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}

	admin := telemetry.NewAdminServer(adminAddr, svc.Health, svc.Metrics)
	go func() {
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "admin server exited", map[string]any{"error": err})
		}
	}()
	defer admin.Close()

	log.Info(ctx, "proxy started", map[string]any{"source": cfg.Source, "sink": cfg.Sink})
	err = svc.Run(ctx)
	log.Info(ctx, "proxy stopped", map[string]any{"error": err})
	return err
}
