// Command labeldb runs the topic-label database process (spec §4.3,
// §4.4): it verifies topic-label announcements against a trusted public
// key and serves wildcard label lookups over a Unix-domain socket.
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
	"github.com/anchormesh/labelmesh/services/labeldb"
)

func main() {
	configPath := flag.String("config", config.DefaultLabelDBConfigPath, "path to label-db config file")
	adminAddr := flag.String("admin-addr", ":9091", "address for the /healthz and /metrics admin server")
	flag.Parse()

	if err := run(*configPath, *adminAddr); err != nil {
		fmt.Fprintln(os.Stderr, "labeldb:", err)
		os.Exit(1)
	}
}

func run(configPath, adminAddr string) error {
	cfg, err := config.LoadLabelDBConfig(configPath)
	if err != nil {
		return err
	}

	log := telemetry.New(os.Stdout, telemetry.Options{Service: "labeldb", Level: telemetry.Level(cfg.LogLevel)})
	metrics := telemetry.NewMetrics("labeldb")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := labeldb.New(ctx, cfg, log, metrics)
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

	log.Info(ctx, "label db started", map[string]any{"broker": cfg.Broker, "socket_path": cfg.SocketPath})
	err = svc.Run(ctx)
	log.Info(ctx, "label db stopped", map[string]any{"error": err})
	return err
}
