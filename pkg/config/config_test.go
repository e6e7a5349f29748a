package config

import (
	"os"
	"path/filepath"
	"testing"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadProxyConfig(t *testing.T) {
	path := writeTemp(t, "proxy.yaml", `
source: "mqtt://broker-in:1883"
sink: "mqtt://broker-out:1883"
log_level: "info"
mls_topic: "mls/labels"
topics:
  "sensors/temp": 2
  "sensors/humidity": 4
label_key:
  path: "/etc/labelmesh/label.key"
  id: "label-key-1"
info_key:
  path: "/etc/labelmesh/info.key"
  id: "info-key-1"
`)

	cfg, err := LoadProxyConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Topics["sensors/temp"] != 2 {
		t.Fatalf("unexpected topics map: %+v", cfg.Topics)
	}
	if cfg.LabelKey.ID != "label-key-1" || cfg.InfoKey.ID != "info-key-1" {
		t.Fatalf("unexpected key refs: %+v", cfg)
	}
}

func TestLoadProxyConfigRejectsSharedKeyID(t *testing.T) {
	path := writeTemp(t, "proxy.yaml", `
source: "a"
sink: "b"
label_key:
  path: "x"
  id: "same"
info_key:
  path: "y"
  id: "same"
`)

	_, err := LoadProxyConfig(path)
	e, ok := lerrors.Is(err)
	if !ok || e.Code != lerrors.CodeConfig {
		t.Fatalf("expected CodeConfig error, got %v", err)
	}
}

func TestLoadLabelDBConfig(t *testing.T) {
	path := writeTemp(t, "label_db.yaml", `
broker: "mqtt://broker:1883"
log_level: "debug"
mls_topic: "mls/labels"
mls_pubkey:
  key: "ssh-ed25519 AAAA... test"
  id: "info-key-1"
threads: 4
socket_path: "/run/labelmesh/label_db.sock"
`)

	cfg, err := LoadLabelDBConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Threads != 4 || cfg.SocketPath != "/run/labelmesh/label_db.sock" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadLabelDBConfigDefaultsThreads(t *testing.T) {
	path := writeTemp(t, "label_db.yaml", `
broker: "mqtt://broker:1883"
socket_path: "/run/labelmesh/label_db.sock"
`)

	cfg, err := LoadLabelDBConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Threads != 1 {
		t.Fatalf("expected default threads=1, got %d", cfg.Threads)
	}
}

func TestLoadLabelDBConfigRequiresSocketPath(t *testing.T) {
	path := writeTemp(t, "label_db.yaml", `broker: "mqtt://broker:1883"`)

	_, err := LoadLabelDBConfig(path)
	if !lerrors.HasCode(err, lerrors.CodeConfig) {
		t.Fatalf("expected CodeConfig error, got %v", err)
	}
}
