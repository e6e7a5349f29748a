// Package config loads the proxy's and the topic-label database's flat
// YAML configuration files via gopkg.in/yaml.v3.
//
// Adapted from pkg/config/loader.go's Loader: that file's multi-tenant
// layered merge (base -> env -> tenant -> env-var overrides) has no
// analogue here — both processes in this system read exactly one
// operator-supplied file, mirroring original_source/src/bin/proxy.rs and
// label_db.rs's confy::load_path/confy::load — so this package keeps the
// loader's bounded-read-then-decode shape but drops the layering.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// MaxConfigBytes bounds how large a config file this loader will read,
// guarding against an operator pointing it at the wrong file.
const MaxConfigBytes = 1 << 20

// KeyRef names an on-disk OpenSSH private key file plus the key_id bound
// into every signature it produces (spec §4.6).
type KeyRef struct {
	Path string `yaml:"path"`
	ID   string `yaml:"id"`
}

// ProxyConfig is the proxy process's configuration: which broker to
// consume from, which broker to republish to, the topic-to-label map,
// and the two distinct signing identities (spec §4.6).
type ProxyConfig struct {
	Source   string         `yaml:"source"`
	Sink     string         `yaml:"sink"`
	LogLevel string         `yaml:"log_level"`
	MLSTopic string         `yaml:"mls_topic"`
	Topics   map[string]int `yaml:"topics"`
	LabelKey KeyRef         `yaml:"label_key"`
	InfoKey  KeyRef         `yaml:"info_key"`
}

// DefaultProxyConfigPath is the platform-default config location if no
// -config flag is given, matching original_source/src/bin/proxy.rs's
// "/usr/local/etc/mls/proxy.conf" default.
const DefaultProxyConfigPath = "/usr/local/etc/labelmesh/proxy.yaml"

// LoadProxyConfig reads and validates a ProxyConfig from path. It fails
// if label_key.id equals info_key.id: the proxy signs data-plane
// messages and topic-label announcements with distinct identities so a
// compromise of one key cannot forge the other's messages (spec §4.6).
func LoadProxyConfig(path string) (*ProxyConfig, error) {
	raw, err := readBounded(path)
	if err != nil {
		return nil, err
	}

	var cfg ProxyConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, lerrors.Config("parse proxy config "+path, err)
	}

	if cfg.LabelKey.ID == cfg.InfoKey.ID {
		return nil, lerrors.Config("label_key.id and info_key.id must differ", nil)
	}

	return &cfg, nil
}

func readBounded(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, lerrors.Config("stat config file "+path, err)
	}
	if fi.Size() > MaxConfigBytes {
		return nil, lerrors.Config("config file "+path+" exceeds size limit", nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.Config("read config file "+path, err)
	}
	return raw, nil
}
