package config

import (
	"gopkg.in/yaml.v3"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// PubKeyRef names the single Ed25519 public key the topic-label database
// trusts for topic-label announcements, in OpenSSH text form (spec
// §4.3).
type PubKeyRef struct {
	Key string `yaml:"key"`
	ID  string `yaml:"id"`
}

// LabelDBConfig is the topic-label database process's configuration
// (spec §4.3, §4.4).
type LabelDBConfig struct {
	Broker     string    `yaml:"broker"`
	LogLevel   string    `yaml:"log_level"`
	MLSTopic   string    `yaml:"mls_topic"`
	MLSPubkey  PubKeyRef `yaml:"mls_pubkey"`
	Threads    int       `yaml:"threads"`
	SocketPath string    `yaml:"socket_path"`
}

// DefaultLabelDBConfigPath is the platform-default config location if no
// -config flag is given.
const DefaultLabelDBConfigPath = "/usr/local/etc/labelmesh/label_db.yaml"

// LoadLabelDBConfig reads and validates a LabelDBConfig from path.
func LoadLabelDBConfig(path string) (*LabelDBConfig, error) {
	raw, err := readBounded(path)
	if err != nil {
		return nil, err
	}

	var cfg LabelDBConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, lerrors.Config("parse label db config "+path, err)
	}

	if cfg.SocketPath == "" {
		return nil, lerrors.Config("socket_path must be set", nil)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}

	return &cfg, nil
}
