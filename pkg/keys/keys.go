// Package keys loads Ed25519 key material from OpenSSH-format files and
// strings, matching original_source/src/bin/proxy.rs's ConfKey::get_key
// (ssh_key::PrivateKey::read_openssh_file) and label_db.rs's
// ConfPubKey::get_key (ssh_key::PublicKey::from_openssh). Both use
// golang.org/x/crypto/ssh, the Go ecosystem's counterpart to the Rust
// prototype's ssh_key crate.
package keys

import (
	"crypto/ed25519"
	"os"

	"golang.org/x/crypto/ssh"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// LoadSigningKey reads an OpenSSH private key file at path and returns
// its Ed25519 secret key. It is an error for the file to hold anything
// other than an Ed25519 key (spec §4.6: label and info keys are both
// Ed25519).
func LoadSigningKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.Config("read signing key file "+path, err)
	}

	rawKey, err := ssh.ParseRawPrivateKey(raw)
	if err != nil {
		return nil, lerrors.Config("parse openssh private key "+path, err)
	}

	switch k := rawKey.(type) {
	case *ed25519.PrivateKey:
		return *k, nil
	case ed25519.PrivateKey:
		return k, nil
	default:
		return nil, lerrors.Crypto(lerrors.UnsupportedKeyAlgo, "signing key "+path+" is not ed25519", nil)
	}
}

// ParseOpenSSHPublicKey parses text (the contents of an OpenSSH
// "authorized_keys"-style public key line) and returns its Ed25519
// verifying key. It is an error for the key to be anything other than
// Ed25519 (spec §4.3: the label database trusts exactly one Ed25519
// public key for topic-label announcements).
func ParseOpenSSHPublicKey(text string) (ed25519.PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(text))
	if err != nil {
		return nil, lerrors.Config("parse openssh public key", err)
	}

	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, lerrors.Crypto(lerrors.UnsupportedKeyAlgo, "public key does not expose crypto material", nil)
	}

	key, ok := cryptoPub.CryptoPublicKey().(ed25519.PublicKey)
	if !ok {
		return nil, lerrors.Crypto(lerrors.UnsupportedKeyAlgo, "public key is not ed25519", nil)
	}
	return key, nil
}
