package envelope

import (
	"crypto/ed25519"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// PublicKey wraps an Ed25519 verifying key. It is freely shared read-only
// across verification goroutines.
type PublicKey struct {
	key ed25519.PublicKey
}

// NewPublicKey wraps a raw Ed25519 public key.
func NewPublicKey(key ed25519.PublicKey) PublicKey {
	return PublicKey{key: key}
}

// Verify recomputes the canonical signing input from msg's own fields,
// parses Signature as an Ed25519 signature, and verifies it against pub.
// On success it returns a view into msg.Payload; on failure it returns a
// *errors.Error with Code CodeCrypto and the specific CryptoKind.
//
// crypto/ed25519.Verify (since Go 1.13, backed by filippo.io/edwards25519)
// already rejects non-canonical S/R encodings, satisfying the "strictly
// verifies" requirement in spec §4.1 for the signature component.
func Verify(msg SignedMsg, pub PublicKey) ([]byte, error) {
	if len(msg.Signature) != ed25519.SignatureSize {
		return nil, lerrors.Crypto(lerrors.MalformedSignature, "signature has wrong length", nil)
	}
	if len(pub.key) != ed25519.PublicKeySize {
		return nil, lerrors.Crypto(lerrors.MalformedSignature, "public key has wrong length", nil)
	}

	input := signingInput(msg.Payload, msg.AD, msg.Datetime, msg.KeyID)
	if !ed25519.Verify(pub.key, input, msg.Signature) {
		return nil, lerrors.Crypto(lerrors.BadSignature, "signature verification failed", nil)
	}
	return msg.Payload, nil
}
