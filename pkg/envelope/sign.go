package envelope

import (
	"crypto/ed25519"
	"time"
)

// Key is a signing identity confined to the producing process: the
// private half of an Ed25519 keypair plus the key_id bound into every
// signature it produces. Signing keys are never shared across processes.
type Key struct {
	secret ed25519.PrivateKey
	id     string
	now    Clock
}

// NewKey wraps an Ed25519 private key with the key_id that will be bound
// into every signature it produces.
func NewKey(secret ed25519.PrivateKey, id string) *Key {
	return &Key{secret: secret, id: id, now: defaultClock}
}

// WithClock overrides the wall-clock source; used by tests.
func (k *Key) WithClock(c Clock) *Key {
	k.now = c
	return k
}

// ID returns the key_id bound into every signature this key produces.
func (k *Key) ID() string { return k.id }

func defaultClock() int64 { return time.Now().Unix() }

// SignWithAD builds a SignedMsg over payload and ad: it reads the current
// wall-clock second, constructs the canonical signing input, and signs it
// with the Ed25519 private key. It always succeeds given a valid key.
func (k *Key) SignWithAD(payload, ad []byte) SignedMsg {
	datetime := k.now()
	input := signingInput(payload, ad, datetime, k.id)
	sig := ed25519.Sign(k.secret, input)
	return SignedMsg{
		Payload:   payload,
		AD:        ad,
		KeyID:     k.id,
		Datetime:  datetime,
		Signature: sig,
	}
}

// Sign builds a SignedMsg over payload with empty associated data, used
// for announcement envelopes (spec §3: "ad is empty for announcements").
func (k *Key) Sign(payload []byte) SignedMsg {
	return k.SignWithAD(payload, nil)
}
