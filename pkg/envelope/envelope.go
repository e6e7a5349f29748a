// Package envelope implements the signed-message envelope described in
// spec §4.1: a canonical byte layout over payload, associated data,
// timestamp, and key identifier, with Ed25519 sign/verify contracts.
//
// The canonical signing input is the exact, delimiter-free concatenation
//
//	payload ‖ ad ‖ big-endian-8-byte(datetime) ‖ utf8-bytes(key_id)
//
// Implementations on either side of the wire MUST build this input the
// same way; no length prefixes or structured framing are introduced here
// even though the outer envelope itself is CBOR (see wire.go).
package envelope

import (
	"encoding/binary"
)

// SignedMsg is the authenticated envelope transmitted on the wire.
type SignedMsg struct {
	Payload   []byte `cbor:"payload"`
	AD        []byte `cbor:"ad"`
	KeyID     string `cbor:"key_id"`
	Datetime  int64  `cbor:"datetime"`
	Signature []byte `cbor:"signature"`
}

// signingInput builds the canonical signing input for the given fields.
// Shared by Sign and Verify so the two sides can never drift.
func signingInput(payload, ad []byte, datetime int64, keyID string) []byte {
	buf := make([]byte, 0, len(payload)+len(ad)+8+len(keyID))
	buf = append(buf, payload...)
	buf = append(buf, ad...)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(datetime))
	buf = append(buf, ts[:]...)
	buf = append(buf, keyID...)
	return buf
}

// Clock returns the current wall-clock time as seconds since the Unix
// epoch. It exists so tests can substitute a deterministic clock.
type Clock func() int64
