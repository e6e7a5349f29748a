package envelope

import (
	"crypto/ed25519"
	"testing"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

func genKey(t *testing.T, id string) (*Key, PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return NewKey(priv, id).WithClock(func() int64 { return 1700000000 }), NewPublicKey(pub)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key, pub := genKey(t, "test.key.1")

	cases := []struct {
		name    string
		payload []byte
		ad      []byte
	}{
		{"empty", nil, nil},
		{"payload only", []byte("hello world"), nil},
		{"payload and ad", []byte("hello"), []byte("ad-bytes")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := key.SignWithAD(tc.payload, tc.ad)
			got, err := Verify(msg, pub)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if string(got) != string(tc.payload) {
				t.Fatalf("payload mismatch: got %q want %q", got, tc.payload)
			}
		})
	}
}

func TestSignBindsKeyID(t *testing.T) {
	key, pub := genKey(t, "key-a")
	msg := key.Sign([]byte("payload"))

	otherKey, _ := genKey(t, "key-b")
	tampered := msg
	tampered.KeyID = otherKey.ID()

	if _, err := Verify(tampered, pub); err == nil {
		t.Fatalf("expected verification failure after key_id tamper")
	}
}

func TestVerifyTamperResistance(t *testing.T) {
	key, pub := genKey(t, "tamper.key")
	msg := key.SignWithAD([]byte("payload-bytes"), []byte("ad-bytes"))

	tamperByte := func(b []byte) []byte {
		if len(b) == 0 {
			return []byte{0xff}
		}
		out := append([]byte(nil), b...)
		out[0] ^= 0xff
		return out
	}

	variants := map[string]SignedMsg{
		"payload": {Payload: tamperByte(msg.Payload), AD: msg.AD, KeyID: msg.KeyID, Datetime: msg.Datetime, Signature: msg.Signature},
		"ad":      {Payload: msg.Payload, AD: tamperByte(msg.AD), KeyID: msg.KeyID, Datetime: msg.Datetime, Signature: msg.Signature},
		"key_id":  {Payload: msg.Payload, AD: msg.AD, KeyID: msg.KeyID + "x", Datetime: msg.Datetime, Signature: msg.Signature},
		"datetime": {Payload: msg.Payload, AD: msg.AD, KeyID: msg.KeyID, Datetime: msg.Datetime + 1, Signature: msg.Signature},
		"signature": {Payload: msg.Payload, AD: msg.AD, KeyID: msg.KeyID, Datetime: msg.Datetime, Signature: tamperByte(msg.Signature)},
	}

	for name, tampered := range variants {
		t.Run(name, func(t *testing.T) {
			_, err := Verify(tampered, pub)
			if err == nil {
				t.Fatalf("expected verification failure after tampering %s", name)
			}
			e, ok := lerrors.Is(err)
			if !ok {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Code != lerrors.CodeCrypto {
				t.Fatalf("expected CodeCrypto, got %v", e.Code)
			}
		})
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	_, pub := genKey(t, "malformed.key")
	msg := SignedMsg{Payload: []byte("x"), Signature: []byte{1, 2, 3}}
	_, err := Verify(msg, pub)
	e, ok := lerrors.Is(err)
	if !ok || e.Kind != lerrors.MalformedSignature {
		t.Fatalf("expected MalformedSignature, got %v", err)
	}
}

func TestWireRoundTrip(t *testing.T) {
	key, pub := genKey(t, "wire.key")
	msg := key.SignWithAD([]byte("payload"), []byte("ad"))

	b, err := EncodeSignedMsg(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSignedMsg(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := Verify(decoded, pub); err != nil {
		t.Fatalf("verify round-tripped message: %v", err)
	}
}

func TestLabeledInfoRoundTrip(t *testing.T) {
	info := LabeledInfo{Topic: "a/b/c", Label: 42}
	b, err := EncodeLabeledInfo(info)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeLabeledInfo(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != info {
		t.Fatalf("got %+v want %+v", got, info)
	}
}
