package envelope

import (
	"github.com/fxamacker/cbor/v2"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// LabeledInfo is the (topic, label) pair announced on the mls_topic once
// a proxy labels a message (spec §3). It is serialized as the Payload of
// a SignedMsg with empty AD.
type LabeledInfo struct {
	Topic string `cbor:"topic"`
	Label uint16 `cbor:"label"`
}

// AdditionalData is bound into the signature of a data-plane labeled
// message without being part of the protected payload (spec §3/§4.6).
type AdditionalData struct {
	Label uint16 `cbor:"label"`
}

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// EncodeSignedMsg produces the canonical CBOR encoding of msg.
func EncodeSignedMsg(msg SignedMsg) ([]byte, error) {
	b, err := encMode.Marshal(msg)
	if err != nil {
		return nil, lerrors.Codec("encode signed message", err)
	}
	return b, nil
}

// DecodeSignedMsg decodes the outer CBOR envelope into a SignedMsg.
func DecodeSignedMsg(b []byte) (SignedMsg, error) {
	var msg SignedMsg
	if err := cbor.Unmarshal(b, &msg); err != nil {
		return SignedMsg{}, lerrors.Codec("decode signed message", err)
	}
	return msg, nil
}

// EncodeLabeledInfo produces the canonical CBOR encoding of info.
func EncodeLabeledInfo(info LabeledInfo) ([]byte, error) {
	b, err := encMode.Marshal(info)
	if err != nil {
		return nil, lerrors.Codec("encode labeled info", err)
	}
	return b, nil
}

// DecodeLabeledInfo decodes a verified payload into a LabeledInfo.
func DecodeLabeledInfo(b []byte) (LabeledInfo, error) {
	var info LabeledInfo
	if err := cbor.Unmarshal(b, &info); err != nil {
		return LabeledInfo{}, lerrors.Codec("decode labeled info", err)
	}
	return info, nil
}

// EncodeAdditionalData produces the canonical CBOR encoding of ad, used
// to build the AD field of a data-plane SignedMsg.
func EncodeAdditionalData(ad AdditionalData) ([]byte, error) {
	b, err := encMode.Marshal(ad)
	if err != nil {
		return nil, lerrors.Codec("encode additional data", err)
	}
	return b, nil
}
