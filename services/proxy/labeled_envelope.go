package proxy

import "github.com/anchormesh/labelmesh/pkg/broker"

// labeledEnvelope is the unit handed from the source pump to the sink
// pump: the original message's delivery settings plus the two signed
// CBOR payloads ready to publish (spec §4.6: the data-plane SignedMsg to
// the original topic, and the LabeledInfo announcement to mls_topic).
type labeledEnvelope struct {
	topic      string
	qos        broker.QoS
	retain     bool
	signedData []byte

	announceTopic string
	announceQoS   broker.QoS
	signedInfo    []byte
}
