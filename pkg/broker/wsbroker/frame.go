package wsbroker

const (
	opPublish   = "publish"
	opSubscribe = "subscribe"
)

// frame is the wire shape exchanged over the websocket connection. It is
// a minimal stand-in protocol, not MQTT itself: wsbroker exists to give
// broker.Client a concrete, testable implementation since the real
// broker client is out of scope (spec §1).
type frame struct {
	Op      string `json:"op"`
	Topic   string `json:"topic"`
	Payload []byte `json:"payload,omitempty"`
	QoS     int    `json:"qos"`
	Retain  bool   `json:"retain,omitempty"`
}
