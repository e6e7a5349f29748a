package broker

import (
	"errors"
	"time"
)

// ReconnectDelay is the fixed backoff applied after a transport-level
// connection error, matching original_source/src/bin/proxy.rs's
// delay_on_disconnect (a flat 3-second sleep, not exponential backoff).
const ReconnectDelay = 3 * time.Second

// Sentinel connection errors a Client implementation wraps or returns
// directly so that Delay can route them. They mirror the variants of
// rumqttc::ConnectionError distinguished by delay_on_disconnect in
// original_source/src/bin/proxy.rs and label_db.rs.
var (
	// ErrProtocolState covers a client observing an unexpected protocol
	// state transition; logged and retried immediately.
	ErrProtocolState = errors.New("broker: unexpected protocol state")
	// ErrFlushTimeout covers a write flush that did not complete in time;
	// logged and retried immediately.
	ErrFlushTimeout = errors.New("broker: flush timeout")
	// ErrTLS covers a TLS handshake failure; logged and retried
	// immediately (a persistent misconfiguration will simply recur until
	// the error counter saturates).
	ErrTLS = errors.New("broker: tls error")
	// ErrNotConnAck covers the broker replying with something other than
	// a connection acknowledgement; logged and retried immediately.
	ErrNotConnAck = errors.New("broker: did not receive connack")
	// ErrRequestsDone covers the outbound request channel closing;
	// logged and retried immediately.
	ErrRequestsDone = errors.New("broker: request channel closed")

	// ErrIO covers a generic I/O failure on the underlying connection;
	// retried after ReconnectDelay.
	ErrIO = errors.New("broker: io error")
	// ErrNetworkTimeout covers a read/write deadline expiring; retried
	// after ReconnectDelay.
	ErrNetworkTimeout = errors.New("broker: network timeout")
	// ErrConnectionRefused covers the broker actively refusing the
	// connection; retried after ReconnectDelay.
	ErrConnectionRefused = errors.New("broker: connection refused")
)

// Delay reports how long a pump or listener should sleep before
// reconnecting after err, by walking err's chain against the sentinel
// errors above. Unrecognized errors are treated as transport-level (the
// conservative default: original_source/src/bin/proxy.rs's Io variant is
// itself the catch-all arm of its match), so Delay returns ReconnectDelay
// for anything it doesn't specifically recognize as protocol-state noise.
func Delay(err error) time.Duration {
	for _, noDelay := range []error{ErrProtocolState, ErrFlushTimeout, ErrTLS, ErrNotConnAck, ErrRequestsDone} {
		if errors.Is(err, noDelay) {
			return 0
		}
	}
	return ReconnectDelay
}
