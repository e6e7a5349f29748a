package broker

import (
	"fmt"
	"testing"
)

func TestDelayNoDelayErrors(t *testing.T) {
	for _, err := range []error{ErrProtocolState, ErrFlushTimeout, ErrTLS, ErrNotConnAck, ErrRequestsDone} {
		if d := Delay(err); d != 0 {
			t.Fatalf("expected zero delay for %v, got %v", err, d)
		}
	}
}

func TestDelayBackoffErrors(t *testing.T) {
	for _, err := range []error{ErrIO, ErrNetworkTimeout, ErrConnectionRefused} {
		if d := Delay(err); d != ReconnectDelay {
			t.Fatalf("expected ReconnectDelay for %v, got %v", err, d)
		}
	}
}

func TestDelayWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("dial: %w", ErrConnectionRefused)
	if d := Delay(wrapped); d != ReconnectDelay {
		t.Fatalf("expected ReconnectDelay for wrapped error, got %v", d)
	}
}

func TestDelayUnknownErrorDefaultsToBackoff(t *testing.T) {
	if d := Delay(fmt.Errorf("some unclassified failure")); d != ReconnectDelay {
		t.Fatalf("expected ReconnectDelay default, got %v", d)
	}
}
