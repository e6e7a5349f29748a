package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Service: "proxy", Level: LevelInfo})

	l.Info(context.Background(), "source connected", map[string]any{"broker": "mqtt://b:1883"})

	line := strings.TrimRight(buf.String(), "\n")
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if ev.Level != LevelInfo || ev.Service != "proxy" || ev.Msg != "source connected" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.Fields) != 1 || ev.Fields[0].K != "broker" {
		t.Fatalf("unexpected fields: %+v", ev.Fields)
	}
}

func TestLoggerSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Service: "labeldb", Level: LevelWarn})

	l.Info(context.Background(), "should not appear", nil)
	l.Debug(context.Background(), "should not appear either", nil)

	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}
}

func TestLoggerIncludesConnIDFromSpanContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Service: "labeldb", Level: LevelInfo})

	ctx := ContextWithSpanContext(context.Background(), SpanContext{TraceID: "conn-123"})
	l.Info(ctx, "handling GET", nil)

	var ev Event
	if err := json.Unmarshal(bytes.TrimRight(buf.Bytes(), "\n"), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	found := false
	for _, f := range ev.Fields {
		if f.K == "conn_id" && f.V == "conn-123" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected conn_id field, got %+v", ev.Fields)
	}
}
