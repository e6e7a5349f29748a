package wsbroker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startEchoServer(t *testing.T) (*httptest.Server, chan<- frame) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	toSend := make(chan frame, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case f := <-toSend:
				b, _ := json.Marshal(f)
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}))

	t.Cleanup(srv.Close)
	return srv, toSend
}

func TestPublishAndReceive(t *testing.T) {
	srv, toSend := startEchoServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"

	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	toSend <- frame{Op: opPublish, Topic: "sensors/temp", Payload: []byte("21.5"), QoS: 0}

	select {
	case msg := <-c.Messages():
		if msg.Topic != "sensors/temp" || string(msg.Payload) != "21.5" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive message")
	}
}

func TestPublishWritesFrame(t *testing.T) {
	srv, _ := startEchoServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"

	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Publish(context.Background(), "out/topic", []byte("payload"), 1, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestConnectedEventOnDial(t *testing.T) {
	srv, _ := startEchoServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"

	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	select {
	case ev := <-c.Events():
		if ev.Kind != 0 {
			t.Fatalf("expected EventConnected, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive connected event")
	}
}
