// Package wsbroker implements broker.Client over a websocket connection
// using gorilla/websocket. It is grounded on the reconnect loop in
// services/crypto-stream/main.go's runWS: dial, read in a loop, on error
// surface it and retry after a backoff, with an atomic up/down signal
// generalized here into broker.Event notifications.
package wsbroker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anchormesh/labelmesh/pkg/broker"
)

// Client is a broker.Client backed by a single websocket connection,
// reconnecting on read failure per pkg/broker's error-classification
// backoff.
type Client struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	messages chan broker.Message
	events   chan broker.Event
	errs     chan error
	closing  chan struct{}
	closeOne sync.Once
	wg       sync.WaitGroup
}

// Dial connects to url and starts the background read/reconnect loop.
func Dial(ctx context.Context, url string) (*Client, error) {
	c := &Client{
		url:      url,
		dialer:   websocket.DefaultDialer,
		messages: make(chan broker.Message, 256),
		events:   make(chan broker.Event, 8),
		errs:     make(chan error, 8),
		closing:  make(chan struct{}),
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	c.wg.Add(1)
	go c.run(ctx)
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return broker.ErrConnectionRefused
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	defer close(c.messages)
	defer close(c.events)
	defer close(c.errs)

	c.emitEvent(broker.EventConnected)

	for {
		select {
		case <-c.closing:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.emitEvent(broker.EventDisconnected)
			c.emitError(broker.ErrIO)

			select {
			case <-c.closing:
				return
			case <-ctx.Done():
				return
			case <-time.After(broker.Delay(broker.ErrIO)):
			}

			if err := c.connect(ctx); err != nil {
				c.emitError(err)
				continue
			}
			c.emitEvent(broker.EventConnected)
			continue
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		if f.Op != opPublish {
			continue
		}

		msg := broker.Message{Topic: f.Topic, Payload: f.Payload, QoS: broker.QoS(f.QoS), Retain: f.Retain}
		select {
		case c.messages <- msg:
		default:
			// drop on backpressure, mirroring crypto-stream's recordsCh handling
		}
	}
}

func (c *Client) emitEvent(k broker.EventKind) {
	select {
	case c.events <- broker.Event{Kind: k}:
	default:
	}
}

func (c *Client) emitError(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

// Publish sends a publish frame over the websocket connection.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, qos broker.QoS, retain bool) error {
	return c.writeFrame(frame{Op: opPublish, Topic: topic, Payload: payload, QoS: int(qos), Retain: retain})
}

// Subscribe sends a subscribe frame over the websocket connection.
func (c *Client) Subscribe(ctx context.Context, topic string, qos broker.QoS) error {
	return c.writeFrame(frame{Op: opSubscribe, Topic: topic, QoS: int(qos)})
}

func (c *Client) writeFrame(f frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return broker.ErrIO
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Messages returns the inbound publish channel.
func (c *Client) Messages() <-chan broker.Message { return c.messages }

// Events returns the connection lifecycle channel.
func (c *Client) Events() <-chan broker.Event { return c.events }

// Errors returns the transport error channel.
func (c *Client) Errors() <-chan error { return c.errs }

// Close stops the reconnect loop and closes the underlying connection.
func (c *Client) Close() error {
	c.closeOne.Do(func() { close(c.closing) })

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}
