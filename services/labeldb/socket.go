package labeldb

import (
	"bufio"
	"context"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
	"github.com/anchormesh/labelmesh/pkg/labeldb"
	"github.com/anchormesh/labelmesh/pkg/telemetry"
	"github.com/anchormesh/labelmesh/pkg/topictrie"
)

// maxLineLength bounds a single GET request line: 4 ("GET ") + up to
// 65535 bytes of topic + 1 trailing newline, matching the reference
// implementation's fixed [0; 4+65535+1] read buffer (spec §4.5). serve
// enforces this bound with bufio.Reader.ReadSlice rather than ReadString/
// ReadBytes: those two reassemble a line across as many internal buffer
// refills as it takes to find the delimiter, so a bufio.Reader sized to
// maxLineLength does not actually cap how much of an unterminated line
// they will read into memory. ReadSlice instead reports
// bufio.ErrBufferFull the moment the line overruns the buffer without a
// '\n', which is what lets this bound hold.
const maxLineLength = 4 + 65535 + 1

const getPrefix = "GET "

// SocketServer accepts clients on a Unix-domain socket and answers
// line-oriented GET requests against the shared actor (spec §4.5).
// Connections are persistent: a client may issue many requests in order
// over the same connection.
type SocketServer struct {
	path    string
	actor   *labeldb.Actor
	log     *telemetry.Logger
	metrics *telemetry.Metrics
	health  *telemetry.Health
}

// NewSocketServer wires a SocketServer against the configured path and
// the shared actor.
func NewSocketServer(path string, actor *labeldb.Actor, log *telemetry.Logger, metrics *telemetry.Metrics, health *telemetry.Health) *SocketServer {
	return &SocketServer{path: path, actor: actor, log: log, metrics: metrics, health: health}
}

// Run binds the socket, removing any stale file left by a dead prior
// owner (spec §6: "unlink on teardown or on startup if a stale file
// exists"), and accepts connections until ctx is cancelled.
func (s *SocketServer) Run(ctx context.Context) error {
	if c, err := net.Dial("unix", s.path); err == nil {
		c.Close()
		return lerrors.Transport("socket "+s.path+" is still served by a live process", nil)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return lerrors.Config("remove stale socket "+s.path, err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return lerrors.Transport("bind socket "+s.path, err)
	}
	defer os.Remove(s.path)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.health.Set("socket", telemetry.StatusOK, "")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return lerrors.Transport("accept on "+s.path, err)
		}
		s.metrics.SocketConnections.Inc()
		go s.serve(ctx, conn)
	}
}

// serve handles one connection's requests in order until the client
// disconnects, sends an unrecognized command, or ctx is cancelled.
func (s *SocketServer) serve(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	sctx := telemetry.ContextWithSpanContext(ctx, telemetry.SpanContext{TraceID: connID})
	defer conn.Close()

	reader := bufio.NewReaderSize(conn, maxLineLength)
	for {
		raw, err := reader.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			s.log.Warn(sctx, "request line exceeds limit", map[string]any{"conn": connID})
			return
		}
		if err != nil {
			return
		}

		line := strings.TrimSuffix(string(raw), "\n")
		s.log.Debug(sctx, "processing socket request", map[string]any{"conn": connID, "line": line})
		if !strings.HasPrefix(line, getPrefix) {
			s.log.Warn(sctx, "unknown socket command", map[string]any{"conn": connID})
			s.metrics.SocketRequests.WithLabelValues("protocol_error").Inc()
			return
		}

		topic := strings.TrimPrefix(line, getPrefix)
		res, err := s.actor.Get(sctx, topic)
		if err != nil {
			s.log.Error(sctx, "actor get failed", map[string]any{"conn": connID, "error": err})
			return
		}
		s.metrics.ActorQueueDepth.Set(float64(s.actor.QueueDepth()))

		outcome, reply := replyLine(res)
		s.metrics.SocketRequests.WithLabelValues(outcome).Inc()
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			return
		}
	}
}

// replyLine renders a Result as the wire reply line (spec §4.5: one of
// "None", a decimal label, or "Denied") plus an outcome label for
// metrics.
func replyLine(res topictrie.Result) (outcome, line string) {
	if label, ok := res.Label(); ok {
		return "some", strconv.FormatUint(uint64(label), 10)
	}
	if _, ok := res.Denied(); ok {
		return "denied", "Denied"
	}
	return "none", "None"
}
