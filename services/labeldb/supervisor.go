package labeldb

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Supervisor runs the broker listener and the socket server concurrently
// against the shared actor, returning as soon as either exits and
// cancelling the other (spec §5, mirroring the proxy's supervisor).
type Supervisor struct {
	listener *Listener
	socket   *SocketServer
}

// NewSupervisor pairs a Listener with the SocketServer sharing its
// actor.
func NewSupervisor(listener *Listener, socket *SocketServer) *Supervisor {
	return &Supervisor{listener: listener, socket: socket}
}

// Run blocks until ctx is cancelled or one of the two tasks returns an
// error, in which case the other is cancelled and Run returns that
// first error.
func (s *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.listener.Run(gctx)
	})
	g.Go(func() error {
		return s.socket.Run(gctx)
	})

	return g.Wait()
}
