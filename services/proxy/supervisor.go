package proxy

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Supervisor runs the source and sink pumps concurrently and returns as
// soon as either one exits, cancelling the other's context first (spec
// §5, mirroring original_source/src/bin/proxy.rs's main_loop, which
// spawns source_handle/sink_handle and tokio::select!s on both).
type Supervisor struct {
	source *SourcePump
	sink   *SinkPump
}

// NewSupervisor pairs a SourcePump with the SinkPump draining its
// handoff buffer.
func NewSupervisor(source *SourcePump, sink *SinkPump) *Supervisor {
	return &Supervisor{source: source, sink: sink}
}

// Run blocks until ctx is cancelled or one of the pumps returns an
// error, in which case the other is cancelled and Run returns that
// first error.
func (s *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.source.Run(gctx)
	})
	g.Go(func() error {
		return s.sink.Run(gctx)
	})

	return g.Wait()
}
