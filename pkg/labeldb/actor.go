// Package labeldb wraps pkg/topictrie in a single-writer actor: one
// goroutine owns the trie and serializes all Insert/Get operations
// through a bounded request channel, so concurrent callers (the broker
// listener and the socket server, spec §4.4) never need their own
// locking.
//
// Grounded on original_source/src/topicdb.rs's Database actor, which
// spawns a task looping `rx.recv()` over an
// `mpsc::channel::<DBRequest>(3200)` and replies via a oneshot channel
// per request; Go's analogue is a buffered channel of request structs
// each carrying its own reply channel.
package labeldb

import (
	"context"

	"github.com/anchormesh/labelmesh/pkg/topictrie"

	lerrors "github.com/anchormesh/labelmesh/pkg/errors"
)

// QueueCapacity is the bound on outstanding requests, matching the
// reference implementation's mpsc channel capacity of 3200.
const QueueCapacity = 3200

type opKind int

const (
	opInsert opKind = iota
	opGet
)

type request struct {
	op    opKind
	topic string
	label topictrie.Label

	// result is nil for opInsert: insert is enqueue-and-forget (spec
	// §4.3) and only opGet ever awaits a reply.
	result chan topictrie.Result
}

// Actor serializes access to a TopicTrie behind a single goroutine.
type Actor struct {
	requests chan request
}

// Start launches the actor's run loop and returns a handle to it. The
// loop exits when ctx is cancelled.
func Start(ctx context.Context) *Actor {
	a := &Actor{requests: make(chan request, QueueCapacity)}
	go a.run(ctx)
	return a
}

func (a *Actor) run(ctx context.Context) {
	trie := topictrie.New()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.requests:
			switch req.op {
			case opInsert:
				trie.Insert(req.topic, req.label)
			case opGet:
				req.result <- trie.Get(req.topic)
			}
		}
	}
}

// Insert records label for topic. It is enqueue-and-forget: it returns as
// soon as the request is accepted onto the actor's queue, not once the
// actor has applied it (spec §4.3), matching
// original_source/src/topicdb.rs's Database::insert, which only does
// self.tx.send(msg).await with no reply channel at all.
func (a *Actor) Insert(ctx context.Context, topic string, label topictrie.Label) error {
	req := request{op: opInsert, topic: topic, label: label}

	select {
	case a.requests <- req:
		return nil
	case <-ctx.Done():
		return lerrors.Actor("send insert request", ctx.Err())
	}
}

// QueueDepth reports the number of requests currently buffered on the
// actor's channel, for callers exporting it as a gauge.
func (a *Actor) QueueDepth() int {
	return len(a.requests)
}

// Get resolves pattern against the actor's trie and returns the result.
func (a *Actor) Get(ctx context.Context, pattern string) (topictrie.Result, error) {
	reply := make(chan topictrie.Result, 1)
	req := request{op: opGet, topic: pattern, result: reply}

	select {
	case a.requests <- req:
	case <-ctx.Done():
		return topictrie.Result{}, lerrors.Actor("send get request", ctx.Err())
	}

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return topictrie.Result{}, lerrors.Actor("await get reply", ctx.Err())
	}
}
