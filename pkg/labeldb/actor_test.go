package labeldb

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestInsertThenGet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := Start(ctx)

	if err := a.Insert(ctx, "in/1", 5); err != nil {
		t.Fatalf("insert: %v", err)
	}
	res, err := a.Get(ctx, "in/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, ok := res.Label()
	if !ok || got != 5 {
		t.Fatalf("got %v, want Some(5)", res)
	}
}

func TestGetBeforeInsertIsNone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := Start(ctx)

	res, err := a.Get(ctx, "never/inserted")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !res.IsNone() {
		t.Fatalf("got %v, want None", res)
	}
}

// TestSequentialConsistency exercises spec's sequentiality property: a
// request that is sent after another request's reply has been observed
// must see its effects, since the actor processes its queue in order.
func TestSequentialConsistency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := Start(ctx)

	for i := 0; i < 50; i++ {
		if err := a.Insert(ctx, "seq/topic", topicLabel(i)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		res, err := a.Get(ctx, "seq/topic")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		got, ok := res.Label()
		if !ok || int(got) != i {
			t.Fatalf("iteration %d: got %v, want Some(%d)", i, res, i)
		}
	}
}

func topicLabel(i int) uint16 { return uint16(i) }

// TestConcurrentClientsSerialize fires many concurrent inserts at
// distinct topics from multiple goroutines and checks every one is
// visible afterward: concurrent callers may interleave in any order, but
// none of their writes may be lost or corrupted (spec §4.4).
func TestConcurrentClientsSerialize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := Start(ctx)

	const clients = 20
	var wg sync.WaitGroup
	wg.Add(clients)
	for i := 0; i < clients; i++ {
		go func(i int) {
			defer wg.Done()
			topic := "concurrent/" + string(rune('a'+i))
			if err := a.Insert(ctx, topic, uint16(i)); err != nil {
				t.Errorf("insert %d: %v", i, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent inserts did not complete")
	}

	for i := 0; i < clients; i++ {
		topic := "concurrent/" + string(rune('a'+i))
		res, err := a.Get(ctx, topic)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		got, ok := res.Label()
		if !ok || int(got) != i {
			t.Fatalf("topic %s: got %v, want Some(%d)", topic, res, i)
		}
	}
}
