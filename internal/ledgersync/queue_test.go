package ledgersync

import (
	"context"
	"sync"
	"testing"
	"time"

	"provenance-chain/internal/platform"
)

func TestQueueAppliesJobsInFIFOOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []uint64

	q := NewQueue(8, func(_ context.Context, delta platform.BlockDelta) error {
		time.Sleep(time.Millisecond) // exercise serialization, not just ordering-by-luck
		mu.Lock()
		seen = append(seen, delta.BlockNum)
		mu.Unlock()
		return nil
	}, nil, NewMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)
	defer cancel()

	for i := uint64(1); i <= 5; i++ {
		if err := q.Enqueue(ctx, platform.BlockDelta{BlockNum: i}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for all jobs to apply, saw %d/5", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, num := range seen {
		if num != uint64(i+1) {
			t.Fatalf("expected FIFO order 1..5, got %v", seen)
		}
	}
}

func TestQueueEnqueueRespectsContextCancellation(t *testing.T) {
	q := NewQueue(1, func(context.Context, platform.BlockDelta) error {
		select {} // never returns; keeps the one buffer slot full
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)

	if err := q.Enqueue(ctx, platform.BlockDelta{BlockNum: 1}); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	// second job fills the buffered channel's one slot
	if err := q.Enqueue(ctx, platform.BlockDelta{BlockNum: 2}); err != nil {
		t.Fatalf("second Enqueue: %v", err)
	}

	cancelCtx, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if err := q.Enqueue(cancelCtx, platform.BlockDelta{BlockNum: 3}); err == nil {
		t.Fatalf("expected Enqueue to respect an already-canceled context")
	}
	cancel()
}
