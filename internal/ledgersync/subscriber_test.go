package ledgersync

import (
	"context"
	"testing"
	"time"

	"provenance-chain/internal/platform"
)

func TestSubscriberForwardsDeltas(t *testing.T) {
	sub := platform.NewFakeSubscription(4)
	client := &platform.FakeEventClient{Sub: sub}
	s := NewSubscriber(client, "3400de", time.Hour, nil)

	out := make(chan platform.BlockDelta, 4)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx, out)

	sub.Push(platform.BlockDelta{BlockNum: 1, BlockID: "b1"})
	sub.Push(platform.BlockDelta{BlockNum: 2, BlockID: "b2"})

	select {
	case d := <-out:
		if d.BlockNum != 1 {
			t.Fatalf("expected block 1 first, got %d", d.BlockNum)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the first delta")
	}
	select {
	case d := <-out:
		if d.BlockNum != 2 {
			t.Fatalf("expected block 2 second, got %d", d.BlockNum)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the second delta")
	}

	cancel()
}
