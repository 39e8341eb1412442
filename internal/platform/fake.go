package platform

import (
	"context"
	"sync"
)

// FakeSubmitter is an in-memory Submitter used by internal/batcher's tests:
// it records submitted batches and lets the test script the status each one
// reports back.
type FakeSubmitter struct {
	mu       sync.Mutex
	batches  map[string][]byte
	statuses map[string]BatchStatus
	nextID   int
}

func NewFakeSubmitter() *FakeSubmitter {
	return &FakeSubmitter{
		batches:  make(map[string][]byte),
		statuses: make(map[string]BatchStatus),
	}
}

func (f *FakeSubmitter) Submit(_ context.Context, batch []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmtBatchID(f.nextID)
	f.batches[id] = batch
	f.statuses[id] = StatusPending
	return id, nil
}

func (f *FakeSubmitter) Status(_ context.Context, batchID string) (BatchStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[batchID], nil
}

// SetStatus lets a test move a batch through PENDING -> COMMITTED/INVALID.
func (f *FakeSubmitter) SetStatus(batchID string, status BatchStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[batchID] = status
}

// Batch returns the bytes last submitted for batchID, for test assertions.
func (f *FakeSubmitter) Batch(batchID string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batches[batchID]
}

func fmtBatchID(n int) string {
	const hex = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{hex[n%16]}, buf...)
		n /= 16
	}
	return "batch-" + string(buf)
}

// FakeSubscription is an in-memory Subscription a test can push BlockDelta
// values into.
type FakeSubscription struct {
	ch  chan BlockDelta
	err error
}

func NewFakeSubscription(buffer int) *FakeSubscription {
	return &FakeSubscription{ch: make(chan BlockDelta, buffer)}
}

func (s *FakeSubscription) Push(d BlockDelta) { s.ch <- d }

func (s *FakeSubscription) Deltas() <-chan BlockDelta { return s.ch }

func (s *FakeSubscription) Err() error { return s.err }

func (s *FakeSubscription) Close() error {
	close(s.ch)
	return nil
}

// FakeEventClient always returns the same pre-built Subscription regardless
// of the requested namespace/fromBlock, which is all internal/ledgersync's
// tests need.
type FakeEventClient struct {
	Sub *FakeSubscription
}

func (c *FakeEventClient) Subscribe(_ context.Context, _ string, _ uint64) (Subscription, error) {
	return c.Sub, nil
}
