package platform

import (
	"context"
	"testing"
)

func TestBlockDeltaRoundTrip(t *testing.T) {
	want := BlockDelta{
		BlockNum: 42,
		BlockID:  "block-abc",
		Changes: []StateChange{
			{Address: "3400deae" + "00", Value: []byte{1, 2, 3}},
			{Address: "3400deee" + "00", Deleted: true},
		},
	}
	raw := encodeBlockDelta(want)
	got, err := decodeBlockDelta(raw)
	if err != nil {
		t.Fatalf("decodeBlockDelta: %v", err)
	}
	if got.BlockNum != want.BlockNum || got.BlockID != want.BlockID {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got.Changes))
	}
	if got.Changes[1].Deleted != true {
		t.Fatalf("expected second change to be a tombstone: %+v", got.Changes[1])
	}
}

func TestStatusResponseRoundTrip(t *testing.T) {
	w := &pwriter{}
	w.putString(tagStatusID, "batch-1")
	w.putVarint(tagStatusResult, uint64(StatusCommitted))
	status, err := decodeStatusResponse(w.buf)
	if err != nil {
		t.Fatalf("decodeStatusResponse: %v", err)
	}
	if status != StatusCommitted {
		t.Fatalf("want COMMITTED, got %s", status)
	}
}

func TestFakeSubmitterLifecycle(t *testing.T) {
	ctx := context.Background()
	sub := NewFakeSubmitter()
	id, err := sub.Submit(ctx, []byte("batch-bytes"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	status, _ := sub.Status(ctx, id)
	if status != StatusPending {
		t.Fatalf("want PENDING immediately after submit, got %s", status)
	}
	sub.SetStatus(id, StatusCommitted)
	status, _ = sub.Status(ctx, id)
	if status != StatusCommitted {
		t.Fatalf("want COMMITTED after SetStatus, got %s", status)
	}
	if string(sub.Batch(id)) != "batch-bytes" {
		t.Fatalf("Batch() did not return the submitted bytes")
	}
}
