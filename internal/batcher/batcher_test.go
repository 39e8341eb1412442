package batcher

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"provenance-chain/internal/platform"
)

func newTestBatcher(t *testing.T, submitter platform.Submitter, settle time.Duration) (*Batcher, string) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	seed := priv.Seed()
	b, err := New(hex.EncodeToString(seed), submitter, settle, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, b.PublicKey()
}

func TestSubmitBatchRejectsWrongBatcherKey(t *testing.T) {
	sub := platform.NewFakeSubmitter()
	b, _ := newTestBatcher(t, sub, time.Millisecond)
	txns := []Transaction{{Header: Header{BatcherPublicKey: "not-the-server-key"}, Payload: []byte("p")}}
	_, err := b.SubmitBatch(context.Background(), txns, false, time.Second)
	if err == nil {
		t.Fatalf("expected rejection for mismatched batcherPublicKey")
	}
}

func TestSubmitBatchRejectsEmpty(t *testing.T) {
	sub := platform.NewFakeSubmitter()
	b, _ := newTestBatcher(t, sub, time.Millisecond)
	if _, err := b.SubmitBatch(context.Background(), nil, false, time.Second); err == nil {
		t.Fatalf("expected rejection for an empty transaction list")
	}
}

func TestSubmitBatchNoWaitReturnsPending(t *testing.T) {
	sub := platform.NewFakeSubmitter()
	b, pubHex := newTestBatcher(t, sub, time.Millisecond)
	txns := []Transaction{{Header: Header{BatcherPublicKey: pubHex}, Payload: []byte("payload")}}
	result, err := b.SubmitBatch(context.Background(), txns, false, time.Second)
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if result.Status != platform.StatusPending {
		t.Fatalf("expected PENDING without wait, got %s", result.Status)
	}
	if sub.Batch(result.BatchID) == nil {
		t.Fatalf("expected the batch bytes to have reached the submitter")
	}
}

func TestSubmitBatchWaitsForSettlement(t *testing.T) {
	sub := platform.NewFakeSubmitter()
	settle := 20 * time.Millisecond
	b, pubHex := newTestBatcher(t, sub, settle)
	txns := []Transaction{{Header: Header{BatcherPublicKey: pubHex}, Payload: []byte("payload")}}

	done := make(chan Result, 1)
	errc := make(chan error, 1)
	go func() {
		r, err := b.SubmitBatch(context.Background(), txns, true, time.Second)
		if err != nil {
			errc <- err
			return
		}
		done <- r
	}()

	// give SubmitBatch a moment to reach the polling loop, then commit.
	// FakeSubmitter assigns ids sequentially starting at 1.
	time.Sleep(10 * time.Millisecond)
	sub.SetStatus("batch-1", platform.StatusCommitted)

	select {
	case err := <-errc:
		t.Fatalf("SubmitBatch: %v", err)
	case r := <-done:
		if r.Status != platform.StatusCommitted {
			t.Fatalf("expected COMMITTED, got %s", r.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for SubmitBatch to return")
	}
}

func TestSubmitBatchReturnsInvalidWithoutSettleWait(t *testing.T) {
	sub := platform.NewFakeSubmitter()
	b, pubHex := newTestBatcher(t, sub, time.Hour) // would hang the test if INVALID waited
	txns := []Transaction{{Header: Header{BatcherPublicKey: pubHex}, Payload: []byte("payload")}}

	done := make(chan Result, 1)
	go func() {
		r, err := b.SubmitBatch(context.Background(), txns, true, time.Second)
		if err != nil {
			t.Errorf("SubmitBatch: %v", err)
			return
		}
		done <- r
	}()

	time.Sleep(10 * time.Millisecond)
	sub.SetStatus("batch-1", platform.StatusInvalid)

	select {
	case r := <-done:
		if r.Status != platform.StatusInvalid {
			t.Fatalf("expected INVALID, got %s", r.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for SubmitBatch to return")
	}
}

func TestBatchWireRoundTrip(t *testing.T) {
	b := Batch{
		Transactions: []Transaction{
			{Header: Header{
				FamilyName: "supply_chain", FamilyVersion: "1.1", Nonce: "abc123",
				PayloadSha512: "deadbeef", BatcherPublicKey: "pub-b", SignerPublicKey: "pub-s",
				Inputs: []string{"3400de"}, Outputs: []string{"3400de"},
			}, Payload: []byte("payload-bytes"), Signature: "sig-hex"},
		},
		BatcherPublicKey: "pub-b",
		Signature:        "batch-sig-hex",
		Nonce:            "abc123",
	}
	raw := encodeBatch(b)
	got, err := decodeBatch(raw)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Header.Nonce != "abc123" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if string(got.Transactions[0].Payload) != "payload-bytes" {
		t.Fatalf("payload mismatch: %q", got.Transactions[0].Payload)
	}
}
