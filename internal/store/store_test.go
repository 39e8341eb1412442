package store

import (
	"context"
	"testing"
)

func TestBlockUpsertIdempotentReplay(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.BlockUpsert(ctx, TableRecords, "rec-1", []byte("v1"), 10); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}
	if err := s.BlockUpsert(ctx, TableRecords, "rec-1", []byte("v1-replay"), 10); err != nil {
		t.Fatalf("BlockUpsert replay: %v", err)
	}

	row, ok, err := s.Live(ctx, TableRecords, "rec-1")
	if err != nil || !ok {
		t.Fatalf("Live: ok=%v err=%v", ok, err)
	}
	if string(row.Doc) != "v1" {
		t.Fatalf("replay at the same block must not overwrite the existing row, got %q", row.Doc)
	}
}

func TestBlockUpsertClosesPriorVersion(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.BlockUpsert(ctx, TableRecords, "rec-1", []byte("v1"), 10); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}
	if err := s.BlockUpsert(ctx, TableRecords, "rec-1", []byte("v2"), 20); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}

	live, ok, err := s.Live(ctx, TableRecords, "rec-1")
	if err != nil || !ok {
		t.Fatalf("Live: ok=%v err=%v", ok, err)
	}
	if string(live.Doc) != "v2" || live.EndBlockNum != MaxBlockNum {
		t.Fatalf("expected live row to be v2 open-ended, got %+v", live)
	}

	old, ok, err := s.AsOf(ctx, TableRecords, "rec-1", 15)
	if err != nil || !ok {
		t.Fatalf("AsOf(15): ok=%v err=%v", ok, err)
	}
	if string(old.Doc) != "v1" || old.EndBlockNum != 20 {
		t.Fatalf("expected v1 closed at block 20, got %+v", old)
	}

	_, ok, err = s.AsOf(ctx, TableRecords, "rec-1", 20)
	if err != nil || !ok {
		t.Fatalf("AsOf(20): ok=%v err=%v", ok, err)
	}
	row20, _, _ := s.AsOf(ctx, TableRecords, "rec-1", 20)
	if string(row20.Doc) != "v2" {
		t.Fatalf("AsOf(20) should see v2 (half-open interval), got %q", row20.Doc)
	}

	_, ok, err = s.AsOf(ctx, TableRecords, "rec-1", 5)
	if err != nil {
		t.Fatalf("AsOf(5): %v", err)
	}
	if ok {
		t.Fatalf("AsOf before the first version was written must return false")
	}
}

func TestListLiveOnlyReturnsOpenRows(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.BlockUpsert(ctx, TableAgents, "agent-a", []byte("a1"), 1); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}
	if err := s.BlockUpsert(ctx, TableAgents, "agent-b", []byte("b1"), 2); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}
	if err := s.BlockUpsert(ctx, TableAgents, "agent-a", []byte("a2"), 3); err != nil {
		t.Fatalf("BlockUpsert: %v", err)
	}

	rows, err := s.ListLive(ctx, TableAgents)
	if err != nil {
		t.Fatalf("ListLive: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 live rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].IndexValue != "agent-a" || string(rows[0].Doc) != "a2" {
		t.Fatalf("expected the live version of agent-a to be a2, got %+v", rows[0])
	}
}

func TestCurrentBlockTracksMax(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, ok, err := s.CurrentBlock(ctx); err != nil || ok {
		t.Fatalf("CurrentBlock on an empty store must report ok=false, got ok=%v err=%v", ok, err)
	}

	if err := s.InsertBlock(ctx, 5, "block-5"); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := s.InsertBlock(ctx, 9, "block-9"); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := s.InsertBlock(ctx, 7, "block-7"); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}

	num, ok, err := s.CurrentBlock(ctx)
	if err != nil || !ok {
		t.Fatalf("CurrentBlock: ok=%v err=%v", ok, err)
	}
	if num != 9 {
		t.Fatalf("expected CurrentBlock to report the max inserted block (9), got %d", num)
	}
}

func TestLiveMissingIndexValue(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, ok, err := s.Live(ctx, TableProperties, "does-not-exist")
	if err != nil {
		t.Fatalf("Live: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for an index value never written")
	}
}
