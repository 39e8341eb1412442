package core

import "testing"

func TestContainerEncodeDecodeRoundTrip(t *testing.T) {
	agents := []Agent{
		{PublicKey: "pub2", Name: "Bob", Timestamp: 2},
		{PublicKey: "pub1", Name: "Alice", Timestamp: 1},
	}
	agents = SortEntries(agents)
	if agents[0].PublicKey != "pub1" || agents[1].PublicKey != "pub2" {
		t.Fatalf("expected sorted entries, got %+v", agents)
	}

	raw := EncodeContainer(agents)
	decoded, err := DecodeContainer(raw, DecodeAgent)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if len(decoded) != 2 || decoded[0].PublicKey != "pub1" || decoded[1].PublicKey != "pub2" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestUpsertInsertsAndReplaces(t *testing.T) {
	var agents []Agent
	agents = Upsert(agents, Agent{PublicKey: "pub2", Name: "Bob"})
	agents = Upsert(agents, Agent{PublicKey: "pub1", Name: "Alice"})
	if len(agents) != 2 || agents[0].PublicKey != "pub1" {
		t.Fatalf("expected sorted insert, got %+v", agents)
	}

	agents = Upsert(agents, Agent{PublicKey: "pub1", Name: "Alice Updated"})
	if len(agents) != 2 {
		t.Fatalf("expected replace not append, got %d entries", len(agents))
	}
	found, ok := Find(agents, "pub1")
	if !ok || found.Name != "Alice Updated" {
		t.Fatalf("expected updated entry, got %+v ok=%v", found, ok)
	}
}

func TestFindMissingReturnsZeroValue(t *testing.T) {
	_, ok := Find([]Agent{{PublicKey: "pub1"}}, "missing")
	if ok {
		t.Fatalf("expected ok=false for a missing key")
	}
}

func TestDecodeContainerEmptyBytes(t *testing.T) {
	decoded, err := DecodeContainer([]byte{}, DecodeAgent)
	if err != nil {
		t.Fatalf("DecodeContainer of empty bytes: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected zero entries, got %d", len(decoded))
	}
}
