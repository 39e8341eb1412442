package ledgersync

import (
	"context"
	"encoding/json"
	"testing"

	"provenance-chain/core"
	"provenance-chain/internal/platform"
	"provenance-chain/internal/store"
)

func TestProjectorAppliesAgentChange(t *testing.T) {
	s := store.NewMemStore()
	p := NewProjector(s, nil, nil)

	agentAddr := core.AgentAddress("pub-1")
	delta := platform.BlockDelta{
		BlockNum: 1,
		BlockID:  "block-1",
		Changes: []platform.StateChange{
			{Address: agentAddr, Value: core.EncodeContainer([]core.Agent{{PublicKey: "pub-1", Name: "Alice", Timestamp: 100}})},
		},
	}

	if err := p.Apply(context.Background(), delta); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	row, ok, err := s.Live(context.Background(), store.TableAgents, "pub-1")
	if err != nil || !ok {
		t.Fatalf("Live: ok=%v err=%v", ok, err)
	}
	var got core.Agent
	if err := json.Unmarshal(row.Doc, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("expected Alice, got %q", got.Name)
	}

	num, ok, err := s.CurrentBlock(context.Background())
	if err != nil || !ok || num != 1 {
		t.Fatalf("CurrentBlock: num=%d ok=%v err=%v", num, ok, err)
	}
}

func TestProjectorPropertyPageEnrichmentEnum(t *testing.T) {
	s := store.NewMemStore()
	p := NewProjector(s, nil, nil)
	ctx := context.Background()

	prop := core.Property{
		Name: "color", RecordID: "rec-1", DataType: core.DataTypeEnum,
		EnumOptions: []string{"RED", "GREEN", "BLUE"}, CurrentPage: 1,
	}
	propAddr := core.PropertyAddress("rec-1", "color")
	block1 := platform.BlockDelta{
		BlockNum: 1, BlockID: "b1",
		Changes: []platform.StateChange{
			{Address: propAddr, Value: core.EncodeContainer([]core.Property{prop})},
		},
	}
	if err := p.Apply(ctx, block1); err != nil {
		t.Fatalf("Apply block1: %v", err)
	}

	page := core.PropertyPage{
		Name: "color", RecordID: "rec-1", PageNum: 1,
		Reports: []core.PropertyValueReport{
			{ReporterIndex: 0, Timestamp: 5, Value: core.PropertyValue{DataType: core.DataTypeEnum, EnumValue: 1}},
		},
	}
	pageAddr := core.PropertyPageAddress("rec-1", "color", 1)
	block2 := platform.BlockDelta{
		BlockNum: 2, BlockID: "b2",
		Changes: []platform.StateChange{
			{Address: pageAddr, Value: core.EncodeContainer([]core.PropertyPage{page})},
		},
	}
	if err := p.Apply(ctx, block2); err != nil {
		t.Fatalf("Apply block2: %v", err)
	}

	row, ok, err := s.Live(ctx, store.TablePropertyPages, "color/rec-1/0001")
	if err != nil || !ok {
		t.Fatalf("Live(propertyPages): ok=%v err=%v", ok, err)
	}

	var got struct {
		Reports []struct {
			EnumLabel string `json:"enumLabel"`
		} `json:"enrichedReports"`
	}
	if err := json.Unmarshal(row.Doc, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Reports) != 1 || got.Reports[0].EnumLabel != "GREEN" {
		t.Fatalf("expected enumLabel GREEN, got %+v", got.Reports)
	}
}

func TestProjectorSkipsPropertyPageWithoutProperty(t *testing.T) {
	s := store.NewMemStore()
	p := NewProjector(s, nil, nil)
	ctx := context.Background()

	page := core.PropertyPage{Name: "missing", RecordID: "rec-2", PageNum: 1}
	pageAddr := core.PropertyPageAddress("rec-2", "missing", 1)
	delta := platform.BlockDelta{
		BlockNum: 1, BlockID: "b1",
		Changes: []platform.StateChange{
			{Address: pageAddr, Value: core.EncodeContainer([]core.PropertyPage{page})},
		},
	}
	if err := p.Apply(ctx, delta); err != nil {
		t.Fatalf("Apply must not fail when the backing Property row is missing: %v", err)
	}
	if _, ok, _ := s.Live(ctx, store.TablePropertyPages, "missing/rec-2/0001"); ok {
		t.Fatalf("expected the orphaned page to be skipped, not stored")
	}
	if num, ok, _ := s.CurrentBlock(ctx); !ok || num != 1 {
		t.Fatalf("block descriptor should still be recorded even when a page is skipped")
	}
}

func TestProjectorSkipsUndecodableChangeWithoutAborting(t *testing.T) {
	s := store.NewMemStore()
	p := NewProjector(s, nil, NewMetrics())
	ctx := context.Background()

	goodAddr := core.RecordAddress("rec-good")
	delta := platform.BlockDelta{
		BlockNum: 1, BlockID: "b1",
		Changes: []platform.StateChange{
			{Address: "not-a-valid-address", Value: []byte("garbage")},
			{Address: goodAddr, Value: core.EncodeContainer([]core.Record{{RecordID: "rec-good", Owner: "pub-a"}})},
		},
	}
	if err := p.Apply(ctx, delta); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok, _ := s.Live(ctx, store.TableRecords, "rec-good"); !ok {
		t.Fatalf("expected the valid change to still apply despite the undecodable one")
	}
}
