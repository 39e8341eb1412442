package core

import (
	"testing"
)

func mustDispatch(t *testing.T, state StateRW, signer string, payload Payload) {
	t.Helper()
	if err := Dispatch(payload.Encode(), signer, state); err != nil {
		t.Fatalf("dispatch %s failed: %v", payload.Action, err)
	}
}

func dispatchExpectErr(t *testing.T, state StateRW, signer string, payload Payload) error {
	t.Helper()
	return Dispatch(payload.Encode(), signer, state)
}

// scenario 1: type then record (spec.md §8).
func TestScenarioTypeThenRecord(t *testing.T) {
	state := NewMemoryState()
	const s1 = "s1pubkey"

	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Alice"},
	})
	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateRecordType, Timestamp: 2,
		CreateRecordType: &CreateRecordTypeBody{
			Name: "asset",
			Properties: []PropertySchema{
				{Name: "temp", DataType: DataTypeNumber, NumberExponent: -1, Required: true},
			},
		},
	})
	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateRecord, Timestamp: 3,
		CreateRecord: &CreateRecordBody{
			RecordID:   "r1",
			RecordType: "asset",
			Properties: []PropertyValue{
				{Name: "temp", DataType: DataTypeNumber, NumberValue: 210, NumberExp: -1},
			},
		},
	})

	agents, err := loadContainer(state, AgentAddress(s1), DecodeAgent)
	if err != nil || len(agents) != 1 {
		t.Fatalf("expected one agent, got %v err=%v", agents, err)
	}
	records, err := loadContainer(state, RecordAddress("r1"), DecodeRecord)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one record, got %v err=%v", records, err)
	}
	rec := records[0]
	if rec.Owner != s1 || rec.Custodian != s1 {
		t.Fatalf("expected owner=custodian=%s, got owner=%s custodian=%s", s1, rec.Owner, rec.Custodian)
	}

	props, err := loadContainer(state, PropertyAddress("r1", "temp"), DecodeProperty)
	if err != nil || len(props) != 1 {
		t.Fatalf("expected one property, got %v err=%v", props, err)
	}
	if len(props[0].Reporters) != 1 || !props[0].Reporters[0].Authorized || props[0].Reporters[0].PublicKey != s1 {
		t.Fatalf("unexpected reporters: %+v", props[0].Reporters)
	}

	page, err := loadPropertyPage(state, "r1", "temp", 1)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if len(page.Reports) != 1 || page.Reports[0].Value.NumberValue != 210 || page.Reports[0].Value.NumberExp != -1 {
		t.Fatalf("unexpected page reports: %+v", page.Reports)
	}
}

func setupTypeAndRecord(t *testing.T, state StateRW, owner string) {
	t.Helper()
	mustDispatch(t, state, owner, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Alice"},
	})
	mustDispatch(t, state, owner, Payload{
		Action: ActionCreateRecordType, Timestamp: 2,
		CreateRecordType: &CreateRecordTypeBody{
			Name: "asset",
			Properties: []PropertySchema{
				{Name: "temp", DataType: DataTypeNumber, NumberExponent: -1, Required: true},
			},
		},
	})
	mustDispatch(t, state, owner, Payload{
		Action: ActionCreateRecord, Timestamp: 3,
		CreateRecord: &CreateRecordBody{
			RecordID:   "r1",
			RecordType: "asset",
			Properties: []PropertyValue{
				{Name: "temp", DataType: DataTypeNumber, NumberValue: 210, NumberExp: -1},
			},
		},
	})
}

// scenario 2: authorized reporter.
func TestScenarioAuthorizedReporter(t *testing.T) {
	state := NewMemoryState()
	const s1, s2 = "s1pubkey", "s2pubkey"
	setupTypeAndRecord(t, state, s1)

	mustDispatch(t, state, s2, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Bob"},
	})
	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateProposal, Timestamp: 4,
		CreateProposal: &CreateProposalBody{
			RecordID: "r1", ReceivingAgent: s2, Role: RoleReporter, Properties: []string{"temp"},
		},
	})
	mustDispatch(t, state, s2, Payload{
		Action: ActionAnswerProposal, Timestamp: 5,
		AnswerProposal: &AnswerProposalBody{
			RecordID: "r1", ReceivingAgent: s2, Role: RoleReporter, Timestamp: 4, Response: AnswerAccept,
		},
	})
	mustDispatch(t, state, s2, Payload{
		Action: ActionUpdateProperties, Timestamp: 6,
		UpdateProperties: &UpdatePropertiesBody{
			RecordID: "r1",
			Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 230, NumberExp: -1}},
		},
	})

	props, err := loadContainer(state, PropertyAddress("r1", "temp"), DecodeProperty)
	if err != nil || len(props) != 1 {
		t.Fatalf("load property: %v err=%v", props, err)
	}
	authorized := map[string]bool{}
	for _, r := range props[0].Reporters {
		authorized[r.PublicKey] = r.Authorized
	}
	if !authorized[s1] || !authorized[s2] {
		t.Fatalf("expected both reporters authorized: %+v", props[0].Reporters)
	}

	page, err := loadPropertyPage(state, "r1", "temp", 1)
	if err != nil || len(page.Reports) != 2 {
		t.Fatalf("expected two reports, got %+v err=%v", page.Reports, err)
	}
	if page.Reports[0].Timestamp > page.Reports[1].Timestamp {
		t.Fatalf("reports not sorted by timestamp: %+v", page.Reports)
	}
}

// scenario 3: unauthorized update is rejected and has no state effect.
func TestScenarioUnauthorizedUpdate(t *testing.T) {
	state := NewMemoryState()
	const s1, s3 = "s1pubkey", "s3pubkey"
	setupTypeAndRecord(t, state, s1)
	mustDispatch(t, state, s3, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Carol"},
	})

	err := dispatchExpectErr(t, state, s3, Payload{
		Action: ActionUpdateProperties, Timestamp: 9,
		UpdateProperties: &UpdatePropertiesBody{
			RecordID: "r1",
			Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 400, NumberExp: -1}},
		},
	})
	if err == nil {
		t.Fatalf("expected rejection for unauthorized reporter")
	}

	page, lErr := loadPropertyPage(state, "r1", "temp", 1)
	if lErr != nil {
		t.Fatalf("load page: %v", lErr)
	}
	if len(page.Reports) != 1 {
		t.Fatalf("expected no new report after rejected update, got %+v", page.Reports)
	}
}

// scenario 4: ownership transfer.
func TestScenarioOwnershipTransfer(t *testing.T) {
	state := NewMemoryState()
	const s1, s2 = "s1pubkey", "s2pubkey"
	setupTypeAndRecord(t, state, s1)
	mustDispatch(t, state, s2, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Bob"},
	})
	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateProposal, Timestamp: 4,
		CreateProposal: &CreateProposalBody{RecordID: "r1", ReceivingAgent: s2, Role: RoleOwner},
	})
	mustDispatch(t, state, s2, Payload{
		Action: ActionAnswerProposal, Timestamp: 5,
		AnswerProposal: &AnswerProposalBody{
			RecordID: "r1", ReceivingAgent: s2, Role: RoleOwner, Timestamp: 4, Response: AnswerAccept,
		},
	})

	records, err := loadContainer(state, RecordAddress("r1"), DecodeRecord)
	if err != nil || len(records) != 1 {
		t.Fatalf("load record: %v err=%v", records, err)
	}
	if records[0].Owner != s2 {
		t.Fatalf("expected owner %s, got %s", s2, records[0].Owner)
	}
}

// scenario 5 (idempotent replay) belongs to the ledger-sync pipeline, not
// the transaction processor, and is covered in internal/ledgersync.

// scenario 6: finalize is terminal.
func TestScenarioFinalizeIsTerminal(t *testing.T) {
	state := NewMemoryState()
	const s1 = "s1pubkey"
	setupTypeAndRecord(t, state, s1)
	mustDispatch(t, state, s1, Payload{
		Action: ActionFinalizeRecord, Timestamp: 7,
		FinalizeRecord: &FinalizeRecordBody{RecordID: "r1"},
	})

	err := dispatchExpectErr(t, state, s1, Payload{
		Action: ActionUpdateProperties, Timestamp: 8,
		UpdateProperties: &UpdatePropertiesBody{
			RecordID: "r1",
			Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 1, NumberExp: -1}},
		},
	})
	if err == nil {
		t.Fatalf("expected UPDATE_PROPERTIES on a final record to be rejected")
	}
}

// Proposal uniqueness: two CREATE_PROPOSAL for the same (recordId, role,
// receivingAgent) while the first is OPEN must reject the second.
func TestProposalUniqueness(t *testing.T) {
	state := NewMemoryState()
	const s1, s2 = "s1pubkey", "s2pubkey"
	setupTypeAndRecord(t, state, s1)
	mustDispatch(t, state, s2, Payload{
		Action: ActionCreateAgent, Timestamp: 1,
		CreateAgent: &CreateAgentBody{Name: "Bob"},
	})
	mustDispatch(t, state, s1, Payload{
		Action: ActionCreateProposal, Timestamp: 4,
		CreateProposal: &CreateProposalBody{RecordID: "r1", ReceivingAgent: s2, Role: RoleOwner},
	})
	err := dispatchExpectErr(t, state, s1, Payload{
		Action: ActionCreateProposal, Timestamp: 5,
		CreateProposal: &CreateProposalBody{RecordID: "r1", ReceivingAgent: s2, Role: RoleOwner},
	})
	if err == nil {
		t.Fatalf("expected second CREATE_PROPOSAL to be rejected while first is OPEN")
	}
}

// PropertyPage boundary: exactly PageSize reports fit on one page; the
// (PageSize+1)-th allocates the next page before writing.
func TestPropertyPageBoundary(t *testing.T) {
	state := NewMemoryState()
	const s1 = "s1pubkey"
	setupTypeAndRecord(t, state, s1)

	// one report was already written by setupTypeAndRecord's CREATE_RECORD.
	for i := 0; i < PageSize-1; i++ {
		mustDispatch(t, state, s1, Payload{
			Action: ActionUpdateProperties, Timestamp: int64(10 + i),
			UpdateProperties: &UpdatePropertiesBody{
				RecordID: "r1",
				Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: int64(i), NumberExp: -1}},
			},
		})
	}
	page1, err := loadPropertyPage(state, "r1", "temp", 1)
	if err != nil || len(page1.Reports) != PageSize {
		t.Fatalf("expected page 1 full with %d reports, got %d err=%v", PageSize, len(page1.Reports), err)
	}
	props, _ := loadContainer(state, PropertyAddress("r1", "temp"), DecodeProperty)
	if props[0].CurrentPage != 1 {
		t.Fatalf("expected current page still 1 before overflow write, got %d", props[0].CurrentPage)
	}

	mustDispatch(t, state, s1, Payload{
		Action: ActionUpdateProperties, Timestamp: 9999,
		UpdateProperties: &UpdatePropertiesBody{
			RecordID: "r1",
			Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 999, NumberExp: -1}},
		},
	})
	props, _ = loadContainer(state, PropertyAddress("r1", "temp"), DecodeProperty)
	if props[0].CurrentPage != 2 {
		t.Fatalf("expected current page to advance to 2, got %d", props[0].CurrentPage)
	}
	page2, err := loadPropertyPage(state, "r1", "temp", 2)
	if err != nil || len(page2.Reports) != 1 {
		t.Fatalf("expected page 2 with one report, got %d err=%v", len(page2.Reports), err)
	}
}
