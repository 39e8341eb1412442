package core

import "testing"

func TestPayloadEncodeDecodeEachAction(t *testing.T) {
	cases := []Payload{
		{Action: ActionCreateAgent, Timestamp: 1, CreateAgent: &CreateAgentBody{Name: "Alice"}},
		{Action: ActionCreateRecordType, Timestamp: 2, CreateRecordType: &CreateRecordTypeBody{
			Name: "asset",
			Properties: []PropertySchema{
				{Name: "temp", DataType: DataTypeNumber, NumberExponent: -1, Required: true},
			},
		}},
		{Action: ActionCreateRecord, Timestamp: 3, CreateRecord: &CreateRecordBody{
			RecordID: "r1", RecordType: "asset",
			Properties: []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 210, NumberExp: -1}},
		}},
		{Action: ActionUpdateProperties, Timestamp: 4, UpdateProperties: &UpdatePropertiesBody{
			RecordID: "r1",
			Updates:  []PropertyValue{{Name: "temp", DataType: DataTypeNumber, NumberValue: 220, NumberExp: -1}},
		}},
		{Action: ActionCreateProposal, Timestamp: 5, CreateProposal: &CreateProposalBody{
			RecordID: "r1", ReceivingAgent: "pub2", Role: RoleOwner, Terms: "handoff at dock 4",
		}},
		{Action: ActionAnswerProposal, Timestamp: 6, AnswerProposal: &AnswerProposalBody{
			RecordID: "r1", ReceivingAgent: "pub2", Role: RoleOwner, Timestamp: 5, Response: AnswerAccept,
		}},
		{Action: ActionRevokeReporter, Timestamp: 7, RevokeReporter: &RevokeReporterBody{
			RecordID: "r1", PropertyName: "temp", ReporterID: "pub3",
		}},
		{Action: ActionFinalizeRecord, Timestamp: 8, FinalizeRecord: &FinalizeRecordBody{RecordID: "r1"}},
	}

	for _, want := range cases {
		raw := want.Encode()
		got, err := DecodePayload(raw)
		if err != nil {
			t.Fatalf("action %s: decode: %v", want.Action, err)
		}
		if got.Action != want.Action || got.Timestamp != want.Timestamp {
			t.Fatalf("action %s: header mismatch: %+v", want.Action, got)
		}
		switch want.Action {
		case ActionCreateAgent:
			if got.CreateAgent == nil || got.CreateAgent.Name != want.CreateAgent.Name {
				t.Fatalf("CreateAgent mismatch: %+v", got.CreateAgent)
			}
		case ActionCreateRecordType:
			if got.CreateRecordType == nil || got.CreateRecordType.Name != want.CreateRecordType.Name ||
				len(got.CreateRecordType.Properties) != 1 ||
				got.CreateRecordType.Properties[0].NumberExponent != -1 {
				t.Fatalf("CreateRecordType mismatch: %+v", got.CreateRecordType)
			}
		case ActionCreateRecord:
			if got.CreateRecord == nil || got.CreateRecord.RecordID != want.CreateRecord.RecordID ||
				len(got.CreateRecord.Properties) != 1 || got.CreateRecord.Properties[0].NumberValue != 210 {
				t.Fatalf("CreateRecord mismatch: %+v", got.CreateRecord)
			}
		case ActionUpdateProperties:
			if got.UpdateProperties == nil || len(got.UpdateProperties.Updates) != 1 {
				t.Fatalf("UpdateProperties mismatch: %+v", got.UpdateProperties)
			}
		case ActionCreateProposal:
			if got.CreateProposal == nil || got.CreateProposal.Terms != "handoff at dock 4" {
				t.Fatalf("CreateProposal mismatch: %+v", got.CreateProposal)
			}
		case ActionAnswerProposal:
			if got.AnswerProposal == nil || got.AnswerProposal.Response != AnswerAccept {
				t.Fatalf("AnswerProposal mismatch: %+v", got.AnswerProposal)
			}
		case ActionRevokeReporter:
			if got.RevokeReporter == nil || got.RevokeReporter.ReporterID != "pub3" {
				t.Fatalf("RevokeReporter mismatch: %+v", got.RevokeReporter)
			}
		case ActionFinalizeRecord:
			if got.FinalizeRecord == nil || got.FinalizeRecord.RecordID != "r1" {
				t.Fatalf("FinalizeRecord mismatch: %+v", got.FinalizeRecord)
			}
		}
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	if _, err := DecodePayload([]byte{0xff}); err == nil {
		t.Fatalf("expected an error decoding a malformed payload")
	}
}

func TestDecodePayloadRejectsUnknownAction(t *testing.T) {
	w := &fieldWriter{}
	w.putVarint(tagPayloadAction, 99)
	w.putVarint(tagPayloadTimestamp, 1)
	w.putMessage(tagPayloadBody, []byte{0x01})
	if _, err := DecodePayload(w.buf); err == nil {
		t.Fatalf("expected DecodePayload to error on an unknown action with a body present")
	}
}

func TestPropertyValueStructRoundTrip(t *testing.T) {
	v := PropertyValue{
		Name: "dimensions", DataType: DataTypeStruct,
		StructValues: []PropertyValue{
			{Name: "length", DataType: DataTypeNumber, NumberValue: 12, NumberExp: 0},
			{Name: "width", DataType: DataTypeNumber, NumberValue: 5, NumberExp: 0},
		},
	}
	raw := v.Encode()
	got, err := DecodePropertyValue(raw)
	if err != nil {
		t.Fatalf("DecodePropertyValue: %v", err)
	}
	if got.DataType != DataTypeStruct || len(got.StructValues) != 2 {
		t.Fatalf("struct round trip mismatch: %+v", got)
	}
	if got.StructValues[0].Name != "length" || got.StructValues[0].NumberValue != 12 {
		t.Fatalf("nested field mismatch: %+v", got.StructValues[0])
	}
}
