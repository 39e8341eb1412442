package core

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// FamilyName and FamilyVersion identify this transaction family to the
// platform (spec.md §6). Bump FamilyVersion, not the existing field tags,
// if the message shapes ever need to change.
const (
	FamilyName    = "supply_chain"
	FamilyVersion = "1.1"
)

// Action selects which payload body is populated.
type Action int32

const (
	ActionUnset Action = iota
	ActionCreateAgent
	ActionCreateRecord
	ActionCreateRecordType
	ActionUpdateProperties
	ActionCreateProposal
	ActionAnswerProposal
	ActionRevokeReporter
	ActionFinalizeRecord
)

func (a Action) String() string {
	switch a {
	case ActionCreateAgent:
		return "CREATE_AGENT"
	case ActionCreateRecord:
		return "CREATE_RECORD"
	case ActionCreateRecordType:
		return "CREATE_RECORD_TYPE"
	case ActionUpdateProperties:
		return "UPDATE_PROPERTIES"
	case ActionCreateProposal:
		return "CREATE_PROPOSAL"
	case ActionAnswerProposal:
		return "ANSWER_PROPOSAL"
	case ActionRevokeReporter:
		return "REVOKE_REPORTER"
	case ActionFinalizeRecord:
		return "FINALIZE_RECORD"
	default:
		return "UNSET"
	}
}

// AnswerResponse is ANSWER_PROPOSAL's disposition.
type AnswerResponse int32

const (
	AnswerUnset AnswerResponse = iota
	AnswerAccept
	AnswerReject
	AnswerCancel
)

// --- action bodies -------------------------------------------------------

type CreateAgentBody struct {
	Name string
}

type CreateRecordTypeBody struct {
	Name       string
	Properties []PropertySchema
}

type CreateRecordBody struct {
	RecordID   string
	RecordType string
	Properties []PropertyValue
}

type UpdatePropertiesBody struct {
	RecordID string
	Updates  []PropertyValue
}

type CreateProposalBody struct {
	RecordID       string
	ReceivingAgent string
	Role           Role
	Properties     []string
	Terms          string
}

type AnswerProposalBody struct {
	RecordID       string
	ReceivingAgent string
	Role           Role
	Timestamp      int64 // identifies which OPEN proposal to answer
	Response       AnswerResponse
}

type RevokeReporterBody struct {
	RecordID     string
	PropertyName string
	ReporterID   string
}

type FinalizeRecordBody struct {
	RecordID string
}

// Payload is the top-level, length-delimited message every transaction
// carries. Exactly one of the typed bodies is populated, selected by
// Action — analogous to PropertyValue's tagged union in core/values.go.
type Payload struct {
	Action    Action
	Timestamp int64

	CreateAgent      *CreateAgentBody
	CreateRecordType *CreateRecordTypeBody
	CreateRecord     *CreateRecordBody
	UpdateProperties *UpdatePropertiesBody
	CreateProposal   *CreateProposalBody
	AnswerProposal   *AnswerProposalBody
	RevokeReporter   *RevokeReporterBody
	FinalizeRecord   *FinalizeRecordBody
}

const (
	tagPayloadAction    protowire.Number = 1
	tagPayloadTimestamp protowire.Number = 2
	tagPayloadBody      protowire.Number = 3 // every body shares one tag; shape is implied by Action
)

func encodeCreateAgentBody(b CreateAgentBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.Name)
	return w.buf
}

func decodeCreateAgentBody(raw []byte) (CreateAgentBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return CreateAgentBody{}, err
	}
	var b CreateAgentBody
	for _, f := range fields {
		if f.tag == 1 {
			b.Name = string(f.bytes)
		}
	}
	return b, nil
}

func encodeCreateRecordTypeBody(b CreateRecordTypeBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.Name)
	for _, p := range b.Properties {
		w.putMessage(2, p.Encode())
	}
	return w.buf
}

func decodeCreateRecordTypeBody(raw []byte) (CreateRecordTypeBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return CreateRecordTypeBody{}, err
	}
	var b CreateRecordTypeBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.Name = string(f.bytes)
		case 2:
			p, err := DecodePropertySchema(f.bytes)
			if err != nil {
				return CreateRecordTypeBody{}, err
			}
			b.Properties = append(b.Properties, p)
		}
	}
	return b, nil
}

func encodeCreateRecordBody(b CreateRecordBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	w.putString(2, b.RecordType)
	for _, p := range b.Properties {
		w.putMessage(3, p.Encode())
	}
	return w.buf
}

func decodeCreateRecordBody(raw []byte) (CreateRecordBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return CreateRecordBody{}, err
	}
	var b CreateRecordBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.RecordID = string(f.bytes)
		case 2:
			b.RecordType = string(f.bytes)
		case 3:
			v, err := DecodePropertyValue(f.bytes)
			if err != nil {
				return CreateRecordBody{}, err
			}
			b.Properties = append(b.Properties, v)
		}
	}
	return b, nil
}

func encodeUpdatePropertiesBody(b UpdatePropertiesBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	for _, u := range b.Updates {
		w.putMessage(2, u.Encode())
	}
	return w.buf
}

func decodeUpdatePropertiesBody(raw []byte) (UpdatePropertiesBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return UpdatePropertiesBody{}, err
	}
	var b UpdatePropertiesBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.RecordID = string(f.bytes)
		case 2:
			v, err := DecodePropertyValue(f.bytes)
			if err != nil {
				return UpdatePropertiesBody{}, err
			}
			b.Updates = append(b.Updates, v)
		}
	}
	return b, nil
}

func encodeCreateProposalBody(b CreateProposalBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	w.putString(2, b.ReceivingAgent)
	w.putVarint(3, uint64(b.Role))
	for _, p := range b.Properties {
		w.putString(4, p)
	}
	w.putString(5, b.Terms)
	return w.buf
}

func decodeCreateProposalBody(raw []byte) (CreateProposalBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return CreateProposalBody{}, err
	}
	var b CreateProposalBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.RecordID = string(f.bytes)
		case 2:
			b.ReceivingAgent = string(f.bytes)
		case 3:
			b.Role = Role(f.varnt)
		case 4:
			b.Properties = append(b.Properties, string(f.bytes))
		case 5:
			b.Terms = string(f.bytes)
		}
	}
	return b, nil
}

func encodeAnswerProposalBody(b AnswerProposalBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	w.putString(2, b.ReceivingAgent)
	w.putVarint(3, uint64(b.Role))
	w.putVarint(4, uint64(b.Timestamp))
	w.putVarint(5, uint64(b.Response))
	return w.buf
}

func decodeAnswerProposalBody(raw []byte) (AnswerProposalBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return AnswerProposalBody{}, err
	}
	var b AnswerProposalBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.RecordID = string(f.bytes)
		case 2:
			b.ReceivingAgent = string(f.bytes)
		case 3:
			b.Role = Role(f.varnt)
		case 4:
			b.Timestamp = int64(f.varnt)
		case 5:
			b.Response = AnswerResponse(f.varnt)
		}
	}
	return b, nil
}

func encodeRevokeReporterBody(b RevokeReporterBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	w.putString(2, b.PropertyName)
	w.putString(3, b.ReporterID)
	return w.buf
}

func decodeRevokeReporterBody(raw []byte) (RevokeReporterBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return RevokeReporterBody{}, err
	}
	var b RevokeReporterBody
	for _, f := range fields {
		switch f.tag {
		case 1:
			b.RecordID = string(f.bytes)
		case 2:
			b.PropertyName = string(f.bytes)
		case 3:
			b.ReporterID = string(f.bytes)
		}
	}
	return b, nil
}

func encodeFinalizeRecordBody(b FinalizeRecordBody) []byte {
	w := &fieldWriter{}
	w.putString(1, b.RecordID)
	return w.buf
}

func decodeFinalizeRecordBody(raw []byte) (FinalizeRecordBody, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return FinalizeRecordBody{}, err
	}
	var b FinalizeRecordBody
	for _, f := range fields {
		if f.tag == 1 {
			b.RecordID = string(f.bytes)
		}
	}
	return b, nil
}

// Encode serialises the Payload to its stable wire form.
func (p Payload) Encode() []byte {
	w := &fieldWriter{}
	w.putVarint(tagPayloadAction, uint64(p.Action))
	w.putVarint(tagPayloadTimestamp, uint64(p.Timestamp))
	switch p.Action {
	case ActionCreateAgent:
		if p.CreateAgent != nil {
			w.putMessage(tagPayloadBody, encodeCreateAgentBody(*p.CreateAgent))
		}
	case ActionCreateRecordType:
		if p.CreateRecordType != nil {
			w.putMessage(tagPayloadBody, encodeCreateRecordTypeBody(*p.CreateRecordType))
		}
	case ActionCreateRecord:
		if p.CreateRecord != nil {
			w.putMessage(tagPayloadBody, encodeCreateRecordBody(*p.CreateRecord))
		}
	case ActionUpdateProperties:
		if p.UpdateProperties != nil {
			w.putMessage(tagPayloadBody, encodeUpdatePropertiesBody(*p.UpdateProperties))
		}
	case ActionCreateProposal:
		if p.CreateProposal != nil {
			w.putMessage(tagPayloadBody, encodeCreateProposalBody(*p.CreateProposal))
		}
	case ActionAnswerProposal:
		if p.AnswerProposal != nil {
			w.putMessage(tagPayloadBody, encodeAnswerProposalBody(*p.AnswerProposal))
		}
	case ActionRevokeReporter:
		if p.RevokeReporter != nil {
			w.putMessage(tagPayloadBody, encodeRevokeReporterBody(*p.RevokeReporter))
		}
	case ActionFinalizeRecord:
		if p.FinalizeRecord != nil {
			w.putMessage(tagPayloadBody, encodeFinalizeRecordBody(*p.FinalizeRecord))
		}
	}
	return w.buf
}

// DecodePayload parses a Payload and its action-specific body.
func DecodePayload(b []byte) (Payload, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Payload{}, fmt.Errorf("payload: %w", err)
	}
	var p Payload
	var bodyRaw []byte
	for _, f := range fields {
		switch f.tag {
		case tagPayloadAction:
			p.Action = Action(f.varnt)
		case tagPayloadTimestamp:
			p.Timestamp = int64(f.varnt)
		case tagPayloadBody:
			bodyRaw = f.bytes
		}
	}
	if bodyRaw == nil {
		return p, nil
	}
	var decodeErr error
	switch p.Action {
	case ActionCreateAgent:
		body, err := decodeCreateAgentBody(bodyRaw)
		p.CreateAgent, decodeErr = &body, err
	case ActionCreateRecordType:
		body, err := decodeCreateRecordTypeBody(bodyRaw)
		p.CreateRecordType, decodeErr = &body, err
	case ActionCreateRecord:
		body, err := decodeCreateRecordBody(bodyRaw)
		p.CreateRecord, decodeErr = &body, err
	case ActionUpdateProperties:
		body, err := decodeUpdatePropertiesBody(bodyRaw)
		p.UpdateProperties, decodeErr = &body, err
	case ActionCreateProposal:
		body, err := decodeCreateProposalBody(bodyRaw)
		p.CreateProposal, decodeErr = &body, err
	case ActionAnswerProposal:
		body, err := decodeAnswerProposalBody(bodyRaw)
		p.AnswerProposal, decodeErr = &body, err
	case ActionRevokeReporter:
		body, err := decodeRevokeReporterBody(bodyRaw)
		p.RevokeReporter, decodeErr = &body, err
	case ActionFinalizeRecord:
		body, err := decodeFinalizeRecordBody(bodyRaw)
		p.FinalizeRecord, decodeErr = &body, err
	default:
		decodeErr = fmt.Errorf("payload: unknown action %d", p.Action)
	}
	if decodeErr != nil {
		return Payload{}, fmt.Errorf("payload: %w", decodeErr)
	}
	return p, nil
}
