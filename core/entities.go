package core

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Role identifies the kind of authority a Proposal offers to transfer.
type Role int32

const (
	RoleUnset Role = iota
	RoleOwner
	RoleCustodian
	RoleReporter
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "OWNER"
	case RoleCustodian:
		return "CUSTODIAN"
	case RoleReporter:
		return "REPORTER"
	default:
		return "UNSET"
	}
}

// ProposalStatus is the lifecycle state of a Proposal.
type ProposalStatus int32

const (
	StatusUnset ProposalStatus = iota
	StatusOpen
	StatusAccepted
	StatusRejected
	StatusCanceled
	StatusRescinded
	StatusExpired
)

func (s ProposalStatus) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusRejected:
		return "REJECTED"
	case StatusCanceled:
		return "CANCELED"
	case StatusRescinded:
		return "RESCINDED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNSET"
	}
}

// ---------------------------------------------------------------------
// Agent
// ---------------------------------------------------------------------

// Agent is a known signer of the chain: a public key plus display name.
type Agent struct {
	PublicKey string
	Name      string
	Timestamp int64
}

// NaturalKey returns the sort/dedup key used inside an Agent Container.
func (a Agent) NaturalKey() string { return a.PublicKey }

const (
	tagAgentPublicKey protowire.Number = 1
	tagAgentName      protowire.Number = 2
	tagAgentTimestamp protowire.Number = 3
)

func (a Agent) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagAgentPublicKey, a.PublicKey)
	w.putString(tagAgentName, a.Name)
	w.putVarint(tagAgentTimestamp, uint64(a.Timestamp))
	return w.buf
}

func DecodeAgent(b []byte) (Agent, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Agent{}, fmt.Errorf("agent: %w", err)
	}
	var a Agent
	for _, f := range fields {
		switch f.tag {
		case tagAgentPublicKey:
			a.PublicKey = string(f.bytes)
		case tagAgentName:
			a.Name = string(f.bytes)
		case tagAgentTimestamp:
			a.Timestamp = int64(f.varnt)
		}
	}
	return a, nil
}

// ---------------------------------------------------------------------
// PropertySchema / RecordType
// ---------------------------------------------------------------------

// PropertySchema describes one field a RecordType's Records must carry.
type PropertySchema struct {
	Name           string
	DataType       DataType
	Required       bool
	Fixed          bool
	EnumOptions    []string
	StructSchema   []PropertySchema
	NumberExponent int32
	Unit           string
}

const (
	tagSchemaName           protowire.Number = 1
	tagSchemaDataType       protowire.Number = 2
	tagSchemaRequired       protowire.Number = 3
	tagSchemaFixed          protowire.Number = 4
	tagSchemaEnumOptions    protowire.Number = 5
	tagSchemaStructSchema   protowire.Number = 6
	tagSchemaNumberExponent protowire.Number = 7
	tagSchemaUnit           protowire.Number = 8
)

func (s PropertySchema) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagSchemaName, s.Name)
	w.putVarint(tagSchemaDataType, uint64(s.DataType))
	w.putBool(tagSchemaRequired, s.Required)
	w.putBool(tagSchemaFixed, s.Fixed)
	for _, opt := range s.EnumOptions {
		w.putString(tagSchemaEnumOptions, opt)
	}
	for _, sub := range s.StructSchema {
		w.putMessage(tagSchemaStructSchema, sub.Encode())
	}
	w.putSint64(tagSchemaNumberExponent, int64(s.NumberExponent))
	w.putString(tagSchemaUnit, s.Unit)
	return w.buf
}

func DecodePropertySchema(b []byte) (PropertySchema, error) {
	fields, err := parseFields(b)
	if err != nil {
		return PropertySchema{}, fmt.Errorf("property schema: %w", err)
	}
	var s PropertySchema
	for _, f := range fields {
		switch f.tag {
		case tagSchemaName:
			s.Name = string(f.bytes)
		case tagSchemaDataType:
			s.DataType = DataType(f.varnt)
		case tagSchemaRequired:
			s.Required = f.varnt != 0
		case tagSchemaFixed:
			s.Fixed = f.varnt != 0
		case tagSchemaEnumOptions:
			s.EnumOptions = append(s.EnumOptions, string(f.bytes))
		case tagSchemaStructSchema:
			sub, err := DecodePropertySchema(f.bytes)
			if err != nil {
				return PropertySchema{}, fmt.Errorf("property schema: struct field: %w", err)
			}
			s.StructSchema = append(s.StructSchema, sub)
		case tagSchemaNumberExponent:
			s.NumberExponent = int32(sintFromVarint(f.varnt))
		case tagSchemaUnit:
			s.Unit = string(f.bytes)
		}
	}
	return s, nil
}

// RecordType is an immutable, named schema for Records.
type RecordType struct {
	Name       string
	Properties []PropertySchema
}

func (rt RecordType) NaturalKey() string { return rt.Name }

const (
	tagRecordTypeName       protowire.Number = 1
	tagRecordTypeProperties protowire.Number = 2
)

func (rt RecordType) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagRecordTypeName, rt.Name)
	for _, p := range rt.Properties {
		w.putMessage(tagRecordTypeProperties, p.Encode())
	}
	return w.buf
}

func DecodeRecordType(b []byte) (RecordType, error) {
	fields, err := parseFields(b)
	if err != nil {
		return RecordType{}, fmt.Errorf("record type: %w", err)
	}
	var rt RecordType
	for _, f := range fields {
		switch f.tag {
		case tagRecordTypeName:
			rt.Name = string(f.bytes)
		case tagRecordTypeProperties:
			p, err := DecodePropertySchema(f.bytes)
			if err != nil {
				return RecordType{}, fmt.Errorf("record type: %w", err)
			}
			rt.Properties = append(rt.Properties, p)
		}
	}
	return rt, nil
}

// ---------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------

// Record is one tracked item: an owner, a custodian, and a fixed set of
// properties derived from its RecordType at creation time.
type Record struct {
	RecordID   string
	RecordType string
	Owner      string
	Custodian  string
	Final      bool
}

func (r Record) NaturalKey() string { return r.RecordID }

const (
	tagRecordID         protowire.Number = 1
	tagRecordType       protowire.Number = 2
	tagRecordOwner      protowire.Number = 3
	tagRecordCustodian  protowire.Number = 4
	tagRecordFinal      protowire.Number = 5
)

func (r Record) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagRecordID, r.RecordID)
	w.putString(tagRecordType, r.RecordType)
	w.putString(tagRecordOwner, r.Owner)
	w.putString(tagRecordCustodian, r.Custodian)
	w.putBool(tagRecordFinal, r.Final)
	return w.buf
}

func DecodeRecord(b []byte) (Record, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Record{}, fmt.Errorf("record: %w", err)
	}
	var r Record
	for _, f := range fields {
		switch f.tag {
		case tagRecordID:
			r.RecordID = string(f.bytes)
		case tagRecordType:
			r.RecordType = string(f.bytes)
		case tagRecordOwner:
			r.Owner = string(f.bytes)
		case tagRecordCustodian:
			r.Custodian = string(f.bytes)
		case tagRecordFinal:
			r.Final = f.varnt != 0
		}
	}
	return r, nil
}

// ---------------------------------------------------------------------
// Property / Reporter
// ---------------------------------------------------------------------

// Reporter is an Agent authorized (or formerly authorized) to append
// reports to one Property.
type Reporter struct {
	PublicKey  string
	Authorized bool
	Index      int32
}

const (
	tagReporterPublicKey  protowire.Number = 1
	tagReporterAuthorized protowire.Number = 2
	tagReporterIndex      protowire.Number = 3
)

func (r Reporter) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagReporterPublicKey, r.PublicKey)
	w.putBool(tagReporterAuthorized, r.Authorized)
	w.putVarint(tagReporterIndex, uint64(r.Index))
	return w.buf
}

func DecodeReporter(b []byte) (Reporter, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Reporter{}, fmt.Errorf("reporter: %w", err)
	}
	var r Reporter
	for _, f := range fields {
		switch f.tag {
		case tagReporterPublicKey:
			r.PublicKey = string(f.bytes)
		case tagReporterAuthorized:
			r.Authorized = f.varnt != 0
		case tagReporterIndex:
			r.Index = int32(f.varnt)
		}
	}
	return r, nil
}

// Property is the (recordId, name)-keyed header describing one tracked
// field: its type, its authorized reporters, and which page is currently
// being appended to.
type Property struct {
	Name           string
	RecordID       string
	RecordType     string
	DataType       DataType
	CurrentPage    uint16
	Wrapped        bool
	Reporters      []Reporter
	Fixed          bool
	NumberExponent int32
	EnumOptions    []string
	StructSchema   []PropertySchema
	Unit           string
}

// NaturalKey sorts Properties within a container by name (the (recordId,
// name) pair is already unique because a container lives at one address,
// and recordId is folded into that address's digest).
func (p Property) NaturalKey() string { return p.Name }

const (
	tagPropName           protowire.Number = 1
	tagPropRecordID        protowire.Number = 2
	tagPropRecordType      protowire.Number = 3
	tagPropDataType        protowire.Number = 4
	tagPropCurrentPage     protowire.Number = 5
	tagPropWrapped         protowire.Number = 6
	tagPropReporters       protowire.Number = 7
	tagPropFixed           protowire.Number = 8
	tagPropNumberExponent  protowire.Number = 9
	tagPropEnumOptions     protowire.Number = 10
	tagPropStructSchema    protowire.Number = 11
	tagPropUnit            protowire.Number = 12
)

func (p Property) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagPropName, p.Name)
	w.putString(tagPropRecordID, p.RecordID)
	w.putString(tagPropRecordType, p.RecordType)
	w.putVarint(tagPropDataType, uint64(p.DataType))
	w.putVarint(tagPropCurrentPage, uint64(p.CurrentPage))
	w.putBool(tagPropWrapped, p.Wrapped)
	for _, r := range p.Reporters {
		w.putMessage(tagPropReporters, r.Encode())
	}
	w.putBool(tagPropFixed, p.Fixed)
	w.putSint64(tagPropNumberExponent, int64(p.NumberExponent))
	for _, opt := range p.EnumOptions {
		w.putString(tagPropEnumOptions, opt)
	}
	for _, s := range p.StructSchema {
		w.putMessage(tagPropStructSchema, s.Encode())
	}
	w.putString(tagPropUnit, p.Unit)
	return w.buf
}

func DecodeProperty(b []byte) (Property, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Property{}, fmt.Errorf("property: %w", err)
	}
	var p Property
	for _, f := range fields {
		switch f.tag {
		case tagPropName:
			p.Name = string(f.bytes)
		case tagPropRecordID:
			p.RecordID = string(f.bytes)
		case tagPropRecordType:
			p.RecordType = string(f.bytes)
		case tagPropDataType:
			p.DataType = DataType(f.varnt)
		case tagPropCurrentPage:
			p.CurrentPage = uint16(f.varnt)
		case tagPropWrapped:
			p.Wrapped = f.varnt != 0
		case tagPropReporters:
			r, err := DecodeReporter(f.bytes)
			if err != nil {
				return Property{}, fmt.Errorf("property: %w", err)
			}
			p.Reporters = append(p.Reporters, r)
		case tagPropFixed:
			p.Fixed = f.varnt != 0
		case tagPropNumberExponent:
			p.NumberExponent = int32(sintFromVarint(f.varnt))
		case tagPropEnumOptions:
			p.EnumOptions = append(p.EnumOptions, string(f.bytes))
		case tagPropStructSchema:
			s, err := DecodePropertySchema(f.bytes)
			if err != nil {
				return Property{}, fmt.Errorf("property: %w", err)
			}
			p.StructSchema = append(p.StructSchema, s)
		case tagPropUnit:
			p.Unit = string(f.bytes)
		}
	}
	return p, nil
}

// ---------------------------------------------------------------------
// PropertyPage
// ---------------------------------------------------------------------

// PropertyValueReport is one timestamped value appended to a PropertyPage.
type PropertyValueReport struct {
	ReporterIndex int32
	Timestamp     int64
	Value         PropertyValue
}

const (
	tagReportReporterIndex protowire.Number = 1
	tagReportTimestamp     protowire.Number = 2
	tagReportValue         protowire.Number = 3
)

func (r PropertyValueReport) Encode() []byte {
	w := &fieldWriter{}
	w.putVarint(tagReportReporterIndex, uint64(r.ReporterIndex))
	w.putVarint(tagReportTimestamp, uint64(r.Timestamp))
	w.putMessage(tagReportValue, r.Value.Encode())
	return w.buf
}

func DecodePropertyValueReport(b []byte) (PropertyValueReport, error) {
	fields, err := parseFields(b)
	if err != nil {
		return PropertyValueReport{}, fmt.Errorf("property value report: %w", err)
	}
	var r PropertyValueReport
	for _, f := range fields {
		switch f.tag {
		case tagReportReporterIndex:
			r.ReporterIndex = int32(f.varnt)
		case tagReportTimestamp:
			r.Timestamp = int64(f.varnt)
		case tagReportValue:
			v, err := DecodePropertyValue(f.bytes)
			if err != nil {
				return PropertyValueReport{}, fmt.Errorf("property value report: %w", err)
			}
			r.Value = v
		}
	}
	return r, nil
}

// PropertyPage is a PAGE_SIZE-capacity ring-buffer page of reports.
type PropertyPage struct {
	Name     string
	RecordID string
	PageNum  uint16
	Reports  []PropertyValueReport
}

// NaturalKey for a PropertyPage container is implicit: exactly one page
// lives at each (recordId, name, pageNum) address, so the container always
// holds zero or one entry and sorting is a no-op. NaturalKey still exists
// so PropertyPage can implement the same container-entity shape as every
// other kind.
func (p PropertyPage) NaturalKey() string { return fmt.Sprintf("%04x", p.PageNum) }

const (
	tagPageName     protowire.Number = 1
	tagPageRecordID protowire.Number = 2
	tagPageNum      protowire.Number = 3
	tagPageReports  protowire.Number = 4
)

func (p PropertyPage) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagPageName, p.Name)
	w.putString(tagPageRecordID, p.RecordID)
	w.putVarint(tagPageNum, uint64(p.PageNum))
	for _, r := range p.Reports {
		w.putMessage(tagPageReports, r.Encode())
	}
	return w.buf
}

func DecodePropertyPage(b []byte) (PropertyPage, error) {
	fields, err := parseFields(b)
	if err != nil {
		return PropertyPage{}, fmt.Errorf("property page: %w", err)
	}
	var p PropertyPage
	for _, f := range fields {
		switch f.tag {
		case tagPageName:
			p.Name = string(f.bytes)
		case tagPageRecordID:
			p.RecordID = string(f.bytes)
		case tagPageNum:
			p.PageNum = uint16(f.varnt)
		case tagPageReports:
			r, err := DecodePropertyValueReport(f.bytes)
			if err != nil {
				return PropertyPage{}, fmt.Errorf("property page: %w", err)
			}
			p.Reports = append(p.Reports, r)
		}
	}
	return p, nil
}

// ---------------------------------------------------------------------
// Proposal
// ---------------------------------------------------------------------

// Proposal is an offer to transfer OWNER, CUSTODIAN or REPORTER authority
// over a Record, pending the counterparty's answer.
type Proposal struct {
	RecordID       string
	ReceivingAgent string
	Timestamp      int64
	Role           Role
	IssuingAgent   string
	Properties     []string // REPORTER only
	Status         ProposalStatus
	Terms          string
}

// NaturalKey orders Proposals within a container by
// (timestamp, receivingAgent, role) per spec.md §3 — recordId is already
// fixed by the address, so it is excluded from the in-container key.
func (p Proposal) NaturalKey() string {
	return fmt.Sprintf("%020d:%s:%d", p.Timestamp, p.ReceivingAgent, p.Role)
}

const (
	tagProposalRecordID       protowire.Number = 1
	tagProposalReceivingAgent protowire.Number = 2
	tagProposalTimestamp      protowire.Number = 3
	tagProposalRole           protowire.Number = 4
	tagProposalIssuingAgent   protowire.Number = 5
	tagProposalProperties     protowire.Number = 6
	tagProposalStatus         protowire.Number = 7
	tagProposalTerms          protowire.Number = 8
)

func (p Proposal) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagProposalRecordID, p.RecordID)
	w.putString(tagProposalReceivingAgent, p.ReceivingAgent)
	w.putVarint(tagProposalTimestamp, uint64(p.Timestamp))
	w.putVarint(tagProposalRole, uint64(p.Role))
	w.putString(tagProposalIssuingAgent, p.IssuingAgent)
	for _, name := range p.Properties {
		w.putString(tagProposalProperties, name)
	}
	w.putVarint(tagProposalStatus, uint64(p.Status))
	w.putString(tagProposalTerms, p.Terms)
	return w.buf
}

func DecodeProposal(b []byte) (Proposal, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Proposal{}, fmt.Errorf("proposal: %w", err)
	}
	var p Proposal
	for _, f := range fields {
		switch f.tag {
		case tagProposalRecordID:
			p.RecordID = string(f.bytes)
		case tagProposalReceivingAgent:
			p.ReceivingAgent = string(f.bytes)
		case tagProposalTimestamp:
			p.Timestamp = int64(f.varnt)
		case tagProposalRole:
			p.Role = Role(f.varnt)
		case tagProposalIssuingAgent:
			p.IssuingAgent = string(f.bytes)
		case tagProposalProperties:
			p.Properties = append(p.Properties, string(f.bytes))
		case tagProposalStatus:
			p.Status = ProposalStatus(f.varnt)
		case tagProposalTerms:
			p.Terms = string(f.bytes)
		}
	}
	return p, nil
}
