package core

// Address derivation for the provenance namespace.
//
// Every address is 70 hex characters: a 6-hex namespace prefix shared by the
// whole family, a 2-hex type prefix identifying the entity kind, and a
// 62-hex body. For paged entities the last 4 hex of the body are the page
// number; for the bare Property the tail is always "0000".
//
// Derivation must stay bit-identical across the transaction processor, the
// batcher and the ledger-sync pipeline — never change the hashing scheme
// without a family version bump (see core/payload.go FamilyVersion).

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// Namespace is the 6-hex prefix shared by every address this family writes.
const Namespace = "3400de"

// Type prefixes, byte 7-8 of an address.
const (
	TypeAgent      = "ae"
	TypeRecordType = "ec"
	TypeRecord     = "ee"
	TypeProperty   = "ea"
	TypeProposal   = "aa"
)

// MaxPages is the highest page number a Property may reference before
// wrapping back to page 1.
const MaxPages = 0xffff

func sha512Hex(data ...string) string {
	h := sha512.New()
	for _, d := range data {
		h.Write([]byte(d))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// AgentAddress derives the address of an Agent keyed by its public key.
func AgentAddress(publicKey string) string {
	return Namespace + TypeAgent + sha512Hex(publicKey)[:62]
}

// RecordTypeAddress derives the address of a RecordType keyed by its name.
func RecordTypeAddress(name string) string {
	return Namespace + TypeRecordType + sha512Hex(name)[:62]
}

// RecordAddress derives the address of a Record keyed by its recordId.
func RecordAddress(recordID string) string {
	return Namespace + TypeRecord + sha512Hex(recordID)[:62]
}

// propertyBody computes the shared 58-hex (recordId, name) digest portion
// used by both Property and PropertyPage addresses.
func propertyBody(recordID, name string) string {
	return sha512Hex(recordID)[:36] + sha512Hex(name)[:22]
}

// PropertyAddress derives the address of a Property keyed by (recordId, name).
func PropertyAddress(recordID, name string) string {
	return Namespace + TypeProperty + propertyBody(recordID, name) + "0000"
}

// PropertyPageAddress derives the address of a PropertyPage keyed by
// (recordId, name, pageNum). pageNum must be in [1, MaxPages].
func PropertyPageAddress(recordID, name string, pageNum uint16) string {
	return Namespace + TypeProperty + propertyBody(recordID, name) + fmt.Sprintf("%04x", pageNum)
}

// ProposalAddress derives the address of a Proposal keyed by
// (recordId, receivingAgent, role). Note: unlike the other kinds, the
// timestamp named in spec.md §3's identity tuple does not participate in
// the address digest — it disambiguates Proposal *rows* within a
// container, not the address itself (see §4.1).
func ProposalAddress(recordID, receivingAgent, role string) string {
	return Namespace + TypeProposal + sha512Hex(recordID, "\x00", receivingAgent, "\x00", role)[:62]
}

// EntityKind identifies the class of entity stored at an address.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindAgent
	KindRecordType
	KindRecord
	KindProperty
	KindPropertyPage
	KindProposal
)

// AddressKind decodes the entity kind (and, for Property/PropertyPage, the
// page number) encoded in an address. It does not validate the digest
// portion, only the structural prefix and length.
func AddressKind(address string) (EntityKind, uint16, error) {
	if len(address) != 70 {
		return KindUnknown, 0, fmt.Errorf("address %q: want 70 hex chars, got %d", address, len(address))
	}
	if address[:6] != Namespace {
		return KindUnknown, 0, fmt.Errorf("address %q: not in namespace %s", address, Namespace)
	}
	switch address[6:8] {
	case TypeAgent:
		return KindAgent, 0, nil
	case TypeRecordType:
		return KindRecordType, 0, nil
	case TypeRecord:
		return KindRecord, 0, nil
	case TypeProposal:
		return KindProposal, 0, nil
	case TypeProperty:
		tail := address[66:70]
		if tail == "0000" {
			return KindProperty, 0, nil
		}
		page, err := hex.DecodeString(tail)
		if err != nil || len(page) != 2 {
			return KindUnknown, 0, fmt.Errorf("address %q: bad page tail %q", address, tail)
		}
		return KindPropertyPage, uint16(page[0])<<8 | uint16(page[1]), nil
	default:
		return KindUnknown, 0, fmt.Errorf("address %q: unknown type prefix %q", address, address[6:8])
	}
}

// ValidAddress reports whether address satisfies invariant 1 of spec.md §8:
// 70 hex chars, in-namespace, with a recognised type prefix.
func ValidAddress(address string) bool {
	_, _, err := AddressKind(address)
	return err == nil
}
