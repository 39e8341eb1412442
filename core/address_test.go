package core

import "testing"

func TestAddressShapeAndNamespace(t *testing.T) {
	addrs := []string{
		AgentAddress("pub1"),
		RecordTypeAddress("asset"),
		RecordAddress("r1"),
		PropertyAddress("r1", "temp"),
		PropertyPageAddress("r1", "temp", 1),
		ProposalAddress("r1", "pub2", "OWNER"),
	}
	for _, a := range addrs {
		if len(a) != 70 {
			t.Fatalf("address %q: want 70 hex chars, got %d", a, len(a))
		}
		if a[:6] != Namespace {
			t.Fatalf("address %q: want namespace %s", a, Namespace)
		}
		if !ValidAddress(a) {
			t.Fatalf("address %q: expected valid", a)
		}
	}
}

func TestAddressDeterministic(t *testing.T) {
	if AgentAddress("pub1") != AgentAddress("pub1") {
		t.Fatalf("AgentAddress is not deterministic")
	}
	if PropertyAddress("r1", "temp") == PropertyAddress("r1", "pressure") {
		t.Fatalf("different property names must not collide")
	}
}

func TestAddressKindRoundTrip(t *testing.T) {
	cases := []struct {
		addr string
		kind EntityKind
		page uint16
	}{
		{AgentAddress("pub1"), KindAgent, 0},
		{RecordTypeAddress("asset"), KindRecordType, 0},
		{RecordAddress("r1"), KindRecord, 0},
		{ProposalAddress("r1", "pub2", "OWNER"), KindProposal, 0},
		{PropertyAddress("r1", "temp"), KindProperty, 0},
		{PropertyPageAddress("r1", "temp", 1), KindPropertyPage, 1},
		{PropertyPageAddress("r1", "temp", 0xffff), KindPropertyPage, 0xffff},
	}
	for _, c := range cases {
		kind, page, err := AddressKind(c.addr)
		if err != nil {
			t.Fatalf("AddressKind(%q): %v", c.addr, err)
		}
		if kind != c.kind {
			t.Fatalf("AddressKind(%q): want kind %d, got %d", c.addr, c.kind, kind)
		}
		if page != c.page {
			t.Fatalf("AddressKind(%q): want page %d, got %d", c.addr, c.page, page)
		}
	}
}

func TestValidAddressRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"not-hex-at-all",
		Namespace + "zz" + "0000000000000000000000000000000000000000000000000000000000000000",
		"ffffff" + TypeAgent + "0000000000000000000000000000000000000000000000000000000000000000",
	}
	for _, a := range bad {
		if ValidAddress(a) {
			t.Fatalf("expected %q to be invalid", a)
		}
	}
}

func TestPropertyPageAddressSharesPropertyPrefix(t *testing.T) {
	prop := PropertyAddress("r1", "temp")
	page := PropertyPageAddress("r1", "temp", 7)
	if prop[:66] != page[:66] {
		t.Fatalf("property and its pages should share the first 66 hex chars:\n  %s\n  %s", prop, page)
	}
	if prop[66:] != "0000" {
		t.Fatalf("bare property address should end in 0000, got %s", prop[66:])
	}
	if page[66:] != "0007" {
		t.Fatalf("page 7 should end in 0007, got %s", page[66:])
	}
}
