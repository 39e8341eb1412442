package core

import "provenance-chain/internal/perr"

// proposalIssuerEligible resolves the Open Question spec.md §4.3 leaves
// implicit ("signer is either owner or custodian... role-dependent"): who
// may originate each kind of transfer offer. OWNER and CUSTODIAN transfers
// can only be originated by the current owner (custody is the owner's to
// grant); REPORTER authorization may be originated by either the owner or
// the custodian, since day-to-day data custody is what a custodian
// typically manages.
func proposalIssuerEligible(record Record, signer string, role Role) bool {
	switch role {
	case RoleOwner, RoleCustodian:
		return signer == record.Owner
	case RoleReporter:
		return signer == record.Owner || signer == record.Custodian
	default:
		return false
	}
}

func findOpenProposal(proposals []Proposal, receivingAgent string, role Role) (Proposal, bool) {
	for _, p := range proposals {
		if p.ReceivingAgent == receivingAgent && p.Role == role && p.Status == StatusOpen {
			return p, true
		}
	}
	return Proposal{}, false
}

// applyCreateProposal implements CREATE_PROPOSAL (spec.md §4.3).
func applyCreateProposal(state StateRW, signer string, timestamp int64, body CreateProposalBody) error {
	known, err := agentExists(state, signer)
	if err != nil {
		return err
	}
	if !known {
		return perr.Validationf("CREATE_PROPOSAL: signer %s is not a known agent", signer)
	}
	if body.RecordID == "" || body.ReceivingAgent == "" {
		return perr.Validationf("CREATE_PROPOSAL: recordId and receivingAgent are required")
	}

	records, err := loadContainer(state, RecordAddress(body.RecordID), DecodeRecord)
	if err != nil {
		return err
	}
	record, ok := Find(records, body.RecordID)
	if !ok {
		return perr.Validationf("CREATE_PROPOSAL: record %q does not exist", body.RecordID)
	}
	if !proposalIssuerEligible(record, signer, body.Role) {
		return perr.Validationf("CREATE_PROPOSAL: signer %s may not issue a %s proposal on %q", signer, body.Role, body.RecordID)
	}

	if body.Role == RoleReporter {
		if len(body.Properties) == 0 {
			return perr.Validationf("CREATE_PROPOSAL: REPORTER proposals require a non-empty properties list")
		}
		types, err := loadContainer(state, RecordTypeAddress(record.RecordType), DecodeRecordType)
		if err != nil {
			return err
		}
		recordType, ok := Find(types, record.RecordType)
		if !ok {
			return perr.Validationf("CREATE_PROPOSAL: record type %q does not exist", record.RecordType)
		}
		valid := make(map[string]bool, len(recordType.Properties))
		for _, p := range recordType.Properties {
			valid[p.Name] = true
		}
		for _, name := range body.Properties {
			if !valid[name] {
				return perr.Validationf("CREATE_PROPOSAL: %q is not a property of record %q", name, body.RecordID)
			}
		}
	}

	address := ProposalAddress(body.RecordID, body.ReceivingAgent, body.Role.String())
	proposals, err := loadContainer(state, address, DecodeProposal)
	if err != nil {
		return err
	}
	if _, open := findOpenProposal(proposals, body.ReceivingAgent, body.Role); open {
		return perr.Validationf("CREATE_PROPOSAL: an OPEN proposal already exists for (recordId=%s, role=%s, receivingAgent=%s)", body.RecordID, body.Role, body.ReceivingAgent)
	}

	proposals = Upsert(proposals, Proposal{
		RecordID:       body.RecordID,
		ReceivingAgent: body.ReceivingAgent,
		Timestamp:      timestamp,
		Role:           body.Role,
		IssuingAgent:   signer,
		Properties:     body.Properties,
		Status:         StatusOpen,
		Terms:          body.Terms,
	})
	return saveContainer(state, address, proposals)
}

// applyAnswerProposal implements ANSWER_PROPOSAL (spec.md §4.3).
func applyAnswerProposal(state StateRW, signer string, body AnswerProposalBody) error {
	address := ProposalAddress(body.RecordID, body.ReceivingAgent, body.Role.String())
	proposals, err := loadContainer(state, address, DecodeProposal)
	if err != nil {
		return err
	}
	key := Proposal{Timestamp: body.Timestamp, ReceivingAgent: body.ReceivingAgent, Role: body.Role}.NaturalKey()
	proposal, ok := Find(proposals, key)
	if !ok || proposal.Status != StatusOpen {
		return perr.Validationf("ANSWER_PROPOSAL: no OPEN proposal matching (recordId=%s, role=%s, receivingAgent=%s, timestamp=%d)", body.RecordID, body.Role, body.ReceivingAgent, body.Timestamp)
	}

	switch body.Response {
	case AnswerAccept, AnswerReject:
		if signer != proposal.ReceivingAgent {
			return perr.Validationf("ANSWER_PROPOSAL: only %s may accept or reject this proposal", proposal.ReceivingAgent)
		}
	case AnswerCancel:
		if signer != proposal.IssuingAgent {
			return perr.Validationf("ANSWER_PROPOSAL: only %s may cancel this proposal", proposal.IssuingAgent)
		}
	default:
		return perr.Validationf("ANSWER_PROPOSAL: unknown response %d", body.Response)
	}

	if body.Response == AnswerAccept {
		if err := applyProposalAcceptance(state, proposal); err != nil {
			return err
		}
	}

	switch body.Response {
	case AnswerAccept:
		proposal.Status = StatusAccepted
	case AnswerReject:
		proposal.Status = StatusRejected
	case AnswerCancel:
		proposal.Status = StatusCanceled
	}
	proposals = Upsert(proposals, proposal)
	return saveContainer(state, address, proposals)
}

// applyProposalAcceptance performs the role-specific state effect of an
// ACCEPT answer: rewriting the Record's owner/custodian, or authorizing a
// new reporter on each targeted Property.
func applyProposalAcceptance(state StateRW, proposal Proposal) error {
	switch proposal.Role {
	case RoleOwner, RoleCustodian:
		recordAddr := RecordAddress(proposal.RecordID)
		records, err := loadContainer(state, recordAddr, DecodeRecord)
		if err != nil {
			return err
		}
		record, ok := Find(records, proposal.RecordID)
		if !ok {
			return perr.Validationf("ANSWER_PROPOSAL: record %q no longer exists", proposal.RecordID)
		}
		if proposal.Role == RoleOwner {
			record.Owner = proposal.ReceivingAgent
		} else {
			record.Custodian = proposal.ReceivingAgent
		}
		records = Upsert(records, record)
		return saveContainer(state, recordAddr, records)
	case RoleReporter:
		for _, name := range proposal.Properties {
			propAddr := PropertyAddress(proposal.RecordID, name)
			props, err := loadContainer(state, propAddr, DecodeProperty)
			if err != nil {
				return err
			}
			property, ok := Find(props, name)
			if !ok {
				return perr.Validationf("ANSWER_PROPOSAL: property %q no longer exists", name)
			}
			property.Reporters = addOrAuthorizeReporter(property.Reporters, proposal.ReceivingAgent)
			props = Upsert(props, property)
			if err := saveContainer(state, propAddr, props); err != nil {
				return err
			}
		}
	}
	return nil
}

func addOrAuthorizeReporter(reporters []Reporter, publicKey string) []Reporter {
	for i, r := range reporters {
		if r.PublicKey == publicKey {
			reporters[i].Authorized = true
			return reporters
		}
	}
	maxIndex := int32(-1)
	for _, r := range reporters {
		if r.Index > maxIndex {
			maxIndex = r.Index
		}
	}
	return append(reporters, Reporter{PublicKey: publicKey, Authorized: true, Index: maxIndex + 1})
}
