package core

// Dispatch is the transaction processor's single entry point (spec.md
// §4.3): decode the payload, run the common preamble, then hand off to the
// per-action handler. It is the one seam a platform TP host binds its
// apply() callback to — cmd/tp wires this straight into the platform
// client, mirroring how the teacher's cmd/* binaries call a single
// core.InitX/core.Manager() entry point per subsystem rather than
// reimplementing dispatch logic themselves.

import (
	"provenance-chain/internal/perr"
)

// Dispatch validates and applies one transaction payload against state.
// signer is the hex-encoded public key that signed the transaction.
func Dispatch(payloadBytes []byte, signer string, state StateRW) error {
	payload, err := DecodePayload(payloadBytes)
	if err != nil {
		return perr.Validationf("invalid payload: %v", err)
	}
	if payload.Timestamp <= 0 {
		return perr.Validationf("timestamp must be positive")
	}
	switch payload.Action {
	case ActionCreateAgent:
		if payload.CreateAgent == nil {
			return perr.Validationf("CREATE_AGENT: missing body")
		}
		return applyCreateAgent(state, signer, payload.Timestamp, *payload.CreateAgent)
	case ActionCreateRecordType:
		if payload.CreateRecordType == nil {
			return perr.Validationf("CREATE_RECORD_TYPE: missing body")
		}
		return applyCreateRecordType(state, signer, *payload.CreateRecordType)
	case ActionCreateRecord:
		if payload.CreateRecord == nil {
			return perr.Validationf("CREATE_RECORD: missing body")
		}
		return applyCreateRecord(state, signer, payload.Timestamp, *payload.CreateRecord)
	case ActionUpdateProperties:
		if payload.UpdateProperties == nil {
			return perr.Validationf("UPDATE_PROPERTIES: missing body")
		}
		return applyUpdateProperties(state, signer, payload.Timestamp, *payload.UpdateProperties)
	case ActionCreateProposal:
		if payload.CreateProposal == nil {
			return perr.Validationf("CREATE_PROPOSAL: missing body")
		}
		return applyCreateProposal(state, signer, payload.Timestamp, *payload.CreateProposal)
	case ActionAnswerProposal:
		if payload.AnswerProposal == nil {
			return perr.Validationf("ANSWER_PROPOSAL: missing body")
		}
		return applyAnswerProposal(state, signer, *payload.AnswerProposal)
	case ActionRevokeReporter:
		if payload.RevokeReporter == nil {
			return perr.Validationf("REVOKE_REPORTER: missing body")
		}
		return applyRevokeReporter(state, signer, *payload.RevokeReporter)
	case ActionFinalizeRecord:
		if payload.FinalizeRecord == nil {
			return perr.Validationf("FINALIZE_RECORD: missing body")
		}
		return applyFinalizeRecord(state, signer, *payload.FinalizeRecord)
	default:
		return perr.Validationf("unknown action %d", payload.Action)
	}
}

// agentExists reports whether signer has a registered Agent.
func agentExists(state StateRW, publicKey string) (bool, error) {
	agents, err := loadContainer(state, AgentAddress(publicKey), DecodeAgent)
	if err != nil {
		return false, err
	}
	_, ok := Find(agents, publicKey)
	return ok, nil
}
