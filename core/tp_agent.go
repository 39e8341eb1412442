package core

import "provenance-chain/internal/perr"

// applyCreateAgent implements CREATE_AGENT (spec.md §4.3): name nonempty,
// signer must not already have an Agent.
func applyCreateAgent(state StateRW, signer string, timestamp int64, body CreateAgentBody) error {
	if body.Name == "" {
		return perr.Validationf("CREATE_AGENT: name must not be empty")
	}
	address := AgentAddress(signer)
	agents, err := loadContainer(state, address, DecodeAgent)
	if err != nil {
		return err
	}
	if _, ok := Find(agents, signer); ok {
		return perr.Validationf("CREATE_AGENT: agent %s already exists", signer)
	}
	agents = Upsert(agents, Agent{PublicKey: signer, Name: body.Name, Timestamp: timestamp})
	return saveContainer(state, address, agents)
}
