package core

import (
	"provenance-chain/internal/perr"
)

// loadContainer fetches and decodes the container at address, returning a
// nil slice (not an error) when the address is unwritten — state stores
// return an empty value for keys that have never been set.
func loadContainer[T NaturalEntity](state StateRW, address string, decode func([]byte) (T, error)) ([]T, error) {
	raw, err := state.GetState(address)
	if err != nil {
		return nil, perr.Transient("get_state", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	entries, err := DecodeContainer(raw, decode)
	if err != nil {
		return nil, perr.Decode(address, err)
	}
	return entries, nil
}

// saveContainer re-encodes and writes back entries at address.
func saveContainer[T NaturalEntity](state StateRW, address string, entries []T) error {
	if err := state.SetState(address, EncodeContainer(entries)); err != nil {
		return perr.Transient("set_state", err)
	}
	return nil
}
