package core

// Containers hold the sorted, deduplicated list of entities that happen to
// collide at one flat state address (spec.md §3). Every write to an address
// follows the same load-mutate-sort-store sequence: decode the existing
// container (or start empty), insert/replace the entity by its natural key,
// re-sort, and re-encode.

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// NaturalEntity is anything that can live inside a Container: it knows its
// own sort/dedup key and how to serialise itself.
type NaturalEntity interface {
	NaturalKey() string
	Encode() []byte
}

const tagContainerEntries protowire.Number = 1

// EncodeContainer serialises entries, in whatever order they are given, as
// a Container message. Callers are expected to pass already-sorted entries
// (see SortEntries / Upsert below) — Container invariant 2 is a property
// of what gets written, not of this function.
func EncodeContainer[T NaturalEntity](entries []T) []byte {
	w := &fieldWriter{}
	for _, e := range entries {
		w.putMessage(tagContainerEntries, e.Encode())
	}
	return w.buf
}

// DecodeContainer parses a Container message, decoding each entry with the
// supplied decoder.
func DecodeContainer[T NaturalEntity](b []byte, decode func([]byte) (T, error)) ([]T, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	out := make([]T, 0, len(fields))
	for _, f := range fields {
		if f.tag != tagContainerEntries {
			continue
		}
		e, err := decode(f.bytes)
		if err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// SortEntries sorts entries ascending by natural key in place and returns
// them, satisfying invariant 2 (no duplicate keys is the caller's
// responsibility — see Upsert, which is the only mutation path C3 uses).
func SortEntries[T NaturalEntity](entries []T) []T {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NaturalKey() < entries[j].NaturalKey()
	})
	return entries
}

// Upsert inserts entity into entries (replacing any existing entry with the
// same natural key) and returns the result, sorted. This is the only
// mutation primitive the transaction processor uses to modify a container,
// so invariant 2 (sorted, no duplicate keys) holds by construction.
func Upsert[T NaturalEntity](entries []T, entity T) []T {
	key := entity.NaturalKey()
	for i, e := range entries {
		if e.NaturalKey() == key {
			entries[i] = entity
			return SortEntries(entries)
		}
	}
	entries = append(entries, entity)
	return SortEntries(entries)
}

// Find returns the entry with the given natural key, if present.
func Find[T NaturalEntity](entries []T, key string) (T, bool) {
	for _, e := range entries {
		if e.NaturalKey() == key {
			return e, true
		}
	}
	var zero T
	return zero, false
}
