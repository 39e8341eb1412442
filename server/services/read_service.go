// Package services holds the façade's business logic, kept separate from
// the HTTP transport layer per walletserver/services' split.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"provenance-chain/core"
	"provenance-chain/internal/perr"
	"provenance-chain/internal/store"
)

// ReadService composes as-of queries against the block-versioned read
// store for the façade's GET endpoints (spec.md §6, SPEC_FULL.md §8).
type ReadService struct {
	store store.Store
}

func NewReadService(s store.Store) *ReadService {
	return &ReadService{store: s}
}

// CurrentBlock exposes C6's notion of "now" for callers that need to pin
// an as-of query to the live block.
func (r *ReadService) CurrentBlock(ctx context.Context) (int64, error) {
	num, ok, err := r.store.CurrentBlock(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, perr.NotFound("current block")
	}
	return num, nil
}

func (r *ReadService) Agent(ctx context.Context, publicKey string) (store.Row, error) {
	return r.live(ctx, store.TableAgents, publicKey, "agent")
}

func (r *ReadService) Record(ctx context.Context, recordID string) (store.Row, error) {
	return r.live(ctx, store.TableRecords, recordID, "record")
}

func (r *ReadService) RecordType(ctx context.Context, name string) (store.Row, error) {
	return r.live(ctx, store.TableRecordTypes, name, "record type")
}

func (r *ReadService) Property(ctx context.Context, recordID, name string) (store.Row, error) {
	return r.live(ctx, store.TableProperties, fmt.Sprintf("%s/%s", name, recordID), "property")
}

func (r *ReadService) ListAgents(ctx context.Context) ([]store.Row, error) {
	return r.store.ListLive(ctx, store.TableAgents)
}

func (r *ReadService) ListRecords(ctx context.Context) ([]store.Row, error) {
	return r.store.ListLive(ctx, store.TableRecords)
}

func (r *ReadService) ListRecordTypes(ctx context.Context) ([]store.Row, error) {
	return r.store.ListLive(ctx, store.TableRecordTypes)
}

func (r *ReadService) ListProposals(ctx context.Context) ([]store.Row, error) {
	return r.store.ListLive(ctx, store.TableProposals)
}

func (r *ReadService) live(ctx context.Context, table store.Table, indexValue, label string) (store.Row, error) {
	row, ok, err := r.store.Live(ctx, table, indexValue)
	if err != nil {
		return store.Row{}, err
	}
	if !ok {
		return store.Row{}, perr.NotFound(label + " " + indexValue)
	}
	return row, nil
}

// PropertyHistoryEntry is one page's worth of history for the combined
// properties/propertyPages join described in SPEC_FULL.md §8.
type PropertyHistoryEntry struct {
	PageNum int             `json:"pageNum"`
	Doc     json.RawMessage `json:"doc"`
}

// PropertyHistory composes the Property header with its current page plus
// up to lookback prior pages, walking backward from CurrentPage.
func (r *ReadService) PropertyHistory(ctx context.Context, recordID, name string, lookback int) (store.Row, []PropertyHistoryEntry, error) {
	propRow, err := r.Property(ctx, recordID, name)
	if err != nil {
		return store.Row{}, nil, err
	}
	var prop core.Property
	if err := unmarshalDoc(propRow.Doc, &prop); err != nil {
		return store.Row{}, nil, perr.Decode(propRow.IndexValue, err)
	}

	var entries []PropertyHistoryEntry
	page := prop.CurrentPage
	for i := 0; i <= lookback && page > 0; i++ {
		idx := fmt.Sprintf("%s/%s/%04x", name, recordID, page)
		row, ok, err := r.store.Live(ctx, store.TablePropertyPages, idx)
		if err != nil {
			return store.Row{}, nil, err
		}
		if ok {
			entries = append(entries, PropertyHistoryEntry{PageNum: int(page), Doc: row.Doc})
		}
		if page == 1 {
			break
		}
		page--
	}
	return propRow, entries, nil
}
