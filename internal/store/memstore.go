package store

// MemStore is the in-memory reference Store implementation, grounded on the
// teacher's map-backed test doubles (core/access_control_test.go's Ledger
// type, also the model for core/state.go's MemoryState). Used by tests; the
// daemons always use MongoStore.

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu     sync.Mutex
	rows   map[Table]map[string][]Row // table -> indexValue -> versions, oldest first
	blocks []blockRecord
}

type blockRecord struct {
	BlockNum int64
	BlockID  string
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[Table]map[string][]Row)}
}

func (m *MemStore) BlockUpsert(_ context.Context, table Table, indexValue string, doc []byte, blockNum int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byIndex, ok := m.rows[table]
	if !ok {
		byIndex = make(map[string][]Row)
		m.rows[table] = byIndex
	}
	versions := byIndex[indexValue]

	for _, r := range versions {
		if r.EndBlockNum == MaxBlockNum && r.StartBlockNum == blockNum {
			return nil // idempotent replay
		}
	}
	for i, r := range versions {
		if r.EndBlockNum == MaxBlockNum {
			versions[i].EndBlockNum = blockNum
		}
	}
	versions = append(versions, Row{
		IndexValue:    indexValue,
		Doc:           append([]byte(nil), doc...),
		StartBlockNum: blockNum,
		EndBlockNum:   MaxBlockNum,
	})
	byIndex[indexValue] = versions
	return nil
}

func (m *MemStore) AsOf(_ context.Context, table Table, indexValue string, blockNum int64) (Row, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows[table][indexValue] {
		if r.StartBlockNum <= blockNum && blockNum < r.EndBlockNum {
			return r, true, nil
		}
	}
	return Row{}, false, nil
}

func (m *MemStore) Live(ctx context.Context, table Table, indexValue string) (Row, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows[table][indexValue] {
		if r.EndBlockNum == MaxBlockNum {
			return r, true, nil
		}
	}
	return Row{}, false, nil
}

func (m *MemStore) ListLive(_ context.Context, table Table) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Row
	for _, versions := range m.rows[table] {
		for _, r := range versions {
			if r.EndBlockNum == MaxBlockNum {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IndexValue < out[j].IndexValue })
	return out, nil
}

func (m *MemStore) InsertBlock(_ context.Context, blockNum int64, blockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = append(m.blocks, blockRecord{BlockNum: blockNum, BlockID: blockID})
	return nil
}

func (m *MemStore) CurrentBlock(_ context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.blocks) == 0 {
		return 0, false, nil
	}
	max := m.blocks[0].BlockNum
	for _, b := range m.blocks[1:] {
		if b.BlockNum > max {
			max = b.BlockNum
		}
	}
	return max, true, nil
}
