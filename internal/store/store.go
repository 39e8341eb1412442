// Package store implements C6: a block-versioned read store with one table
// per entity class plus blocks, each row carrying a half-open
// [startBlockNum, endBlockNum) liveness interval (spec.md §4.6). The
// document database itself is external (Non-goal); this package defines the
// Store seam plus an in-memory reference implementation and a MongoDB-backed
// one.
package store

import "context"

// Table names the read-store's entity classes.
type Table string

const (
	TableAgents        Table = "agents"
	TableRecords       Table = "records"
	TableRecordTypes   Table = "recordTypes"
	TableProperties    Table = "properties"
	TablePropertyPages Table = "propertyPages"
	TableProposals     Table = "proposals"
)

// MaxBlockNum stands in for the spec's MAX_INT: the endBlockNum of a
// currently-live row.
const MaxBlockNum = int64(1<<63 - 1)

// Row is one version of an entity, live over [StartBlockNum, EndBlockNum).
type Row struct {
	IndexValue    string
	Doc           []byte
	StartBlockNum int64
	EndBlockNum   int64
}

// Store is the block-versioned read store's interface (spec.md §4.6). All
// writes go through BlockUpsert, the sole mutation primitive; reads are
// as-of a target block number, or against the currently-live row.
type Store interface {
	// BlockUpsert implements the three-step algorithm from spec.md §4.6:
	// idempotent replay if a live row already has StartBlockNum == blockNum,
	// otherwise close every currently-live row for indexValue and insert a
	// new one carrying doc.
	BlockUpsert(ctx context.Context, table Table, indexValue string, doc []byte, blockNum int64) error

	// AsOf returns the row live at blockNum for indexValue, if any.
	AsOf(ctx context.Context, table Table, indexValue string, blockNum int64) (Row, bool, error)

	// Live returns the currently-live row for indexValue (EndBlockNum ==
	// MaxBlockNum), if any — a convenience over AsOf at CurrentBlock.
	Live(ctx context.Context, table Table, indexValue string) (Row, bool, error)

	// ListLive returns every currently-live row in table, for listing
	// endpoints (e.g. "all records").
	ListLive(ctx context.Context, table Table) ([]Row, error)

	// InsertBlock records a newly-applied block descriptor (step 6 of the
	// per-block job in spec.md §4.5).
	InsertBlock(ctx context.Context, blockNum int64, blockID string) error

	// CurrentBlock returns the max blockNum recorded via InsertBlock, or
	// (0, false) if no block has been applied yet.
	CurrentBlock(ctx context.Context) (int64, bool, error)
}
