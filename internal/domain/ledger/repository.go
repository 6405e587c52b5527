package ledger

import (
	"context"
)

// Store persists contract state. Every state transition of a call runs
// inside a single InTx so it is applied atomically.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Record(ctx context.Context, id uint64) (*Record, error)
	Events(ctx context.Context, filter EventFilter) ([]Log, error)
}

// Tx is the write side of Store, valid only inside InTx.
type Tx interface {
	InsertRecord(ctx context.Context, rec *Record) (uint64, error)
	Record(ctx context.Context, id uint64) (*Record, error)
	PutGrant(ctx context.Context, g *Grant) error
	Grant(ctx context.Context, recordID uint64, verifier string) (*Grant, error)
	// Append stores logs in a new block and returns its number.
	Append(ctx context.Context, logs []Log) (uint64, error)
}
