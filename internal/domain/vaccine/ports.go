package vaccine

import (
	"context"

	"maskedvaccine/internal/domain/ledger"
)

// Signer is the signing identity of the session.
type Signer interface {
	Address() string
}

// Ledger is the contract binding used by the session. Write calls are sent
// on behalf of the bound signer.
type Ledger interface {
	Contract() string
	CreateRecord(ctx context.Context, call ledger.CreateRecordCall) (*ledger.Receipt, error)
	AuthorizeVerifier(ctx context.Context, call ledger.AuthorizeCall) (*ledger.Receipt, error)
	RequestDecryption(ctx context.Context, call ledger.DecryptionCall) (*ledger.Receipt, error)
	Events(ctx context.Context, filter ledger.EventFilter) ([]ledger.Log, error)
}

// Store is the durable side of the local record cache. Keys are
// string-encoded record ids. Entries are never deleted.
type Store interface {
	Load(ctx context.Context) (map[string]Payload, error)
	Save(ctx context.Context, key string, p Payload) error
}

// TagGenerator produces scope tags. Every call returns a fresh tag.
type TagGenerator interface {
	Next(namespace string, scope Scope) string
}
