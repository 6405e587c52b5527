package ledger

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps contract state in process memory. Used by the node when
// no database is configured and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uint64]*Record
	grants  map[string]*Grant
	logs    []Log
	nextID  uint64
	block   uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uint64]*Record),
		grants:  make(map[string]*Grant),
	}
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(memoryTx{m})
}

func (m *MemoryStore) Record(_ context.Context, id uint64) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record(id)
}

func (m *MemoryStore) Events(_ context.Context, filter EventFilter) ([]Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Log, 0)
	for _, l := range m.logs {
		if filter.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MemoryStore) record(id uint64) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func grantKey(recordID uint64, verifier string) string {
	return strings.ToLower(NormalizeAddress(verifier)) + "/" + formatID(recordID)
}

type memoryTx struct {
	m *MemoryStore
}

func (t memoryTx) InsertRecord(_ context.Context, rec *Record) (uint64, error) {
	t.m.nextID++
	cp := *rec
	cp.ID = t.m.nextID
	t.m.records[cp.ID] = &cp
	return cp.ID, nil
}

func (t memoryTx) Record(_ context.Context, id uint64) (*Record, error) {
	return t.m.record(id)
}

func (t memoryTx) PutGrant(_ context.Context, g *Grant) error {
	cp := *g
	t.m.grants[grantKey(g.RecordID, g.Verifier)] = &cp
	return nil
}

func (t memoryTx) Grant(_ context.Context, recordID uint64, verifier string) (*Grant, error) {
	g, ok := t.m.grants[grantKey(recordID, verifier)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (t memoryTx) Append(_ context.Context, logs []Log) (uint64, error) {
	t.m.block++
	for _, l := range logs {
		l.BlockNumber = t.m.block
		t.m.logs = append(t.m.logs, l)
	}
	return t.m.block, nil
}
