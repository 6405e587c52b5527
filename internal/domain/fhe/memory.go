package fhe

import (
	"context"
	"strings"
	"sync"
)

// MemoryHandleStore keeps ciphertexts in memory.
type MemoryHandleStore struct {
	mu  sync.RWMutex
	cts map[string]Ciphertext
}

func NewMemoryHandleStore() *MemoryHandleStore {
	return &MemoryHandleStore{cts: make(map[string]Ciphertext)}
}

func (m *MemoryHandleStore) Put(_ context.Context, cts []Ciphertext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ct := range cts {
		m.cts[strings.ToLower(ct.Handle)] = ct
	}
	return nil
}

func (m *MemoryHandleStore) Get(_ context.Context, handle string) (*Ciphertext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.cts[strings.ToLower(handle)]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return &ct, nil
}
