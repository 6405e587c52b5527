package vaccine

import (
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Tag namespaces keep grant and request tags apart.
const (
	NamespaceGrant   = "scope"
	NamespaceRequest = "request"
)

// CounterTags derives tags from a monotonic counter. Deterministic for a
// given seed, which makes it the generator of choice in tests.
type CounterTags struct {
	seed string
	n    atomic.Uint64
}

func NewCounterTags(seed string) *CounterTags {
	return &CounterTags{seed: seed}
}

func (c *CounterTags) Next(namespace string, scope Scope) string {
	n := c.n.Add(1)
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s_%d_%s_%d", namespace, uint32(scope), c.seed, n))).Hex()
}

// RandomTags derives tags from random UUIDs.
type RandomTags struct{}

func (RandomTags) Next(namespace string, scope Scope) string {
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s_%d_%s", namespace, uint32(scope), uuid.NewString()))).Hex()
}
