package fhe

import (
	"context"
)

// Value is a plaintext staged for encryption.
type Value struct {
	Bits  int    `json:"bits"`
	Value uint64 `json:"value"`
}

// Encrypted is the result of an input encryption: one handle per staged
// value and a proof binding them to a contract and a user.
type Encrypted struct {
	Handles    []string `json:"handles"`
	InputProof string   `json:"input_proof"`
}

// Ciphertext is what the coprocessor keeps behind a handle.
type Ciphertext struct {
	Handle   string `json:"handle"`
	Bits     int    `json:"bits"`
	Value    uint64 `json:"value"`
	Contract string `json:"contract"`
	User     string `json:"user"`
}

// Metadata describes a relayer endpoint.
type Metadata struct {
	ChainID           uint64 `json:"chain_id"`
	InputVerifier     string `json:"input_verifier"`
	ContractAddress   string `json:"contract_address"`
	ClientDescription string `json:"client"`
}

// Relayer encrypts staged inputs. Implemented by the in-process Coprocessor
// and by the HTTP relayer client.
type Relayer interface {
	EncryptInput(ctx context.Context, contract, user string, values []Value) (*Encrypted, error)
}

// HandleStore persists ciphertexts by handle.
type HandleStore interface {
	Put(ctx context.Context, cts []Ciphertext) error
	Get(ctx context.Context, handle string) (*Ciphertext, error)
}
