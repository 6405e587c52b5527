package fhe

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	handleLen    = 32
	signatureLen = 65
)

// Coprocessor is a mock of the homomorphic encryption service in the style
// of a local development node: plaintexts are kept behind random handles,
// input proofs are signatures of an input verifier key, and the only
// supported homomorphic operation is the scope containment test.
type Coprocessor struct {
	store   HandleStore
	key     *ecdsa.PrivateKey
	address common.Address
	log     *slog.Logger
}

// NewCoprocessor creates a coprocessor signing input proofs with key.
func NewCoprocessor(store HandleStore, key *ecdsa.PrivateKey, log *slog.Logger) *Coprocessor {
	return &Coprocessor{
		store:   store,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		log:     log.With("component", "coprocessor"),
	}
}

// InputVerifier is the address that signs input proofs.
func (c *Coprocessor) InputVerifier() string {
	return c.address.Hex()
}

// EncryptInput stores values and returns their handles with a proof.
func (c *Coprocessor) EncryptInput(ctx context.Context, contract, user string, values []Value) (*Encrypted, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	if len(values) > 255 {
		return nil, fmt.Errorf("too many values staged: %d", len(values))
	}

	contractAddr := common.HexToAddress(contract)
	userAddr := common.HexToAddress(user)

	cts := make([]Ciphertext, len(values))
	raw := make([][]byte, len(values))
	for i, v := range values {
		if err := checkWidth(v); err != nil {
			return nil, err
		}
		salt := uuid.New()
		idx := make([]byte, 8)
		binary.BigEndian.PutUint64(idx, uint64(i))
		h := crypto.Keccak256(contractAddr.Bytes(), userAddr.Bytes(), idx, salt[:])
		raw[i] = h
		cts[i] = Ciphertext{
			Handle:   hexutil.Encode(h),
			Bits:     v.Bits,
			Value:    v.Value,
			Contract: contractAddr.Hex(),
			User:     userAddr.Hex(),
		}
	}

	sig, err := crypto.Sign(inputDigest(contractAddr, userAddr, raw), c.key)
	if err != nil {
		return nil, fmt.Errorf("sign input proof: %w", err)
	}

	if err := c.store.Put(ctx, cts); err != nil {
		return nil, fmt.Errorf("store ciphertexts: %w", err)
	}

	proof := make([]byte, 0, 1+len(raw)*handleLen+signatureLen)
	proof = append(proof, byte(len(raw)))
	for _, h := range raw {
		proof = append(proof, h...)
	}
	proof = append(proof, sig...)

	handles := make([]string, len(cts))
	for i, ct := range cts {
		handles[i] = ct.Handle
	}

	c.log.Debug("input encrypted", "contract", contractAddr.Hex(), "user", userAddr.Hex(), "handles", len(handles))

	return &Encrypted{Handles: handles, InputProof: hexutil.Encode(proof)}, nil
}

// VerifyInput checks that proof was issued for handle, contract and user.
func (c *Coprocessor) VerifyInput(ctx context.Context, contract, user, handle, proof string) error {
	data, err := hexutil.Decode(proof)
	if err != nil || len(data) < 1 {
		return ErrInvalidProof
	}
	n := int(data[0])
	if len(data) != 1+n*handleLen+signatureLen {
		return ErrInvalidProof
	}

	raw := make([][]byte, n)
	found := false
	for i := 0; i < n; i++ {
		raw[i] = data[1+i*handleLen : 1+(i+1)*handleLen]
		if strings.EqualFold(hexutil.Encode(raw[i]), handle) {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: handle not covered", ErrInvalidProof)
	}

	contractAddr := common.HexToAddress(contract)
	userAddr := common.HexToAddress(user)
	sig := data[1+n*handleLen:]

	pub, err := crypto.SigToPub(inputDigest(contractAddr, userAddr, raw), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if crypto.PubkeyToAddress(*pub) != c.address {
		return fmt.Errorf("%w: wrong signer", ErrInvalidProof)
	}

	if _, err := c.store.Get(ctx, handle); err != nil {
		return fmt.Errorf("lookup handle: %w", err)
	}
	return nil
}

// IsSubset evaluates (sub & ^super) == 0 over two encrypted bitmasks.
func (c *Coprocessor) IsSubset(ctx context.Context, sub, super string) (bool, error) {
	a, err := c.reveal(ctx, sub)
	if err != nil {
		return false, err
	}
	b, err := c.reveal(ctx, super)
	if err != nil {
		return false, err
	}
	return a&^b == 0, nil
}

func (c *Coprocessor) reveal(ctx context.Context, handle string) (uint64, error) {
	ct, err := c.store.Get(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrUnknownHandle) {
			return 0, err
		}
		return 0, fmt.Errorf("get ciphertext: %w", err)
	}
	return ct.Value, nil
}

func inputDigest(contract, user common.Address, handles [][]byte) []byte {
	parts := make([][]byte, 0, len(handles)+2)
	parts = append(parts, contract.Bytes(), user.Bytes())
	parts = append(parts, handles...)
	return crypto.Keccak256(parts...)
}

func checkWidth(v Value) error {
	switch v.Bits {
	case 8, 16, 32:
		if v.Value >= 1<<uint(v.Bits) {
			return ErrValueTooLarge
		}
	case 64:
	default:
		return fmt.Errorf("unsupported bit width %d", v.Bits)
	}
	return nil
}
