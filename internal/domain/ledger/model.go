package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Event names emitted by the contract.
const (
	EventRecordCreated       = "RecordCreated"
	EventVerifierAuthorized  = "VerifierAuthorized"
	EventDecryptionRequested = "DecryptionRequested"
)

// Receipt statuses.
const (
	StatusFailed  uint64 = 0
	StatusSuccess uint64 = 1
)

// Record is the on-chain part of a vaccine record.
type Record struct {
	ID           uint64 `json:"id"`
	Owner        string `json:"owner"`
	Handle       string `json:"handle"`
	ProviderHash string `json:"provider_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// Grant is the latest authorization for a (record, verifier) pair.
// The scope stays encrypted: only its handle is stored.
type Grant struct {
	RecordID    uint64 `json:"record_id"`
	Verifier    string `json:"verifier"`
	ScopeHandle string `json:"scope_handle"`
	Expiry      int64  `json:"expiry"`
	ScopeTag    string `json:"scope_tag"`
	IssuedAt    int64  `json:"issued_at"`
}

// Log is a single emitted event. Fields that do not belong to the event
// are left empty.
type Log struct {
	Name         string `json:"name"`
	BlockNumber  uint64 `json:"block_number"`
	TxHash       string `json:"tx_hash"`
	RecordID     uint64 `json:"record_id"`
	Creator      string `json:"creator,omitempty"`
	Verifier     string `json:"verifier,omitempty"`
	Requester    string `json:"requester,omitempty"`
	ProviderHash string `json:"provider_hash,omitempty"`
	ScopeTag     string `json:"scope_tag,omitempty"`
	Expiry       int64  `json:"expiry,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// Receipt is returned once a call is included in a block.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	Status      uint64 `json:"status"`
	Logs        []Log  `json:"logs"`
}

// EventFilter selects logs. Zero values match everything.
type EventFilter struct {
	Name     string
	RecordID uint64
	Creator  string
}

// Match reports whether l passes the filter.
func (f EventFilter) Match(l Log) bool {
	if f.Name != "" && f.Name != l.Name {
		return false
	}
	if f.RecordID != 0 && f.RecordID != l.RecordID {
		return false
	}
	if f.Creator != "" && !SameAddress(f.Creator, l.Creator) {
		return false
	}
	return true
}

// CreateRecordCall is the createRecord(handle, proof, providerHash) call.
type CreateRecordCall struct {
	Handle       string `json:"handle"`
	InputProof   string `json:"input_proof"`
	ProviderHash string `json:"provider_hash"`
}

// AuthorizeCall is the authorizeVerifier(...) call.
type AuthorizeCall struct {
	RecordID       uint64 `json:"record_id"`
	Verifier       string `json:"verifier"`
	EncryptedScope string `json:"encrypted_scope"`
	InputProof     string `json:"input_proof"`
	Expiry         int64  `json:"expiry"`
	ScopeTag       string `json:"scope_tag"`
}

// DecryptionCall is the requestDecryption(...) call.
type DecryptionCall struct {
	RecordID       uint64 `json:"record_id"`
	EncryptedScope string `json:"encrypted_scope"`
	InputProof     string `json:"input_proof"`
	ScopeTag       string `json:"scope_tag"`
}

// NormalizeAddress returns the checksummed form of a hex address.
func NormalizeAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(common.HexToAddress(a).Hex(), common.HexToAddress(b).Hex())
}
