package vaccine

import (
	"time"
)

// Payload is the plaintext of a vaccination record. The JSON names are the
// keys used by the local record cache.
type Payload struct {
	VaccineType  string `json:"vaccineType"`
	Manufacturer string `json:"manufacturer"`
	BatchNumber  string `json:"batchNumber,omitempty"`
	Date         string `json:"vaccinationDate"`
	Site         string `json:"vaccinationSite"`
	Doctor       string `json:"doctorName,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Record is a vaccine record as known from the ledger.
type Record struct {
	ID              uint64
	Owner           string
	EncryptedHandle string
	ProviderHash    string
	CreatedAt       time.Time
}

// Created describes the outcome of a createRecord submission. RecordID is
// zero when the transaction succeeded but the emitted id could not be read.
type Created struct {
	RecordID     uint64
	TxHash       string
	BlockNumber  uint64
	ProviderHash string
	Handle       string
}

// Grant is an authorization issued by the owner for a verifier.
type Grant struct {
	RecordID uint64
	Verifier string
	Scope    Scope
	Expiry   time.Time
	ScopeTag string
	TxHash   string
}

// DecryptionRequest is the last submitted request for a record.
type DecryptionRequest struct {
	RecordID  uint64
	Requester string
	Scope     Scope
	ScopeTag  string
	TxHash    string
}

// Tier tells how a reconciliation result was obtained.
type Tier string

const (
	TierExactCache   Tier = "EXACT_CACHE"
	TierHashMatched  Tier = "HASH_MATCHED"
	TierMetadataOnly Tier = "METADATA_ONLY"
	TierUnresolved   Tier = "UNRESOLVED"
)

// Result is the outcome of a decrypt attempt. It is recomputed on every
// attempt and never cached.
type Result struct {
	RecordID   uint64
	Fields     Payload
	Verified   bool
	Tier       Tier
	Message    string
	Commitment string
}
