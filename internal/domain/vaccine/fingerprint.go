package vaccine

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ProviderHash fingerprints manufacturer and site. It is neither reversible
// nor unique.
func ProviderHash(manufacturer, site string) string {
	return crypto.Keccak256Hash([]byte(manufacturer + "-" + site)).Hex()
}

// ProviderHash returns the fingerprint of p.
func (p Payload) ProviderHash() string {
	return ProviderHash(p.Manufacturer, p.Site)
}

// Digest is keccak256 over the JSON encoding of p.
func (p Payload) Digest() common.Hash {
	data, _ := json.Marshal(p)
	return crypto.Keccak256Hash(data)
}

// Encoding is the value actually encrypted on chain: the first 8 bytes of
// Digest as an unsigned integer. The structured payload never leaves the
// client.
func (p Payload) Encoding() uint64 {
	d := p.Digest()
	return binary.BigEndian.Uint64(d[:8])
}

// Commitment is the short display form of Digest.
func (p Payload) Commitment() string {
	return p.Digest().Hex()[:18]
}

func hashCommitment(providerHash string) string {
	if len(providerHash) < 18 {
		return providerHash
	}
	return "0x" + providerHash[2:18]
}
