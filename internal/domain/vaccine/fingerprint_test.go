package vaccine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestProviderHash(t *testing.T) {
	want := crypto.Keccak256Hash([]byte("Pfizer-BioNTech-Beijing Vaccination Center")).Hex()
	assert.Equal(t, want, DemoPayload.ProviderHash())
	assert.Equal(t, want, ProviderHash("Pfizer-BioNTech", "Beijing Vaccination Center"))

	// fields other than manufacturer and site do not matter
	p := DemoPayload
	p.VaccineType = "other"
	p.Notes = ""
	assert.Equal(t, want, p.ProviderHash())

	// the separator makes the fingerprint ambiguous
	assert.Equal(t, ProviderHash("a-b", "c"), ProviderHash("a", "b-c"))
}

func TestPayload_Commitment(t *testing.T) {
	c := DemoPayload.Commitment()
	assert.Len(t, c, 18)
	assert.True(t, strings.HasPrefix(c, "0x"))
	assert.Equal(t, fmt.Sprintf("0x%016x", DemoPayload.Encoding()), c)
}

func TestHashCommitment(t *testing.T) {
	ph := DemoPayload.ProviderHash()
	assert.Equal(t, ph[:18], hashCommitment(ph))
	assert.Equal(t, "0x12", hashCommitment("0x12"))
}

func TestPayload_Encoding_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := payloadGen().Draw(t, "payload")
		q := p
		assert.Equal(t, p.Encoding(), q.Encoding())

		q.Notes += "x"
		assert.NotEqual(t, p.Digest(), q.Digest())
	})
}

func TestPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Payload)
		wantErr bool
	}{
		{"valid", func(p *Payload) {}, false},
		{"optional fields empty", func(p *Payload) { p.BatchNumber, p.Doctor, p.Notes = "", "", "" }, false},
		{"missing type", func(p *Payload) { p.VaccineType = "" }, true},
		{"missing manufacturer", func(p *Payload) { p.Manufacturer = "" }, true},
		{"missing site", func(p *Payload) { p.Site = "" }, true},
		{"missing date", func(p *Payload) { p.Date = "" }, true},
		{"bad date", func(p *Payload) { p.Date = "15/03/2024" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePayload()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTags(t *testing.T) {
	a := NewCounterTags("seed")
	b := NewCounterTags("seed")

	first := a.Next(NamespaceGrant, ScopeAll)
	assert.Equal(t, first, b.Next(NamespaceGrant, ScopeAll))
	assert.NotEqual(t, first, a.Next(NamespaceGrant, ScopeAll))
	assert.NotEqual(t, a.Next(NamespaceGrant, 3), a.Next(NamespaceRequest, 3))

	var r RandomTags
	assert.NotEqual(t, r.Next(NamespaceRequest, 3), r.Next(NamespaceRequest, 3))
	assert.Len(t, r.Next(NamespaceGrant, 1), 66)
}
