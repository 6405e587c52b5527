package reqsign

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"record_id":1}`)

	h, err := Sign(key, "post", "/api/v1/records", body, now)
	require.NoError(t, err)

	addr, err := Verify(h, "POST", "/api/v1/records", body, now.Add(time.Minute), 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), addr)

	forged := h
	forged.Signer = crypto.PubkeyToAddress(other.PublicKey).Hex()

	tests := []struct {
		name    string
		h       Headers
		path    string
		body    []byte
		now     time.Time
		wantErr error
	}{
		{"missing", Headers{}, "/api/v1/records", body, now, ErrMissing},
		{"tampered body", h, "/api/v1/records", []byte(`{"record_id":2}`), now, ErrMismatch},
		{"other path", h, "/api/v1/records/1/grants", body, now, ErrMismatch},
		{"claimed other signer", forged, "/api/v1/records", body, now, ErrMismatch},
		{"stale", h, "/api/v1/records", body, now.Add(time.Hour), ErrStale},
		{"from the future", h, "/api/v1/records", body, now.Add(-time.Hour), ErrStale},
		{"bad signer", Headers{Signer: "bob", Timestamp: h.Timestamp, Signature: h.Signature}, "/api/v1/records", body, now, ErrMalformed},
		{"bad signature", Headers{Signer: h.Signer, Timestamp: h.Timestamp, Signature: "0x01"}, "/api/v1/records", body, now, ErrMalformed},
		{"bad timestamp", Headers{Signer: h.Signer, Timestamp: "yesterday", Signature: h.Signature}, "/api/v1/records", body, now, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(tt.h, "POST", tt.path, tt.body, tt.now, 5*time.Minute)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
