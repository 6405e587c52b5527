package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/utils/reqsign"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMarker string
		wantErr    error
		wantText   string
	}{
		{
			name:       "revert",
			status:     http.StatusConflict,
			body:       `{"title":"Conflict","status":409,"detail":"execution reverted: Not authorized: grant expired"}`,
			wantMarker: ledger.ReasonNotAuthorized,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"title":"Not Found","status":404,"detail":"record not found"}`,
			wantErr: ledger.ErrNotFound,
		},
		{
			name:     "server error with detail",
			status:   http.StatusInternalServerError,
			body:     `{"title":"Internal Server Error","status":500,"detail":"internal error"}`,
			wantText: "internal error",
		},
		{
			name:     "no body",
			status:   http.StatusBadGateway,
			body:     ``,
			wantText: "502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := responseError(tt.status, []byte(tt.body))
			require.Error(t, err)

			if tt.wantMarker != "" {
				var re *ledger.RevertError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "Not authorized: grant expired", re.Reason)
				assert.True(t, ledger.HasMarker(err, tt.wantMarker))
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestLedgerClient_SignsWrites(t *testing.T) {
	owner := identity(t, ownerKey)

	var gotSender string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := reqsign.Headers{
			Signer:    r.Header.Get(reqsign.HeaderSigner),
			Timestamp: r.Header.Get(reqsign.HeaderTimestamp),
			Signature: r.Header.Get(reqsign.HeaderSignature),
		}
		body, _ := io.ReadAll(r.Body)

		sender, err := reqsign.Verify(h, r.Method, r.URL.Path, body, time.Now(), time.Minute)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotSender = sender
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tx_hash":"0x01","block_number":2,"status":1,"logs":[]}`))
	}))
	defer srv.Close()

	c := NewLedgerClient(srv.URL, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", owner.PrivateKey(), time.Second, discardLogger())
	receipt, err := c.RequestDecryption(context.Background(), ledger.DecryptionCall{RecordID: 1, ScopeTag: "tag"})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSuccess, receipt.Status)
	assert.Equal(t, uint64(2), receipt.BlockNumber)
	assert.Equal(t, owner.Address(), gotSender)

	unsigned := NewLedgerClient(srv.URL, "", nil, time.Second, discardLogger())
	_, err = unsigned.CreateRecord(context.Background(), ledger.CreateRecordCall{})
	assert.ErrorIs(t, err, ErrUnsigned)
}
