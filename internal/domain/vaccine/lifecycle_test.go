package vaccine

import (
	"context"
	"fmt"
	"testing"

	"maskedvaccine/internal/domain/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func payloadGen() *rapid.Generator[Payload] {
	return rapid.Custom(func(t *rapid.T) Payload {
		y := rapid.IntRange(1990, 2030).Draw(t, "year")
		m := rapid.IntRange(1, 12).Draw(t, "month")
		d := rapid.IntRange(1, 28).Draw(t, "day")
		return Payload{
			VaccineType:  rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ()-]{0,23}`).Draw(t, "type"),
			Manufacturer: rapid.StringMatching(`[A-Za-z][A-Za-z0-9 -]{0,23}`).Draw(t, "manufacturer"),
			BatchNumber:  rapid.StringMatching(`[A-Z0-9]{0,8}`).Draw(t, "batch"),
			Date:         fmt.Sprintf("%04d-%02d-%02d", y, m, d),
			Site:         rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,31}`).Draw(t, "site"),
			Doctor:       rapid.StringMatching(`[A-Za-z. ]{0,16}`).Draw(t, "doctor"),
			Notes:        rapid.StringMatching(`[A-Za-z0-9 ,.]{0,40}`).Draw(t, "notes"),
		}
	})
}

func TestSession_CreateRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.session(ownerAddr, nil)

	p := samplePayload()
	created, err := s.CreateRecord(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), created.RecordID)
	assert.Equal(t, p.ProviderHash(), created.ProviderHash)
	assert.NotEmpty(t, created.TxHash)
	assert.NotEmpty(t, created.Handle)

	assert.Equal(t, []uint64{1}, s.Records())
	assert.Equal(t, uint64(1), s.Active())
	assert.Nil(t, s.Result())

	cached, ok := s.Cache().Get(1)
	require.True(t, ok)
	assert.Equal(t, p, cached)

	rec, err := env.contract.Record(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ledger.NormalizeAddress(ownerAddr), rec.Owner)
	assert.Equal(t, p.ProviderHash(), rec.ProviderHash)
	assert.Equal(t, created.Handle, rec.Handle)

	second, err := s.CreateDemoRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.RecordID)
	assert.Equal(t, []uint64{1, 2}, s.Records())
	assert.Equal(t, uint64(2), s.Active())
}

func TestSession_CreateRecord_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	s := env.session(ownerAddr, nil)

	p := samplePayload()
	p.Site = ""

	_, err := s.CreateRecord(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, s.Records())
	assert.Zero(t, s.Cache().Len())
}

func TestSession_CreateRecord_LedgerFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		receipt *ledger.Receipt
		err     error
	}{
		{"submission error", nil, errBoom},
		{"reverted receipt", &ledger.Receipt{TxHash: "0xdead", Status: ledger.StatusFailed}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ml := new(MockLedger)
			ml.On("Contract").Return(contractAddr)
			ml.On("CreateRecord", mock.Anything, mock.AnythingOfType("ledger.CreateRecordCall")).Return(tt.receipt, tt.err)

			s := NewSession(Deps{Instance: env.instance, Signer: testSigner(ownerAddr), Ledger: ml})

			_, err := s.CreateRecord(ctx, samplePayload())
			assert.Error(t, err)
			assert.Empty(t, s.Records())
			assert.Zero(t, s.Active())
			assert.Zero(t, s.Cache().Len())

			ml.AssertExpectations(t)
		})
	}
}

func TestSession_CreateRecord_NoCreationLog(t *testing.T) {
	env := newTestEnv(t)

	ml := new(MockLedger)
	ml.On("Contract").Return(contractAddr)
	ml.On("CreateRecord", mock.Anything, mock.MatchedBy(func(call ledger.CreateRecordCall) bool {
		return call.ProviderHash == samplePayload().ProviderHash() && call.Handle != "" && call.InputProof != ""
	})).Return(&ledger.Receipt{TxHash: "0xabc", BlockNumber: 7, Status: ledger.StatusSuccess}, nil)

	s := NewSession(Deps{Instance: env.instance, Signer: testSigner(ownerAddr), Ledger: ml})

	created, err := s.CreateRecord(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Zero(t, created.RecordID)
	assert.Equal(t, "0xabc", created.TxHash)

	assert.Empty(t, s.Records())
	assert.Zero(t, s.Active())
	assert.Zero(t, s.Cache().Len())

	ml.AssertExpectations(t)
}

func TestLastCreatedID(t *testing.T) {
	tests := []struct {
		name   string
		logs   []ledger.Log
		want   uint64
		wantOK bool
	}{
		{"empty", nil, 0, false},
		{"other events only", []ledger.Log{{Name: ledger.EventVerifierAuthorized, RecordID: 3}}, 0, false},
		{"single", []ledger.Log{{Name: ledger.EventRecordCreated, RecordID: 3}}, 3, true},
		{"last wins", []ledger.Log{
			{Name: ledger.EventRecordCreated, RecordID: 3},
			{Name: ledger.EventVerifierAuthorized, RecordID: 9},
			{Name: ledger.EventRecordCreated, RecordID: 4},
		}, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := lastCreatedID(tt.logs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

// A fresh ledger assigns id 1, discovery finds it, and decrypt returns the
// exact plaintext from the cache.
func TestSession_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := NewCache(nil, discardLogger())

	s := env.session(ownerAddr, cache)
	created, err := s.CreateRecord(ctx, DemoPayload)
	require.NoError(t, err)
	require.Equal(t, uint64(1), created.RecordID)

	fresh := env.session(ownerAddr, cache)
	ids := fresh.LoadOwnedRecords(ctx, ownerAddr)
	assert.Equal(t, []uint64{1}, ids)
	assert.Equal(t, uint64(1), fresh.Active())

	res := fresh.DecryptActive(ctx)
	assert.Equal(t, TierExactCache, res.Tier)
	assert.True(t, res.Verified)
	assert.Equal(t, DemoPayload, res.Fields)
	assert.Equal(t, DemoPayload.Commitment(), res.Commitment)
	assert.Equal(t, res, fresh.Result())
}

func TestSession_CreateThenDecrypt_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		s := env.session(ownerAddr, nil)

		p := payloadGen().Draw(t, "payload")
		created, err := s.CreateRecord(ctx, p)
		require.NoError(t, err)
		require.NotZero(t, created.RecordID)

		res := s.Decrypt(ctx, created.RecordID)
		assert.Equal(t, TierExactCache, res.Tier)
		assert.True(t, res.Verified)
		assert.Equal(t, p, res.Fields)
	})
}
