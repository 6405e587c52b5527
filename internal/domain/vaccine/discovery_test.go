package vaccine

import (
	"context"
	"testing"

	"maskedvaccine/internal/domain/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSession_LoadOwnedRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.session(ownerAddr, nil)
	stranger := env.session(strangerAddr, nil)

	_, err := owner.CreateRecord(ctx, samplePayload())
	require.NoError(t, err)
	_, err = stranger.CreateRecord(ctx, DemoPayload)
	require.NoError(t, err)
	_, err = owner.CreateDemoRecord(ctx)
	require.NoError(t, err)

	s := env.session(ownerAddr, nil)
	ids := s.LoadMyRecords(ctx)
	assert.Equal(t, []uint64{1, 3}, ids)
	assert.Equal(t, []uint64{1, 3}, s.Records())
	assert.Equal(t, uint64(3), s.Active())
	assert.Nil(t, s.Result())

	other := env.session(strangerAddr, nil)
	assert.Equal(t, []uint64{2}, other.LoadOwnedRecords(ctx, strangerAddr))
}

func TestSession_LoadOwnedRecords_Empty(t *testing.T) {
	env := newTestEnv(t)
	s := env.session(ownerAddr, nil)
	s.SelectRecord(7)

	ids := s.LoadOwnedRecords(context.Background(), ownerAddr)
	assert.Empty(t, ids)
	assert.Empty(t, s.Records())
	assert.Equal(t, uint64(7), s.Active())
}

func TestSession_LoadOwnedRecords_FailureKeepsIndex(t *testing.T) {
	ml := new(MockLedger)
	filter := ledger.EventFilter{Name: ledger.EventRecordCreated, Creator: ownerAddr}
	ml.On("Events", mock.Anything, filter).Return([]ledger.Log{
		{Name: ledger.EventRecordCreated, RecordID: 4, Creator: ownerAddr},
		{Name: ledger.EventRecordCreated, RecordID: 6, Creator: ownerAddr},
	}, nil).Once()
	ml.On("Events", mock.Anything, filter).Return(nil, errBoom).Once()

	s := NewSession(Deps{Ledger: ml, Signer: testSigner(ownerAddr)})

	assert.Equal(t, []uint64{4, 6}, s.LoadMyRecords(context.Background()))
	assert.Equal(t, uint64(6), s.Active())

	assert.Empty(t, s.LoadMyRecords(context.Background()))
	assert.Equal(t, []uint64{4, 6}, s.Records())
	assert.Equal(t, uint64(6), s.Active())
	assert.Contains(t, s.Status(), "failed to read records")

	ml.AssertExpectations(t)
}
