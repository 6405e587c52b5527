package cli

import (
	"context"
	"errors"
	"testing"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabled(t *testing.T) {
	tests := []struct {
		name     string
		active   uint64
		contains []string
	}{
		{
			name:     "no active record",
			contains: []string{"запрос на расшифровку отключен", "record select"},
		},
		{
			name:     "missing dependencies",
			active:   7,
			contains: []string{"encryption instance", "signer", "contract binding", "LEDGER_URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := vaccine.NewSession(vaccine.Deps{})
			session.SelectRecord(tt.active)
			require.False(t, session.CanRequestDecryption())

			err := Disabled(session, "запрос на расшифровку")
			require.Error(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	session := vaccine.NewSession(vaccine.Deps{})

	err := Explain(session, vaccine.ErrUnavailable)
	assert.ErrorIs(t, err, vaccine.ErrUnavailable)
	assert.Contains(t, err.Error(), "CHAIN_ID")

	_, reqErr := session.RequestDecryption(context.Background(), 1, vaccine.ScopeVaccineType)
	require.ErrorIs(t, reqErr, vaccine.ErrUnavailable)

	boom := errors.New("boom")
	assert.ErrorIs(t, Explain(session, boom), boom)
}
