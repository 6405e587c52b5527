package vaccine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"all", ScopeAll, false},
		{"ALL", ScopeAll, false},
		{"31", 0b11111, false},
		{"0b11", 0b11, false},
		{"0x1f", 0b11111, false},
		{"type,manufacturer", ScopeVaccineType | ScopeManufacturer, false},
		{" date , site ", ScopeDate | ScopeSite, false},
		{"doctor,notes", ScopeDoctor | ScopeNotes, false},
		{"", 0, true},
		{"0", 0, true},
		{"128", 0, true},
		{"type,eyecolor", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "all", ScopeAll.String())
	assert.Equal(t, "type,manufacturer", Scope(0b11).String())
	assert.Equal(t, "batch,0x100", (ScopeBatch | 1<<8).String())
}

func TestScope_Valid(t *testing.T) {
	assert.True(t, ScopeVaccineType.Valid())
	assert.True(t, ScopeAll.Valid())
	assert.False(t, Scope(0).Valid())
	assert.False(t, Scope(1<<7).Valid())
	assert.Equal(t, 7, ScopeAll.Len())
}

func TestScope_RoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := Scope(rapid.Uint32Range(1, uint32(ScopeAll)).Draw(t, "mask"))
		got, err := ParseScope(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})
}

func TestScope_Contains_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := Scope(rapid.Uint32Range(0, uint32(ScopeAll)).Draw(t, "a"))
		b := Scope(rapid.Uint32Range(0, uint32(ScopeAll)).Draw(t, "b"))

		assert.True(t, a.Contains(a))
		assert.True(t, (a | b).Contains(a))
		assert.Equal(t, a&b == b, a.Contains(b))
	})
}
