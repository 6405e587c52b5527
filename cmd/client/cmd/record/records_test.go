package record

import (
	"testing"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	session := vaccine.NewSession(vaccine.Deps{})

	tests := []struct {
		name    string
		args    []string
		active  uint64
		want    uint64
		wantErr bool
	}{
		{name: "explicit id", args: []string{"42"}, want: 42},
		{name: "active record", active: 3, want: 3},
		{name: "no active record", wantErr: true},
		{name: "zero id", args: []string{"0"}, wantErr: true},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session.SelectRecord(tt.active)

			got, err := parseID(tt.args, session)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
