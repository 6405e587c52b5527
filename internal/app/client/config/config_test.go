package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CACHE_BACKEND", "LevelDB")
	t.Setenv("CONTRACT_ADDRESSES", "5=0x5FbDB2315678afecb367f032d93F642f64180aa3")

	cfg := MustLoad()

	assert.Equal(t, defaultLedgerURL, cfg.LedgerURL)
	assert.Equal(t, uint64(31337), cfg.ChainID)
	assert.Equal(t, filepath.Join(dir, defaultKeyFile), cfg.KeyPath)
	assert.Equal(t, filepath.Join(dir, "state.json"), cfg.StatePath)
	assert.Equal(t, CacheLevelDB, cfg.CacheBackend)
	assert.Equal(t, filepath.Join(dir, "records.ldb"), cfg.CachePath)
	assert.Equal(t, 500*time.Millisecond, cfg.RevealDelay)
	assert.Equal(t, 24*time.Hour, cfg.GrantTTL)

	addr, ok := cfg.ContractFor(5)
	assert.True(t, ok)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", addr)

	_, ok = cfg.ContractFor(11155111)
	assert.True(t, ok)
}

func TestParseContracts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[uint64]string
		wantErr bool
	}{
		{
			name:  "defaults",
			input: "",
			want:  DefaultContracts,
		},
		{
			name:  "override and unbind",
			input: "31337=0x5FbDB2315678afecb367f032d93F642f64180aa3, 11155111=",
			want: map[uint64]string{
				31337:    "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				11155111: "",
			},
		},
		{name: "no separator", input: "31337", wantErr: true},
		{name: "bad chain id", input: "local=0x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseContracts(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_ContractForUnbound(t *testing.T) {
	cfg := &Config{Contracts: map[uint64]string{11155111: ""}}

	_, ok := cfg.ContractFor(11155111)
	assert.False(t, ok)
	_, ok = cfg.ContractFor(1)
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		LedgerURL:    defaultLedgerURL,
		KeyPath:      "/tmp/key",
		CacheBackend: CacheBadger,
		Timeout:      time.Second,
		GrantTTL:     time.Hour,
	}
	assert.NoError(t, valid.validate())

	badCache := valid
	badCache.CacheBackend = "redis"
	assert.Error(t, badCache.validate())

	noURL := valid
	noURL.LedgerURL = ""
	assert.Error(t, noURL.validate())
}
