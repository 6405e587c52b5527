package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestMustLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CHAIN_ID", "11155111")

	cfg := MustLoad()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, defaultRunAddress, cfg.Server.RunAddress)
	assert.Equal(t, uint64(11155111), cfg.Network.ChainID)
	assert.Equal(t, defaultContractAddress, cfg.Network.ContractAddress)
	assert.Equal(t, 5*time.Minute, cfg.Security.SignatureWindow)
	assert.False(t, cfg.UsesDatabase())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Server:   server{RunAddress: ":8545"},
		Network:  network{ChainID: 31337, ContractAddress: defaultContractAddress},
		Security: security{SignatureWindow: time.Minute},
	}
	assert.NoError(t, valid.validate())

	noChain := valid
	noChain.Network.ChainID = 0
	assert.Error(t, noChain.validate())

	noAddr := valid
	noAddr.Server.RunAddress = ""
	assert.Error(t, noAddr.validate())

	noWindow := valid
	noWindow.Security.SignatureWindow = 0
	assert.Error(t, noWindow.validate())
}
