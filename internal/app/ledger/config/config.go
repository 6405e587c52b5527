package config

import (
	"fmt"
	"log"
	"time"

	"maskedvaccine/internal/config"

	"github.com/spf13/viper"
)

const (
	defaultRunAddress      = "localhost:8545"
	defaultChainID         = 31337
	defaultContractAddress = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	defaultMigrations      = "migrations"
	defaultSignatureWindow = 5 * time.Minute
)

type Config struct {
	Env      string
	DB       db
	Server   server
	Network  network
	Security security
}

type db struct {
	// пустая строка - состояние контракта хранится в памяти
	DatabaseURI string
	Migrations  string
}

type server struct {
	RunAddress string
}

type network struct {
	ChainID         uint64
	ContractAddress string
}

type security struct {
	// hex приватного ключа, которым coprocessor подписывает input proof
	CoprocessorKey  string
	SignatureWindow time.Duration
}

// MustLoad загружает конфигурацию узла ledger
func MustLoad() *Config {
	if p, err := config.LoadDotEnv(".env", "../.env", "../../.env"); err != nil {
		log.Printf("Ошибка загрузки .env файла %s: %v", p, err)
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", config.EnvLocal)
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("CHAIN_ID", defaultChainID)
	viper.SetDefault("CONTRACT_ADDRESS", defaultContractAddress)
	viper.SetDefault("SIGNATURE_WINDOW", defaultSignatureWindow)

	cfg := &Config{
		Env: viper.GetString("APP_ENV"),
		DB: db{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Network: network{
			ChainID:         viper.GetUint64("CHAIN_ID"),
			ContractAddress: viper.GetString("CONTRACT_ADDRESS"),
		},
		Security: security{
			CoprocessorKey:  viper.GetString("COPROCESSOR_KEY"),
			SignatureWindow: viper.GetDuration("SIGNATURE_WINDOW"),
		},
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return cfg
}

func (c *Config) validate() error {
	if c.Server.RunAddress == "" {
		return fmt.Errorf("run_address не может быть пустым")
	}
	if c.Network.ChainID == 0 {
		return fmt.Errorf("chain_id не может быть 0")
	}
	if c.Network.ContractAddress == "" {
		return fmt.Errorf("contract_address не может быть пустым")
	}
	if c.Security.SignatureWindow <= 0 {
		return fmt.Errorf("signature_window должен быть положительным")
	}
	return nil
}

// UsesDatabase сообщает, подключен ли Postgres
func (c *Config) UsesDatabase() bool {
	return c.DB.DatabaseURI != ""
}
