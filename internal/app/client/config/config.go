package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"maskedvaccine/internal/config"

	"github.com/spf13/viper"
)

// Хранилища локального кэша записей
const (
	CacheSQLite  = "sqlite"
	CacheLevelDB = "leveldb"
	CacheBadger  = "badger"
	CacheMemory  = "memory"
)

const (
	defaultLedgerURL   = "http://localhost:8545"
	defaultChainID     = 31337
	defaultConfigDir   = ".maskedvaccine"
	defaultKeyFile     = "signer.key"
	defaultCache       = CacheSQLite
	defaultRevealDelay = 500 * time.Millisecond
	defaultTimeout     = 30 * time.Second
	defaultGrantTTL    = 24 * time.Hour
)

// DefaultContracts - известные адреса контракта по id сети
var DefaultContracts = map[uint64]string{
	31337:    "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	11155111: "0xB47b62DF81443961FbB0c040dc495aeA92F5057B",
}

type Config struct {
	Env       string
	LedgerURL string
	ChainID   uint64
	// адреса контракта по id сети, пустая карта - привязки нет
	Contracts    map[uint64]string
	ConfigDir    string
	KeyPath      string
	StatePath    string
	CacheBackend string
	CachePath    string
	RevealDelay  time.Duration
	Timeout      time.Duration
	GrantTTL     time.Duration
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	if p, err := config.LoadDotEnv(".env", "../.env"); err != nil {
		log.Printf("Ошибка загрузки .env файла %s: %v", p, err)
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", config.EnvLocal)
	viper.SetDefault("LEDGER_URL", defaultLedgerURL)
	viper.SetDefault("CHAIN_ID", defaultChainID)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("KEY_FILE", defaultKeyFile)
	viper.SetDefault("CACHE_BACKEND", defaultCache)
	viper.SetDefault("REVEAL_DELAY", defaultRevealDelay)
	viper.SetDefault("HTTP_TIMEOUT", defaultTimeout)
	viper.SetDefault("GRANT_TTL", defaultGrantTTL)

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		log.Printf("Ошибка создания директории конфигурации: %v", err)
	}

	keyPath := viper.GetString("KEY_FILE")
	if !filepath.IsAbs(keyPath) {
		keyPath = filepath.Join(configDir, keyPath)
	}

	contracts, err := parseContracts(viper.GetString("CONTRACT_ADDRESSES"))
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	backend := strings.ToLower(viper.GetString("CACHE_BACKEND"))

	cfg := &Config{
		Env:          viper.GetString("APP_ENV"),
		LedgerURL:    strings.TrimRight(viper.GetString("LEDGER_URL"), "/"),
		ChainID:      viper.GetUint64("CHAIN_ID"),
		Contracts:    contracts,
		ConfigDir:    configDir,
		KeyPath:      keyPath,
		StatePath:    filepath.Join(configDir, "state.json"),
		CacheBackend: backend,
		CachePath:    cachePath(configDir, backend),
		RevealDelay:  viper.GetDuration("REVEAL_DELAY"),
		Timeout:      viper.GetDuration("HTTP_TIMEOUT"),
		GrantTTL:     viper.GetDuration("GRANT_TTL"),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return cfg
}

func (c *Config) validate() error {
	if c.LedgerURL == "" {
		return fmt.Errorf("ledger_url не может быть пустым")
	}
	if c.KeyPath == "" {
		return fmt.Errorf("key_file не может быть пустым")
	}
	switch c.CacheBackend {
	case CacheSQLite, CacheLevelDB, CacheBadger, CacheMemory:
	default:
		return fmt.Errorf("неизвестное хранилище кэша: %s", c.CacheBackend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("http_timeout должен быть положительным")
	}
	if c.GrantTTL <= 0 {
		return fmt.Errorf("grant_ttl должен быть положительным")
	}
	return nil
}

// ContractFor возвращает адрес контракта для сети
func (c *Config) ContractFor(chainID uint64) (string, bool) {
	addr, ok := c.Contracts[chainID]
	return addr, ok && addr != ""
}

// parseContracts разбирает строку вида "31337=0x...,11155111=0x..."
// поверх адресов по умолчанию
func parseContracts(s string) (map[uint64]string, error) {
	out := make(map[uint64]string, len(DefaultContracts))
	for id, addr := range DefaultContracts {
		out[id] = addr
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, addr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("неверная пара контракта %q", pair)
		}
		chainID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("неверный id сети %q: %w", id, err)
		}
		out[chainID] = strings.TrimSpace(addr)
	}
	return out, nil
}

func cachePath(dir, backend string) string {
	switch backend {
	case CacheSQLite:
		return filepath.Join(dir, "records.db")
	case CacheLevelDB:
		return filepath.Join(dir, "records.ldb")
	case CacheBadger:
		return filepath.Join(dir, "records.badger")
	default:
		return ""
	}
}
