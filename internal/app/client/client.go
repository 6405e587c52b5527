package client

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"maskedvaccine/internal/app/client/config"
	"maskedvaccine/internal/app/client/crypto"
	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/domain/vaccine"

	"golang.org/x/exp/slog"
)

// mockChainID - локальная сеть, где relayer обслуживает сам узел
const mockChainID = 31337

var ErrNotConnected = errors.New("клиент не подключен, выполните Connect")

// AppState - состояние клиента между запусками CLI
type AppState struct {
	Signer       string `json:"signer"`
	ChainID      uint64 `json:"chain_id"`
	ActiveRecord uint64 `json:"active_record"`
}

type App struct {
	config   *config.Config
	log      *slog.Logger
	keystore *crypto.Keystore
	store    CacheStore
	cache    *vaccine.Cache
	loader   *fhe.Loader
	mu       sync.Mutex
	state    *AppState
	ledger   *LedgerClient
	signer   string
	session  *vaccine.Session
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	log = log.With("component", "client")

	state, err := loadAppState(cfg)
	if err != nil {
		log.Warn("Не удалось загрузить состояние приложения", "error", err)
		state = &AppState{}
	}

	keystore, err := crypto.NewKeystore(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища ключа: %w", err)
	}

	// Кэш записей: при ошибке открытия работаем в памяти
	store, err := openCacheStore(cfg)
	if err != nil {
		log.Warn("Не удалось открыть хранилище кэша, используем память",
			"backend", cfg.CacheBackend,
			"error", err,
		)
		store = nil
	}

	var durable vaccine.Store
	if store != nil {
		durable = store
	}

	app := &App{
		config:   cfg,
		log:      log,
		keystore: keystore,
		store:    store,
		cache:    vaccine.NewCache(durable, log),
		state:    state,
	}

	app.loader = fhe.NewLoader(func(ctx context.Context) (fhe.Instance, error) {
		return fhe.NewInstance(ctx, cfg.ChainID, fhe.Params{
			MockChains: map[uint64]string{mockChainID: cfg.LedgerURL},
			Probe:      probeRelayer(cfg.Timeout, log),
			Dial:       dialRelayer(cfg.Timeout, log),
		})
	})

	return app, nil
}

func loadAppState(cfg *config.Config) (*AppState, error) {
	data, err := os.ReadFile(cfg.StatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &AppState{}, nil
		}
		return nil, err
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

func (a *App) saveAppState() error {
	data, err := json.MarshalIndent(a.state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(a.config.StatePath), 0700); err != nil {
		return err
	}
	return os.WriteFile(a.config.StatePath, data, 0600)
}

// Keystore - файл ключа подписанта
func (a *App) Keystore() *crypto.Keystore {
	return a.keystore
}

// Config возвращает конфигурацию клиента
func (a *App) Config() *config.Config {
	return a.config
}

// Connect загружает кэш, строит экземпляр шифрования и сессию подписанта.
// Недоступный relayer или сеть без контракта не ошибка: сессия создается,
// но операции записи в ней отключены.
func (a *App) Connect(ctx context.Context, id *crypto.Identity) (*vaccine.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cache.Load(ctx); err != nil {
		a.log.Warn("Кэш записей загружен частично", "error", err)
	}

	deps := vaccine.Deps{
		Cache:       a.cache,
		Tags:        vaccine.RandomTags{},
		RevealDelay: a.config.RevealDelay,
		Log:         a.log,
	}
	if id != nil {
		deps.Signer = id
		a.signer = id.Address()
	}

	if contract, ok := a.config.ContractFor(a.config.ChainID); ok {
		a.ledger = NewLedgerClient(a.config.LedgerURL, contract, signingKey(id), a.config.Timeout, a.log)
		deps.Ledger = a.ledger
		if err := a.ledger.HealthCheck(ctx); err != nil {
			a.log.Warn("Узел ledger не отвечает", "url", a.config.LedgerURL, "error", err)
		}
	} else {
		a.log.Warn("Для сети нет адреса контракта", "chain_id", a.config.ChainID)
	}

	inst, err := a.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.log.Warn("Экземпляр шифрования недоступен", "chain_id", a.config.ChainID, "error", err)
	} else {
		deps.Instance = inst
	}

	a.session = vaccine.NewSession(deps)

	// Восстанавливаем активную запись только для того же подписанта и сети
	if id != nil && a.state.ActiveRecord != 0 &&
		ledger.SameAddress(a.state.Signer, id.Address()) && a.state.ChainID == a.config.ChainID {
		a.session.SelectRecord(a.state.ActiveRecord)
	}

	return a.session, nil
}

func signingKey(id *crypto.Identity) *ecdsa.PrivateKey {
	if id == nil {
		return nil
	}
	return id.PrivateKey()
}

// Session - текущая сессия после Connect
func (a *App) Session() (*vaccine.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, ErrNotConnected
	}
	return a.session, nil
}

// InstanceStatus - состояние построения экземпляра шифрования
func (a *App) InstanceStatus() (fhe.LoaderStatus, error) {
	return a.loader.Status()
}

// EncryptedRecord - представление записи в ledger
func (a *App) EncryptedRecord(ctx context.Context, id uint64) (*ledger.Record, error) {
	a.mu.Lock()
	lc := a.ledger
	a.mu.Unlock()
	if lc == nil {
		return nil, vaccine.ErrUnavailable
	}
	return lc.Record(ctx, id)
}

// SaveActive сохраняет активную запись сессии в файл состояния
func (a *App) SaveActive() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return ErrNotConnected
	}

	a.state.ActiveRecord = a.session.Active()
	a.state.ChainID = a.config.ChainID
	a.state.Signer = a.signer

	if err := a.saveAppState(); err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}
	return nil
}

// CacheStats - хранилище кэша и число сохраненных в нем записей.
// Для memory считается кэш процесса.
type CacheStats struct {
	Backend string `json:"backend"`
	Records int    `json:"records"`
}

func (a *App) CacheStats(ctx context.Context) (CacheStats, error) {
	if a.store == nil {
		return CacheStats{Backend: config.CacheMemory, Records: a.cache.Len()}, nil
	}
	n, err := a.store.Count(ctx)
	if err != nil {
		return CacheStats{}, fmt.Errorf("ошибка чтения кэша: %w", err)
	}
	return CacheStats{Backend: a.config.CacheBackend, Records: n}, nil
}

// State возвращает копию сохраненного состояния
func (a *App) State() AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.state
}

// Close освобождает хранилище кэша
func (a *App) Close() error {
	a.loader.Refresh()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
