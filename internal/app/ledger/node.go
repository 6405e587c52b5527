package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"maskedvaccine/internal/app/ledger/api"
	"maskedvaccine/internal/app/ledger/config"
	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/infrastructure/storage/postgres"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/exp/slog"
)

const shutdownTimeout = 10 * time.Second

// Node - локальный узел: контракт MaskedVaccine, mock coprocessor и HTTP API
type Node struct {
	cfg         *config.Config
	log         *slog.Logger
	storage     *postgres.Storage
	contract    *ledger.Service
	coprocessor *fhe.Coprocessor
	handler     http.Handler
}

// NewNode собирает узел. Без DATABASE_URI состояние живет в памяти процесса.
func NewNode(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Node, error) {
	key, err := coprocessorKey(cfg.Security.CoprocessorKey, log)
	if err != nil {
		return nil, err
	}

	n := &Node{cfg: cfg, log: log.With("component", "node")}

	var (
		ledgerStore ledger.Store
		handleStore fhe.HandleStore
	)
	if cfg.UsesDatabase() {
		storage, err := postgres.New(ctx, cfg.DB.DatabaseURI, cfg.DB.Migrations)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		n.storage = storage
		ledgerStore = postgres.NewLedgerStore(storage.Pool(), log)
		handleStore = postgres.NewCiphertextStore(storage.Pool(), log)
	} else {
		n.log.Warn("DATABASE_URI is empty, contract state is kept in memory")
		ledgerStore = ledger.NewMemoryStore()
		handleStore = fhe.NewMemoryHandleStore()
	}

	n.coprocessor = fhe.NewCoprocessor(handleStore, key, log)
	n.contract = ledger.NewService(cfg.Network.ContractAddress, ledgerStore, n.coprocessor, time.Now, log)
	n.handler = api.New(api.Deps{
		Contract:        n.contract,
		Relayer:         n.coprocessor,
		Network:         n.Metadata(),
		SignatureWindow: cfg.Security.SignatureWindow,
	}, log)

	return n, nil
}

// Metadata - то, что узел сообщает о себе клиентам
func (n *Node) Metadata() fhe.Metadata {
	return fhe.Metadata{
		ChainID:           n.cfg.Network.ChainID,
		InputVerifier:     n.coprocessor.InputVerifier(),
		ContractAddress:   n.contract.Address(),
		ClientDescription: "maskedvaccine-ledger/1.0",
	}
}

func (n *Node) Handler() http.Handler {
	return n.handler
}

// Run слушает RunAddress до отмены ctx, затем корректно останавливает сервер
func (n *Node) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              n.cfg.Server.RunAddress,
		Handler:           n.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		n.log.Info("ledger node started",
			"address", n.cfg.Server.RunAddress,
			"chain_id", n.cfg.Network.ChainID,
			"contract", n.contract.Address(),
			"input_verifier", n.coprocessor.InputVerifier(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	n.log.Info("ledger node stopped")
	return nil
}

func (n *Node) Close() error {
	if n.storage != nil {
		return n.storage.Close()
	}
	return nil
}

func coprocessorKey(hexKey string, log *slog.Logger) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		log.Warn("COPROCESSOR_KEY is empty, generating an ephemeral input verifier key")
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generate coprocessor key: %w", err)
		}
		return key, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse coprocessor key: %w", err)
	}
	return key, nil
}
