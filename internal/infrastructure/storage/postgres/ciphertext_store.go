package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maskedvaccine/internal/domain/fhe"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// CiphertextStore хранит значения coprocessor по handle.
// uint64 кладется в BIGINT побитово.
type CiphertextStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCiphertextStore(pool *pgxpool.Pool, log *slog.Logger) *CiphertextStore {
	return &CiphertextStore{
		pool: pool,
		log:  log.With("component", "ciphertext_store"),
	}
}

func (s *CiphertextStore) Put(ctx context.Context, cts []fhe.Ciphertext) error {
	const query = `
		INSERT INTO ciphertexts (handle, bits, value, contract, usr)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (handle) DO NOTHING`

	batch := &pgx.Batch{}
	for _, ct := range cts {
		batch.Queue(query, strings.ToLower(ct.Handle), ct.Bits, int64(ct.Value), ct.Contract, ct.User)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		s.log.Error("failed to store ciphertexts", "count", len(cts), "error", err)
		return fmt.Errorf("store ciphertexts: %w", err)
	}
	return nil
}

func (s *CiphertextStore) Get(ctx context.Context, handle string) (*fhe.Ciphertext, error) {
	const query = `
		SELECT handle, bits, value, contract, usr
		FROM ciphertexts
		WHERE handle = $1`

	var ct fhe.Ciphertext
	var value int64
	err := s.pool.QueryRow(ctx, query, strings.ToLower(handle)).
		Scan(&ct.Handle, &ct.Bits, &value, &ct.Contract, &ct.User)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fhe.ErrUnknownHandle
		}
		return nil, fmt.Errorf("get ciphertext: %w", err)
	}
	ct.Value = uint64(value)
	return &ct, nil
}
