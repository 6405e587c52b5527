package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"maskedvaccine/internal/domain/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// LedgerStore хранит состояние контракта: записи, гранты и журнал событий
type LedgerStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewLedgerStore(pool *pgxpool.Pool, log *slog.Logger) *LedgerStore {
	return &LedgerStore{
		pool: pool,
		log:  log.With("component", "ledger_store"),
	}
}

// maxTxAttempts - сколько раз InTx повторяет транзакцию после конфликта сериализации
const maxTxAttempts = 3

// Коды SQLSTATE, после которых транзакцию можно повторить целиком
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// InTx выполняет fn в транзакции уровня SERIALIZABLE. Ошибка fn откатывает
// все изменения, включая события. При конфликте сериализации транзакция
// повторяется, поэтому fn не должна иметь побочных эффектов вне tx.
func (s *LedgerStore) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return retrySerializable(ctx, maxTxAttempts, s.log, func() error {
		return s.runTx(ctx, fn)
	})
}

func (s *LedgerStore) runTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.Error("failed to rollback", "error", rbErr)
		}
	}()

	if err := fn(pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// retrySerializable повторяет run, пока он падает с конфликтом сериализации
func retrySerializable(ctx context.Context, attempts int, log *slog.Logger, run func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = run()
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("serialization conflict, retrying transaction", "attempt", attempt, "error", err)
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", attempts, err)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

func (s *LedgerStore) Record(ctx context.Context, id uint64) (*ledger.Record, error) {
	return getRecord(ctx, s.pool, id)
}

func (s *LedgerStore) Events(ctx context.Context, filter ledger.EventFilter) ([]ledger.Log, error) {
	query, args := eventsQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.log.Error("failed to query events", "error", err)
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	logs := make([]ledger.Log, 0)
	for rows.Next() {
		var l ledger.Log
		var blockNumber, recordID int64
		if err := rows.Scan(&blockNumber, &l.Name, &l.TxHash, &recordID, &l.Creator, &l.Verifier,
			&l.Requester, &l.ProviderHash, &l.ScopeTag, &l.Expiry, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		l.BlockNumber = uint64(blockNumber)
		l.RecordID = uint64(recordID)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return logs, nil
}

func eventsQuery(filter ledger.EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Name != "" {
		args = append(args, filter.Name)
		conds = append(conds, "name = $"+strconv.Itoa(len(args)))
	}
	if filter.RecordID != 0 {
		args = append(args, int64(filter.RecordID))
		conds = append(conds, "record_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Creator != "" {
		args = append(args, ledger.NormalizeAddress(filter.Creator))
		conds = append(conds, "LOWER(creator) = LOWER($"+strconv.Itoa(len(args))+")")
	}

	query := `
		SELECT block_number, name, tx_hash, record_id, creator, verifier,
		       requester, provider_hash, scope_tag, expiry, ts
		FROM logs`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY seq"
	return query, args
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getRecord(ctx context.Context, q querier, id uint64) (*ledger.Record, error) {
	const query = `
		SELECT id, owner, handle, provider_hash, created_at
		FROM records
		WHERE id = $1`

	var rec ledger.Record
	var recID int64
	err := q.QueryRow(ctx, query, int64(id)).Scan(&recID, &rec.Owner, &rec.Handle, &rec.ProviderHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.ID = uint64(recID)
	return &rec, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) InsertRecord(ctx context.Context, rec *ledger.Record) (uint64, error) {
	const query = `
		INSERT INTO records (owner, handle, provider_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	if err := t.tx.QueryRow(ctx, query, rec.Owner, rec.Handle, rec.ProviderHash, rec.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return uint64(id), nil
}

func (t pgTx) Record(ctx context.Context, id uint64) (*ledger.Record, error) {
	return getRecord(ctx, t.tx, id)
}

func (t pgTx) PutGrant(ctx context.Context, g *ledger.Grant) error {
	const query = `
		INSERT INTO grants (record_id, verifier, scope_handle, expiry, scope_tag, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (record_id, verifier) DO UPDATE
		SET scope_handle = EXCLUDED.scope_handle,
		    expiry = EXCLUDED.expiry,
		    scope_tag = EXCLUDED.scope_tag,
		    issued_at = EXCLUDED.issued_at`

	_, err := t.tx.Exec(ctx, query, int64(g.RecordID), ledger.NormalizeAddress(g.Verifier),
		g.ScopeHandle, g.Expiry, g.ScopeTag, g.IssuedAt)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

func (t pgTx) Grant(ctx context.Context, recordID uint64, verifier string) (*ledger.Grant, error) {
	const query = `
		SELECT record_id, verifier, scope_handle, expiry, scope_tag, issued_at
		FROM grants
		WHERE record_id = $1 AND verifier = $2`

	var g ledger.Grant
	var recID int64
	err := t.tx.QueryRow(ctx, query, int64(recordID), ledger.NormalizeAddress(verifier)).
		Scan(&recID, &g.Verifier, &g.ScopeHandle, &g.Expiry, &g.ScopeTag, &g.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("get grant: %w", err)
	}
	g.RecordID = uint64(recID)
	return &g, nil
}

func (t pgTx) Append(ctx context.Context, logs []ledger.Log) (uint64, error) {
	var block int64
	if err := t.tx.QueryRow(ctx, `SELECT nextval('block_number_seq')`).Scan(&block); err != nil {
		return 0, fmt.Errorf("next block: %w", err)
	}

	const query = `
		INSERT INTO logs (block_number, name, tx_hash, record_id, creator, verifier,
		                  requester, provider_hash, scope_tag, expiry, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	batch := &pgx.Batch{}
	for _, l := range logs {
		batch.Queue(query, block, l.Name, l.TxHash, int64(l.RecordID), l.Creator, l.Verifier,
			l.Requester, l.ProviderHash, l.ScopeTag, l.Expiry, l.Timestamp)
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert logs: %w", err)
	}
	return uint64(block), nil
}
