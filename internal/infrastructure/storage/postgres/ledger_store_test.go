package postgres

import (
	"context"
	"fmt"
	"testing"

	"maskedvaccine/internal/domain/ledger"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestEventsQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    ledger.EventFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			filter:    ledger.EventFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "by record",
			filter:    ledger.EventFilter{Name: ledger.EventRecordCreated, RecordID: 4},
			wantWhere: "WHERE name = $1 AND record_id = $2",
			wantArgs:  []any{ledger.EventRecordCreated, int64(4)},
		},
		{
			name:      "by creator",
			filter:    ledger.EventFilter{Creator: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
			wantWhere: "WHERE LOWER(creator) = LOWER($1)",
			wantArgs:  []any{"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := eventsQuery(tt.filter)
			if tt.wantWhere == "" {
				assert.NotContains(t, query, "WHERE")
			} else {
				assert.Contains(t, query, tt.wantWhere)
			}
			assert.Contains(t, query, "ORDER BY seq")
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRetrySerializable(t *testing.T) {
	conflict := &pgconn.PgError{Code: sqlStateSerializationFailure, Message: "could not serialize access"}
	deadlock := &pgconn.PgError{Code: sqlStateDeadlockDetected, Message: "deadlock detected"}
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	revert := &ledger.RevertError{Reason: ledger.ReasonNotOwner}

	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", results: []error{nil}, wantCalls: 1},
		{name: "conflict then success", results: []error{conflict, nil}, wantCalls: 2},
		{name: "deadlock then success", results: []error{fmt.Errorf("commit tx: %w", deadlock), nil}, wantCalls: 2},
		{name: "conflict every time", results: []error{conflict, conflict, conflict}, wantCalls: 3, wantErr: conflict},
		{name: "other database error", results: []error{unique}, wantCalls: 1, wantErr: unique},
		{name: "revert is not retried", results: []error{revert}, wantCalls: 1, wantErr: revert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retrySerializable(context.Background(), maxTxAttempts, slog.Default(), func() error {
				res := tt.results[calls]
				calls++
				return res
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetrySerializable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := retrySerializable(ctx, maxTxAttempts, slog.Default(), func() error {
		calls++
		cancel()
		return &pgconn.PgError{Code: sqlStateSerializationFailure}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
