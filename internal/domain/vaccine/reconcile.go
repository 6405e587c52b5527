package vaccine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maskedvaccine/internal/domain/ledger"
)

const unavailableField = "unavailable: record predates the local cache"

var errNoCreationEvent = errors.New("no RecordCreated event for record")

// Decrypt resolves recordID to plaintext through the fallback chain
// EXACT_CACHE, HASH_MATCHED, METADATA_ONLY, UNRESOLVED. It always returns a
// result; degradation is not an error.
//
// The encrypted on-chain value is a commitment only. Recovery depends on the
// local cache, and the ledger tiers exist for when that cache is empty.
func (s *Session) Decrypt(ctx context.Context, recordID uint64) *Result {
	s.setStatus("reading record #%d...", recordID)

	res := s.reconcile(ctx, recordID)

	s.mu.Lock()
	if recordID == s.active {
		s.result = res
	}
	s.status = res.Message
	s.mu.Unlock()

	s.log.Info("record reconciled", "record_id", recordID, "tier", res.Tier, "verified", res.Verified)
	cp := *res
	return &cp
}

// DecryptActive decrypts the active record.
func (s *Session) DecryptActive(ctx context.Context) *Result {
	return s.Decrypt(ctx, s.Active())
}

func (s *Session) reconcile(ctx context.Context, recordID uint64) *Result {
	if p, ok := s.cache.Get(recordID); ok {
		s.wait(ctx)
		return &Result{
			RecordID:   recordID,
			Fields:     p,
			Verified:   true,
			Tier:       TierExactCache,
			Message:    "record decrypted and verified against the local cache",
			Commitment: p.Commitment(),
		}
	}

	ev, err := s.creationEvent(ctx, recordID)
	if err != nil {
		s.log.Warn("creation event unavailable", "record_id", recordID, "error", err)
		return &Result{
			RecordID: recordID,
			Verified: false,
			Tier:     TierUnresolved,
			Message:  unresolvedMessage(recordID, err),
		}
	}

	// First fingerprint match wins. Fingerprints collide by construction,
	// so this is a best-effort match and may return another record's data.
	for _, e := range s.cache.Entries() {
		if e.Payload.ProviderHash() == ev.ProviderHash {
			return &Result{
				RecordID:   recordID,
				Fields:     e.Payload,
				Verified:   true,
				Tier:       TierHashMatched,
				Message:    fmt.Sprintf("record recovered by provider hash match with cached record #%d", e.RecordID),
				Commitment: hashCommitment(ev.ProviderHash),
			}
		}
	}

	return &Result{
		RecordID:   recordID,
		Fields:     metadataFields(recordID, ev),
		Verified:   false,
		Tier:       TierMetadataOnly,
		Message:    "showing ledger metadata only, the full record is not in the local cache",
		Commitment: hashCommitment(ev.ProviderHash),
	}
}

func (s *Session) creationEvent(ctx context.Context, recordID uint64) (*ledger.Log, error) {
	if s.ledger == nil {
		return nil, ErrUnavailable
	}
	if recordID == 0 {
		return nil, ErrInvalidRecordID
	}
	logs, err := s.ledger.Events(ctx, ledger.EventFilter{
		Name:     ledger.EventRecordCreated,
		RecordID: recordID,
	})
	if err != nil {
		return nil, fmt.Errorf("query creation event: %w", err)
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w #%d", errNoCreationEvent, recordID)
	}
	return &logs[0], nil
}

func unresolvedMessage(recordID uint64, err error) string {
	switch {
	case errors.Is(err, ErrUnavailable):
		return fmt.Sprintf("ledger metadata of record #%d could not be read: no contract binding, and the record is not in the local cache", recordID)
	case errors.Is(err, errNoCreationEvent):
		return fmt.Sprintf("ledger metadata of record #%d could not be read: no RecordCreated event found", recordID)
	default:
		return fmt.Sprintf("ledger metadata of record #%d could not be read: %v", recordID, err)
	}
}

func metadataFields(recordID uint64, ev *ledger.Log) Payload {
	hash := ev.ProviderHash
	if len(hash) > 10 {
		hash = hash[:10]
	}
	return Payload{
		VaccineType:  unavailableField,
		Manufacturer: fmt.Sprintf("from hash %s...", hash),
		BatchNumber:  fmt.Sprintf("record #%d", recordID),
		Date:         time.Unix(ev.Timestamp, 0).UTC().Format("2006-01-02"),
		Site:         unavailableField,
		Doctor:       unavailableField,
		Notes:        fmt.Sprintf("historical record #%d, recreate it to keep the full data locally", recordID),
	}
}

// wait is the cosmetic delay of the cache tier. It ends early on ctx done.
func (s *Session) wait(ctx context.Context) {
	if s.revealDelay <= 0 {
		return
	}
	t := time.NewTimer(s.revealDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
