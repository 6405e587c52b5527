package vaccine

import (
	"context"
	"fmt"

	"maskedvaccine/internal/domain/ledger"
)

// LoadOwnedRecords rebuilds the record index from the RecordCreated logs of
// owner, in ledger order, and selects the newest record. A ledger read
// failure is reported through Status and yields an empty result; the
// previous index is kept.
func (s *Session) LoadOwnedRecords(ctx context.Context, owner string) []uint64 {
	if s.ledger == nil {
		return nil
	}

	s.setStatus("reading your records from the ledger...")
	logs, err := s.ledger.Events(ctx, ledger.EventFilter{
		Name:    ledger.EventRecordCreated,
		Creator: owner,
	})
	if err != nil {
		s.log.Error("failed to load owned records", "owner", owner, "error", err)
		s.setStatus("failed to read records: %v", err)
		return nil
	}

	ids := make([]uint64, 0, len(logs))
	for _, l := range logs {
		ids = appendUnique(ids, l.RecordID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = ids
	if len(ids) == 0 {
		s.status = "no records found, create a new record first"
		return ids
	}
	s.selectLocked(ids[len(ids)-1])
	s.status = fmt.Sprintf("found %d records", len(ids))

	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// LoadMyRecords runs LoadOwnedRecords for the session's signer.
func (s *Session) LoadMyRecords(ctx context.Context) []uint64 {
	if s.signer == nil {
		return nil
	}
	return s.LoadOwnedRecords(ctx, s.signer.Address())
}
