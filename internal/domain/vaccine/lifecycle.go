package vaccine

import (
	"context"
	"fmt"

	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
)

// DemoPayload is the sample record used by CreateDemoRecord.
var DemoPayload = Payload{
	VaccineType:  "COVID-19 (mRNA)",
	Manufacturer: "Pfizer-BioNTech",
	BatchNumber:  "FF3620",
	Date:         "2024-03-15",
	Site:         "Beijing Vaccination Center",
	Doctor:       "Dr. Zhang",
	Notes:        "Second dose, no adverse reaction",
}

// CreateRecord encrypts the numeric encoding of p, submits it with the
// provider hash, and on confirmation caches p under the emitted record id.
//
// A submission or confirmation failure leaves all state untouched. If the
// receipt carries no RecordCreated log the write still stands, but the
// record stays out of the index until LoadOwnedRecords runs.
func (s *Session) CreateRecord(ctx context.Context, p Payload) (*Created, error) {
	if !s.CanWrite() {
		return nil, ErrUnavailable
	}
	if err := p.Validate(); err != nil {
		s.setStatus("invalid record: %v", err)
		return nil, err
	}

	s.setStatus("encrypting vaccination data locally...")
	enc, err := s.encrypt(ctx, func(in fhe.Input) { in.Add64(p.Encoding()) })
	if err != nil {
		s.setStatus("encryption failed: %v", err)
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.setStatus("submitting transaction...")
	providerHash := p.ProviderHash()
	receipt, err := s.ledger.CreateRecord(ctx, ledger.CreateRecordCall{
		Handle:       enc.Handles[0],
		InputProof:   enc.InputProof,
		ProviderHash: providerHash,
	})
	if err != nil {
		s.setStatus("transaction failed: %v", err)
		return nil, fmt.Errorf("create record: %w", err)
	}
	if receipt.Status != ledger.StatusSuccess {
		s.setStatus("transaction reverted: %s", receipt.TxHash)
		return nil, fmt.Errorf("create record: transaction %s reverted", receipt.TxHash)
	}

	created := &Created{
		TxHash:       receipt.TxHash,
		BlockNumber:  receipt.BlockNumber,
		ProviderHash: providerHash,
		Handle:       enc.Handles[0],
	}

	id, ok := lastCreatedID(receipt.Logs)
	if !ok {
		s.log.Warn("record created but no RecordCreated log in receipt", "tx", receipt.TxHash)
		s.setStatus("record created (tx %s) but its id could not be read, reload your records", receipt.TxHash)
		return created, nil
	}
	created.RecordID = id

	if err := s.cache.Put(ctx, id, p); err != nil {
		s.log.Warn("failed to persist record payload", "record_id", id, "error", err)
	}

	s.mu.Lock()
	s.records = appendUnique(s.records, id)
	s.selectLocked(id)
	s.status = fmt.Sprintf("record #%d created, tx status %d", id, receipt.Status)
	s.mu.Unlock()

	s.log.Info("record created", "record_id", id, "tx", receipt.TxHash)
	return created, nil
}

// CreateDemoRecord creates a record from DemoPayload.
func (s *Session) CreateDemoRecord(ctx context.Context) (*Created, error) {
	return s.CreateRecord(ctx, DemoPayload)
}

// lastCreatedID picks the last RecordCreated log; append order defines
// "latest".
func lastCreatedID(logs []ledger.Log) (uint64, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Name == ledger.EventRecordCreated && logs[i].RecordID != 0 {
			return logs[i].RecordID, true
		}
	}
	return 0, false
}

func appendUnique(ids []uint64, id uint64) []uint64 {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}
