package vaccine

import (
	"context"
	"fmt"

	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
)

// RequestDecryption submits a decryption request for recordID under scope.
// The ledger decides whether the caller is authorized; this only shapes the
// request. The tag identifies the request, not the grant.
func (s *Session) RequestDecryption(ctx context.Context, recordID uint64, scope Scope) (*DecryptionRequest, error) {
	if !s.CanWrite() {
		return nil, ErrUnavailable
	}
	if recordID == 0 {
		return nil, ErrInvalidRecordID
	}
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidScope, uint32(scope))
	}

	s.setStatus("encrypting decryption request scope...")
	enc, err := s.encrypt(ctx, func(in fhe.Input) { in.Add32(uint32(scope)) })
	if err != nil {
		s.setStatus("decryption request failed: %v", err)
		return nil, fmt.Errorf("request decryption: %w", err)
	}

	tag := s.tags.Next(NamespaceRequest, scope)

	s.setStatus("submitting decryption request...")
	receipt, err := s.ledger.RequestDecryption(ctx, ledger.DecryptionCall{
		RecordID:       recordID,
		EncryptedScope: enc.Handles[0],
		InputProof:     enc.InputProof,
		ScopeTag:       tag,
	})
	if err != nil {
		if ledger.HasMarker(err, ledger.ReasonNotAuthorized) {
			err = fmt.Errorf("%w (%v)", ErrNotAuthorized, err)
		} else {
			err = fmt.Errorf("request decryption: %w", err)
		}
		s.setStatus("decryption request failed: %v", err)
		return nil, err
	}

	req := DecryptionRequest{
		RecordID:  recordID,
		Requester: s.signer.Address(),
		Scope:     scope,
		ScopeTag:  tag,
		TxHash:    receipt.TxHash,
	}

	s.mu.Lock()
	s.pending[recordID] = req
	s.status = fmt.Sprintf("decryption request for record #%d submitted, tx status %d", recordID, receipt.Status)
	s.mu.Unlock()

	s.log.Info("decryption requested", "record_id", recordID, "scope", scope.String())
	return &req, nil
}

// RequestActiveDecryption requests decryption of the active record.
func (s *Session) RequestActiveDecryption(ctx context.Context, scope Scope) (*DecryptionRequest, error) {
	id := s.Active()
	if id == 0 {
		return nil, ErrInvalidRecordID
	}
	return s.RequestDecryption(ctx, id, scope)
}
