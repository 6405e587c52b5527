package vaccine

import (
	"context"
	"fmt"
	"time"

	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultGrantDuration is the grant lifetime used by the CLI.
const DefaultGrantDuration = 24 * time.Hour

// Authorize grants verifier the right to request decryption of recordID
// within scope until now+duration. A later grant for the same pair
// supersedes this one on the ledger.
func (s *Session) Authorize(ctx context.Context, recordID uint64, verifier string, scope Scope, duration time.Duration) (*Grant, error) {
	if !s.CanWrite() {
		return nil, ErrUnavailable
	}
	if recordID == 0 {
		return nil, ErrInvalidRecordID
	}
	if !common.IsHexAddress(verifier) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, verifier)
	}
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidScope, uint32(scope))
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	verifier = ledger.NormalizeAddress(verifier)

	s.setStatus("encrypting authorization scope...")
	enc, err := s.encrypt(ctx, func(in fhe.Input) { in.Add32(uint32(scope)) })
	if err != nil {
		s.setStatus("authorization failed: %v", err)
		return nil, fmt.Errorf("authorize: %w", err)
	}

	expiry := s.now().Add(duration).Truncate(time.Second)
	tag := s.tags.Next(NamespaceGrant, scope)

	s.setStatus("submitting authorization...")
	receipt, err := s.ledger.AuthorizeVerifier(ctx, ledger.AuthorizeCall{
		RecordID:       recordID,
		Verifier:       verifier,
		EncryptedScope: enc.Handles[0],
		InputProof:     enc.InputProof,
		Expiry:         expiry.Unix(),
		ScopeTag:       tag,
	})
	if err != nil {
		err = translateAuthorizeError(err)
		s.setStatus("authorization failed: %v", err)
		return nil, err
	}

	s.setStatus("authorized %s to request decryption of record #%d", shortAddress(verifier), recordID)
	s.log.Info("verifier authorized", "record_id", recordID, "verifier", verifier, "scope", scope.String(), "expiry", expiry)

	return &Grant{
		RecordID: recordID,
		Verifier: verifier,
		Scope:    scope,
		Expiry:   expiry,
		ScopeTag: tag,
		TxHash:   receipt.TxHash,
	}, nil
}

// AuthorizeSelf authorizes the session's own signer as verifier.
func (s *Session) AuthorizeSelf(ctx context.Context, recordID uint64, scope Scope, duration time.Duration) (*Grant, error) {
	if !s.CanWrite() {
		return nil, ErrUnavailable
	}
	return s.Authorize(ctx, recordID, s.signer.Address(), scope, duration)
}

func translateAuthorizeError(err error) error {
	if ledger.HasMarker(err, ledger.ReasonNotOwner) {
		return fmt.Errorf("%w (%v)", ErrNotRecordOwner, err)
	}
	return err
}
