package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/exp/slog"
)

// Evaluator is the slice of the encryption coprocessor the contract needs:
// input proof verification and the encrypted scope comparison.
type Evaluator interface {
	VerifyInput(ctx context.Context, contract, user, handle, proof string) error
	IsSubset(ctx context.Context, sub, super string) (bool, error)
}

// Contracter is the MaskedVaccine contract as seen by the API layer.
type Contracter interface {
	Address() string
	CreateRecord(ctx context.Context, sender string, call CreateRecordCall) (*Receipt, error)
	AuthorizeVerifier(ctx context.Context, sender string, call AuthorizeCall) (*Receipt, error)
	RequestDecryption(ctx context.Context, sender string, call DecryptionCall) (*Receipt, error)
	Record(ctx context.Context, id uint64) (*Record, error)
	Events(ctx context.Context, filter EventFilter) ([]Log, error)
}

// Service executes contract calls against a Store. It is the enforcement
// point for ownership, grant expiry and scope containment.
type Service struct {
	address string
	store   Store
	fhe     Evaluator
	now     func() time.Time
	nonce   atomic.Uint64
	log     *slog.Logger
}

// NewService creates the contract deployed at address.
func NewService(address string, store Store, fhe Evaluator, now func() time.Time, log *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		address: NormalizeAddress(address),
		store:   store,
		fhe:     fhe,
		now:     now,
		log:     log.With("component", "contract"),
	}
}

func (s *Service) Address() string {
	return s.address
}

// CreateRecord stores a new encrypted record and emits RecordCreated.
func (s *Service) CreateRecord(ctx context.Context, sender string, call CreateRecordCall) (*Receipt, error) {
	sender = NormalizeAddress(sender)
	if err := s.fhe.VerifyInput(ctx, s.address, sender, call.Handle, call.InputProof); err != nil {
		s.log.Warn("input proof rejected", "sender", sender, "error", err)
		return nil, revert(ReasonInvalidProof)
	}

	txHash := s.txHash(sender, "createRecord", call)
	ts := s.now().Unix()

	var receipt *Receipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		id, err := tx.InsertRecord(ctx, &Record{
			Owner:        sender,
			Handle:       call.Handle,
			ProviderHash: call.ProviderHash,
			CreatedAt:    ts,
		})
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}

		logs := []Log{{
			Name:         EventRecordCreated,
			TxHash:       txHash,
			RecordID:     id,
			Creator:      sender,
			ProviderHash: call.ProviderHash,
			Timestamp:    ts,
		}}
		receipt, err = s.commit(ctx, tx, txHash, logs)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("record created", "record_id", receipt.Logs[0].RecordID, "owner", sender, "block", receipt.BlockNumber)
	return receipt, nil
}

// AuthorizeVerifier upserts the grant for (record, verifier). Only the
// record owner may call it.
func (s *Service) AuthorizeVerifier(ctx context.Context, sender string, call AuthorizeCall) (*Receipt, error) {
	sender = NormalizeAddress(sender)
	if !common.IsHexAddress(call.Verifier) {
		return nil, revert(ReasonInvalidVerifier)
	}
	verifier := NormalizeAddress(call.Verifier)

	now := s.now().Unix()
	if call.Expiry <= now {
		return nil, revert(ReasonInvalidExpiry)
	}
	if err := s.fhe.VerifyInput(ctx, s.address, sender, call.EncryptedScope, call.InputProof); err != nil {
		s.log.Warn("scope proof rejected", "sender", sender, "error", err)
		return nil, revert(ReasonInvalidProof)
	}

	txHash := s.txHash(sender, "authorizeVerifier", call)

	var receipt *Receipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		rec, err := tx.Record(ctx, call.RecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return revert(ReasonRecordNotFound)
			}
			return fmt.Errorf("get record: %w", err)
		}
		if !SameAddress(rec.Owner, sender) {
			return revert(ReasonNotOwner)
		}

		err = tx.PutGrant(ctx, &Grant{
			RecordID:    call.RecordID,
			Verifier:    verifier,
			ScopeHandle: call.EncryptedScope,
			Expiry:      call.Expiry,
			ScopeTag:    call.ScopeTag,
			IssuedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("put grant: %w", err)
		}

		logs := []Log{{
			Name:      EventVerifierAuthorized,
			TxHash:    txHash,
			RecordID:  call.RecordID,
			Creator:   rec.Owner,
			Verifier:  verifier,
			ScopeTag:  call.ScopeTag,
			Expiry:    call.Expiry,
			Timestamp: now,
		}}
		receipt, err = s.commit(ctx, tx, txHash, logs)
		return err
	})
	if err != nil {
		s.logRejected("authorize verifier", sender, call.RecordID, err)
		return nil, err
	}

	s.log.Info("verifier authorized", "record_id", call.RecordID, "verifier", verifier, "expiry", call.Expiry)
	return receipt, nil
}

// RequestDecryption accepts a request only when the sender holds an
// unexpired grant whose scope contains the requested scope.
func (s *Service) RequestDecryption(ctx context.Context, sender string, call DecryptionCall) (*Receipt, error) {
	sender = NormalizeAddress(sender)
	if err := s.fhe.VerifyInput(ctx, s.address, sender, call.EncryptedScope, call.InputProof); err != nil {
		s.log.Warn("request proof rejected", "sender", sender, "error", err)
		return nil, revert(ReasonInvalidProof)
	}

	txHash := s.txHash(sender, "requestDecryption", call)
	now := s.now().Unix()

	var receipt *Receipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.Record(ctx, call.RecordID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return revert(ReasonRecordNotFound)
			}
			return fmt.Errorf("get record: %w", err)
		}

		g, err := tx.Grant(ctx, call.RecordID, sender)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return revert(ReasonNotAuthorized)
			}
			return fmt.Errorf("get grant: %w", err)
		}
		if g.Expiry <= now {
			return revert(ReasonGrantExpired)
		}

		ok, err := s.fhe.IsSubset(ctx, call.EncryptedScope, g.ScopeHandle)
		if err != nil {
			return fmt.Errorf("evaluate scope: %w", err)
		}
		if !ok {
			return revert(ReasonScopeExceeded)
		}

		logs := []Log{{
			Name:      EventDecryptionRequested,
			TxHash:    txHash,
			RecordID:  call.RecordID,
			Requester: sender,
			ScopeTag:  call.ScopeTag,
			Timestamp: now,
		}}
		receipt, err = s.commit(ctx, tx, txHash, logs)
		return err
	})
	if err != nil {
		s.logRejected("request decryption", sender, call.RecordID, err)
		return nil, err
	}

	s.log.Info("decryption requested", "record_id", call.RecordID, "requester", sender)
	return receipt, nil
}

// Record is the getEncryptedRecord view.
func (s *Service) Record(ctx context.Context, id uint64) (*Record, error) {
	rec, err := s.store.Record(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Events returns logs in append order.
func (s *Service) Events(ctx context.Context, filter EventFilter) ([]Log, error) {
	logs, err := s.store.Events(ctx, filter)
	if err != nil {
		s.log.Error("failed to query events", "filter", filter, "error", err)
		return nil, fmt.Errorf("query events: %w", err)
	}
	return logs, nil
}

func (s *Service) commit(ctx context.Context, tx Tx, txHash string, logs []Log) (*Receipt, error) {
	block, err := tx.Append(ctx, logs)
	if err != nil {
		return nil, fmt.Errorf("append logs: %w", err)
	}
	for i := range logs {
		logs[i].BlockNumber = block
	}
	return &Receipt{
		TxHash:      txHash,
		BlockNumber: block,
		Status:      StatusSuccess,
		Logs:        logs,
	}, nil
}

func (s *Service) txHash(sender, method string, call any) string {
	payload, _ := json.Marshal(call)
	n := s.nonce.Add(1)
	return crypto.Keccak256Hash(
		[]byte(sender),
		[]byte(method),
		payload,
		[]byte(strconv.FormatUint(n, 10)),
	).Hex()
}

func (s *Service) logRejected(op, sender string, recordID uint64, err error) {
	var re *RevertError
	if errors.As(err, &re) {
		s.log.Info(op+" reverted", "record_id", recordID, "sender", sender, "reason", re.Reason)
		return
	}
	s.log.Error(op+" failed", "record_id", recordID, "sender", sender, "error", err)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
