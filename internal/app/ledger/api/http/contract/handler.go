package contract

import (
	"context"
	"errors"

	"maskedvaccine/internal/app/ledger/api/http/middleware/signature"
	"maskedvaccine/internal/domain/ledger"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	contract   ledger.Contracter
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(contract ledger.Contracter, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		contract:   contract,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createRecordOp(), h.createRecord)
	huma.Register(api, h.getRecordOp(), h.getRecord)
	huma.Register(api, h.authorizeOp(), h.authorize)
	huma.Register(api, h.requestDecryptionOp(), h.requestDecryption)
	huma.Register(api, h.eventsOp(), h.events)
}

func (h *Handler) createRecord(ctx context.Context, input *createRecordInput) (*receiptOutput, error) {
	sender, ok := signature.GetSender(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	receipt, err := h.contract.CreateRecord(ctx, sender, ledger.CreateRecordCall{
		Handle:       input.Body.Handle,
		InputProof:   input.Body.InputProof,
		ProviderHash: input.Body.ProviderHash,
	})
	if err != nil {
		return nil, h.mapError(err)
	}
	return &receiptOutput{Body: receipt}, nil
}

func (h *Handler) getRecord(ctx context.Context, input *recordPath) (*recordOutput, error) {
	rec, err := h.contract.Record(ctx, input.ID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &recordOutput{Body: rec}, nil
}

func (h *Handler) authorize(ctx context.Context, input *authorizeInput) (*receiptOutput, error) {
	sender, ok := signature.GetSender(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	receipt, err := h.contract.AuthorizeVerifier(ctx, sender, ledger.AuthorizeCall{
		RecordID:       input.ID,
		Verifier:       input.Body.Verifier,
		EncryptedScope: input.Body.EncryptedScope,
		InputProof:     input.Body.InputProof,
		Expiry:         input.Body.Expiry,
		ScopeTag:       input.Body.ScopeTag,
	})
	if err != nil {
		return nil, h.mapError(err)
	}
	return &receiptOutput{Body: receipt}, nil
}

func (h *Handler) requestDecryption(ctx context.Context, input *decryptionInput) (*receiptOutput, error) {
	sender, ok := signature.GetSender(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	receipt, err := h.contract.RequestDecryption(ctx, sender, ledger.DecryptionCall{
		RecordID:       input.ID,
		EncryptedScope: input.Body.EncryptedScope,
		InputProof:     input.Body.InputProof,
		ScopeTag:       input.Body.ScopeTag,
	})
	if err != nil {
		return nil, h.mapError(err)
	}
	return &receiptOutput{Body: receipt}, nil
}

func (h *Handler) events(ctx context.Context, input *eventsInput) (*eventsOutput, error) {
	logs, err := h.contract.Events(ctx, ledger.EventFilter{
		Name:     input.Name,
		RecordID: input.RecordID,
		Creator:  input.Creator,
	})
	if err != nil {
		return nil, h.mapError(err)
	}
	return &eventsOutput{Body: eventsResponse{Events: logs}}, nil
}

// mapError: revert контракта - 409 с причиной, чтобы клиент мог
// сопоставить маркер.
func (h *Handler) mapError(err error) error {
	var re *ledger.RevertError
	switch {
	case errors.As(err, &re):
		return huma.Error409Conflict(re.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return huma.Error404NotFound("record not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("request cancelled")
	default:
		h.log.Error("contract call failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
