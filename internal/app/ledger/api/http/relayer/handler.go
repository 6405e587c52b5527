package relayer

import (
	"context"
	"errors"

	"maskedvaccine/internal/domain/fhe"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	relayer    fhe.Relayer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(relayer fhe.Relayer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		relayer:    relayer,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.encryptOp(), h.encrypt)
}

func (h *Handler) encrypt(ctx context.Context, input *encryptInput) (*encryptOutput, error) {
	enc, err := h.relayer.EncryptInput(ctx, input.Body.Contract, input.Body.User, input.Body.Values)
	if err != nil {
		if errors.Is(err, fhe.ErrEmptyInput) || errors.Is(err, fhe.ErrValueTooLarge) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		h.log.Error("encrypt input failed", "error", err)
		return nil, huma.Error500InternalServerError("encryption failed")
	}
	return &encryptOutput{Body: enc}, nil
}
