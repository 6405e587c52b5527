package network

import (
	"context"

	"maskedvaccine/internal/domain/fhe"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Handler отдает метаданные сети: chain id, адрес контракта и input verifier.
// Клиент по ним проверяет, что подключился к нужной сети.
type Handler struct {
	meta       fhe.Metadata
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(meta fhe.Metadata, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		meta:       meta,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.networkOp(), h.network)
}

func (h *Handler) network(_ context.Context, _ *Input) (*Output, error) {
	return &Output{Body: h.meta}, nil
}
