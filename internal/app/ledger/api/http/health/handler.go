package health

import (
	"context"

	"maskedvaccine/internal/domain/ledger"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// EventReader - часть контракта, нужная для проверки хранилища
type EventReader interface {
	Address() string
	Events(ctx context.Context, filter ledger.EventFilter) ([]ledger.Log, error)
}

type Handler struct {
	contract   EventReader
	chainID    uint64
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(contract EventReader, chainID uint64, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		contract:   contract,
		chainID:    chainID,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck читает журнал событий, чтобы проверить хранилище узла
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	logs, err := h.contract.Events(ctx, ledger.EventFilter{Name: ledger.EventRecordCreated})
	if err != nil {
		h.log.Error("health check: хранилище недоступно", "error", err)
		return nil, huma.Error503ServiceUnavailable("ledger storage unavailable")
	}

	return &Output{
		Body: Response{
			Status:   "OK",
			ChainID:  h.chainID,
			Contract: h.contract.Address(),
			Records:  len(logs),
		},
	}, nil
}
