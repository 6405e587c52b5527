package network

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) networkOp() huma.Operation {
	return huma.Operation{
		OperationID: "network-info",
		Method:      http.MethodGet,
		Path:        "/api/v1/network",
		Summary:     "Метаданные сети",
		Tags:        []string{"network"},
		Middlewares: h.middleware,
	}
}
