package relayer

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) encryptOp() huma.Operation {
	return huma.Operation{
		OperationID: "relayer-encrypt-input",
		Method:      http.MethodPost,
		Path:        "/api/v1/relayer/inputs",
		Summary:     "Зашифровать вход",
		Description: "Шифрует значения для контракта и пользователя и возвращает handles с input proof.",
		Tags:        []string{"relayer"},
		Middlewares: h.middleware,
	}
}
