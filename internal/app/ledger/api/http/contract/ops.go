package contract

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createRecordOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/records",
		Summary:     "Создать зашифрованную запись",
		Description: "createRecord(handle, proof, providerHash). Отправитель берется из подписи запроса.",
		Tags:        []string{"records"},
		Security:    []map[string][]string{{"signature": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getRecordOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{id}",
		Summary:     "Получить зашифрованную запись",
		Description: "getEncryptedRecord(id): владелец, handle, providerHash, createdAt.",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) authorizeOp() huma.Operation {
	return huma.Operation{
		OperationID: "grants-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/records/{id}/grants",
		Summary:     "Авторизовать проверяющего",
		Description: "authorizeVerifier(id, verifier, encScope, proof, expiry, tag). Только владелец записи.",
		Tags:        []string{"grants"},
		Security:    []map[string][]string{{"signature": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) requestDecryptionOp() huma.Operation {
	return huma.Operation{
		OperationID: "decryptions-request",
		Method:      http.MethodPost,
		Path:        "/api/v1/records/{id}/decryptions",
		Summary:     "Запросить расшифровку",
		Description: "requestDecryption(id, encScope, proof, tag). Требует действующий грант с маской, покрывающей запрос.",
		Tags:        []string{"decryptions"},
		Security:    []map[string][]string{{"signature": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) eventsOp() huma.Operation {
	return huma.Operation{
		OperationID: "events-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "Журнал событий",
		Description: "События в порядке добавления, с фильтром по имени, записи и создателю.",
		Tags:        []string{"events"},
		Middlewares: h.middleware,
	}
}
