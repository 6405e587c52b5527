package relayer

import (
	"maskedvaccine/internal/domain/fhe"
)

type encryptInput struct {
	Body encryptRequest
}

type encryptRequest struct {
	Contract string      `json:"contract_address" doc:"Адрес контракта, для которого шифруется вход" pattern:"^0x[0-9a-fA-F]{40}$"`
	User     string      `json:"user_address" doc:"Адрес отправителя транзакции" pattern:"^0x[0-9a-fA-F]{40}$"`
	Values   []fhe.Value `json:"values" doc:"Значения для шифрования" minItems:"1" maxItems:"255"`
}

type encryptOutput struct {
	Body *fhe.Encrypted
}
