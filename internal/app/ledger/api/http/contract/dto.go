package contract

import (
	"maskedvaccine/internal/domain/ledger"
)

type receiptOutput struct {
	Body *ledger.Receipt
}

type recordPath struct {
	ID uint64 `path:"id" minimum:"1" example:"1" doc:"ID записи"`
}

type recordOutput struct {
	Body *ledger.Record
}

type createRecordInput struct {
	Body createRecordRequest
}

type createRecordRequest struct {
	Handle       string `json:"handle" doc:"Handle зашифрованного значения записи" pattern:"^0x[0-9a-fA-F]{64}$"`
	InputProof   string `json:"input_proof" doc:"Input proof от relayer" minLength:"4"`
	ProviderHash string `json:"provider_hash" doc:"keccak256(manufacturer-site)" pattern:"^0x[0-9a-fA-F]{64}$"`
}

type authorizeInput struct {
	ID   uint64 `path:"id" minimum:"1" example:"1" doc:"ID записи"`
	Body authorizeRequest
}

type authorizeRequest struct {
	Verifier       string `json:"verifier" doc:"Адрес проверяющего" pattern:"^0x[0-9a-fA-F]{40}$"`
	EncryptedScope string `json:"encrypted_scope" doc:"Handle зашифрованной маски полей" pattern:"^0x[0-9a-fA-F]{64}$"`
	InputProof     string `json:"input_proof" doc:"Input proof от relayer" minLength:"4"`
	Expiry         int64  `json:"expiry" doc:"Срок действия, unix секунды"`
	ScopeTag       string `json:"scope_tag" doc:"Метка гранта"`
}

type decryptionInput struct {
	ID   uint64 `path:"id" minimum:"1" example:"1" doc:"ID записи"`
	Body decryptionRequest
}

type decryptionRequest struct {
	EncryptedScope string `json:"encrypted_scope" doc:"Handle зашифрованной запрошенной маски" pattern:"^0x[0-9a-fA-F]{64}$"`
	InputProof     string `json:"input_proof" doc:"Input proof от relayer" minLength:"4"`
	ScopeTag       string `json:"scope_tag" doc:"Метка запроса"`
}

type eventsInput struct {
	Name     string `query:"name" doc:"Имя события: RecordCreated, VerifierAuthorized, DecryptionRequested"`
	RecordID uint64 `query:"record_id" doc:"ID записи"`
	Creator  string `query:"creator" doc:"Адрес создателя записи"`
}

type eventsOutput struct {
	Body eventsResponse
}

type eventsResponse struct {
	Events []ledger.Log `json:"events"`
}
