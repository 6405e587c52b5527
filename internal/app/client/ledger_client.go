package client

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/utils/reqsign"

	"golang.org/x/exp/slog"
)

const userAgent = "MaskedVaccine-Client/1.0"

var ErrUnsigned = errors.New("ключ подписанта не задан")

// LedgerClient - HTTP привязка к контракту на узле ledger. Реализует
// vaccine.Ledger и fhe.Relayer.
type LedgerClient struct {
	client   *http.Client
	log      *slog.Logger
	baseURL  string
	contract string
	key      *ecdsa.PrivateKey
	now      func() time.Time
}

// NewLedgerClient создает клиент узла. Без ключа доступны только чтение и relayer.
func NewLedgerClient(baseURL, contract string, key *ecdsa.PrivateKey, timeout time.Duration, log *slog.Logger) *LedgerClient {
	return &LedgerClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:      log.With("component", "ledger_client"),
		baseURL:  strings.TrimRight(baseURL, "/"),
		contract: contract,
		key:      key,
		now:      time.Now,
	}
}

// Contract - адрес контракта, к которому привязан клиент
func (c *LedgerClient) Contract() string {
	return c.contract
}

// HealthCheck проверяет доступность узла
func (c *LedgerClient) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", nil, nil, false)
}

// Network возвращает метаданные relayer узла
func (c *LedgerClient) Network(ctx context.Context) (*fhe.Metadata, error) {
	var meta fhe.Metadata
	if err := c.do(ctx, http.MethodGet, "/api/v1/network", nil, &meta, false); err != nil {
		return nil, err
	}
	return &meta, nil
}

// EncryptInput шифрует значения через relayer узла
func (c *LedgerClient) EncryptInput(ctx context.Context, contract, user string, values []fhe.Value) (*fhe.Encrypted, error) {
	req := struct {
		Contract string      `json:"contract_address"`
		User     string      `json:"user_address"`
		Values   []fhe.Value `json:"values"`
	}{Contract: contract, User: user, Values: values}

	var enc fhe.Encrypted
	if err := c.do(ctx, http.MethodPost, "/api/v1/relayer/inputs", req, &enc, false); err != nil {
		return nil, err
	}
	return &enc, nil
}

func (c *LedgerClient) CreateRecord(ctx context.Context, call ledger.CreateRecordCall) (*ledger.Receipt, error) {
	var receipt ledger.Receipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/records", call, &receipt, true); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *LedgerClient) AuthorizeVerifier(ctx context.Context, call ledger.AuthorizeCall) (*ledger.Receipt, error) {
	body := struct {
		Verifier       string `json:"verifier"`
		EncryptedScope string `json:"encrypted_scope"`
		InputProof     string `json:"input_proof"`
		Expiry         int64  `json:"expiry"`
		ScopeTag       string `json:"scope_tag"`
	}{
		Verifier:       call.Verifier,
		EncryptedScope: call.EncryptedScope,
		InputProof:     call.InputProof,
		Expiry:         call.Expiry,
		ScopeTag:       call.ScopeTag,
	}

	var receipt ledger.Receipt
	path := "/api/v1/records/" + strconv.FormatUint(call.RecordID, 10) + "/grants"
	if err := c.do(ctx, http.MethodPost, path, body, &receipt, true); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *LedgerClient) RequestDecryption(ctx context.Context, call ledger.DecryptionCall) (*ledger.Receipt, error) {
	body := struct {
		EncryptedScope string `json:"encrypted_scope"`
		InputProof     string `json:"input_proof"`
		ScopeTag       string `json:"scope_tag"`
	}{
		EncryptedScope: call.EncryptedScope,
		InputProof:     call.InputProof,
		ScopeTag:       call.ScopeTag,
	}

	var receipt ledger.Receipt
	path := "/api/v1/records/" + strconv.FormatUint(call.RecordID, 10) + "/decryptions"
	if err := c.do(ctx, http.MethodPost, path, body, &receipt, true); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Record - представление getEncryptedRecord
func (c *LedgerClient) Record(ctx context.Context, id uint64) (*ledger.Record, error) {
	var rec ledger.Record
	if err := c.do(ctx, http.MethodGet, "/api/v1/records/"+strconv.FormatUint(id, 10), nil, &rec, false); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *LedgerClient) Events(ctx context.Context, filter ledger.EventFilter) ([]ledger.Log, error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.RecordID != 0 {
		q.Set("record_id", strconv.FormatUint(filter.RecordID, 10))
	}
	if filter.Creator != "" {
		q.Set("creator", filter.Creator)
	}

	path := "/api/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Events []ledger.Log `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *LedgerClient) do(ctx context.Context, method, path string, body, result any, sign bool) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sign {
		if c.key == nil {
			return ErrUnsigned
		}
		// подписывается только путь, без query
		h, err := reqsign.Sign(c.key, method, req.URL.Path, data, c.now())
		if err != nil {
			return err
		}
		req.Header.Set(reqsign.HeaderSigner, h.Signer)
		req.Header.Set(reqsign.HeaderTimestamp, h.Timestamp)
		req.Header.Set(reqsign.HeaderSignature, h.Signature)
	}

	c.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return c.parseResponse(resp, result)
}

// problem - тело ошибки huma (application/problem+json)
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *LedgerClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	c.log.Debug("Получен ответ", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= 400 {
		return responseError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

// responseError восстанавливает типизированную ошибку из ответа узла
func responseError(status int, body []byte) error {
	var p problem
	_ = json.Unmarshal(body, &p)

	detail := p.Detail
	if detail == "" {
		detail = p.Title
	}

	switch status {
	case http.StatusConflict:
		return &ledger.RevertError{Reason: strings.TrimPrefix(detail, "execution reverted: ")}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, detail)
	default:
		if detail != "" {
			return fmt.Errorf("ошибка сервера (%d): %s", status, detail)
		}
		return fmt.Errorf("ошибка сервера: статус %d", status)
	}
}

// probeRelayer - fhe.Params.Probe для эндпоинта узла
func probeRelayer(timeout time.Duration, log *slog.Logger) func(ctx context.Context, endpoint string) (*fhe.Metadata, error) {
	return func(ctx context.Context, endpoint string) (*fhe.Metadata, error) {
		return NewLedgerClient(endpoint, "", nil, timeout, log).Network(ctx)
	}
}

// dialRelayer - fhe.Params.Dial для эндпоинта узла
func dialRelayer(timeout time.Duration, log *slog.Logger) func(endpoint string) fhe.Relayer {
	return func(endpoint string) fhe.Relayer {
		return NewLedgerClient(endpoint, "", nil, timeout, log)
	}
}
