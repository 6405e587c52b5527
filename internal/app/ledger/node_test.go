package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maskedvaccine/internal/app/ledger/config"
	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/utils/reqsign"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testConfig() *config.Config {
	cfg := &config.Config{Env: "local"}
	cfg.Server.RunAddress = "127.0.0.1:0"
	cfg.Network.ChainID = 31337
	cfg.Network.ContractAddress = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	cfg.Security.SignatureWindow = time.Minute
	return cfg
}

func newTestServer(t *testing.T) (*httptest.Server, *Node) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	node, err := NewNode(context.Background(), testConfig(), log)
	require.NoError(t, err)

	srv := httptest.NewServer(node.Handler())
	t.Cleanup(srv.Close)
	return srv, node
}

func postJSON(t *testing.T, url, path string, body any, sign bool) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if sign {
		h, err := reqsign.Sign(testKey, http.MethodPost, path, data, time.Now())
		require.NoError(t, err)
		req.Header.Set(reqsign.HeaderSigner, h.Signer)
		req.Header.Set(reqsign.HeaderTimestamp, h.Timestamp)
		req.Header.Set(reqsign.HeaderSignature, h.Signature)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

var testKey, _ = crypto.GenerateKey()

func TestNode_EndToEnd(t *testing.T) {
	srv, node := newTestServer(t)
	user := crypto.PubkeyToAddress(testKey.PublicKey).Hex()

	// network
	resp, err := http.Get(srv.URL + "/api/v1/network")
	require.NoError(t, err)
	var meta fhe.Metadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	resp.Body.Close()
	assert.Equal(t, uint64(31337), meta.ChainID)
	assert.Equal(t, node.Metadata().InputVerifier, meta.InputVerifier)

	// relayer
	resp = postJSON(t, srv.URL, "/api/v1/relayer/inputs", map[string]any{
		"contract_address": meta.ContractAddress,
		"user_address":     user,
		"values":           []fhe.Value{{Bits: 64, Value: 12345}},
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var enc fhe.Encrypted
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&enc))
	resp.Body.Close()
	require.Len(t, enc.Handles, 1)

	createBody := map[string]any{
		"handle":        enc.Handles[0],
		"input_proof":   enc.InputProof,
		"provider_hash": crypto.Keccak256Hash([]byte("Pfizer-Clinic")).Hex(),
	}

	// unsigned write is rejected
	resp = postJSON(t, srv.URL, "/api/v1/records", createBody, false)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL, "/api/v1/records", createBody, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt ledger.Receipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	resp.Body.Close()
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, uint64(1), receipt.Logs[0].RecordID)
	assert.Equal(t, user, receipt.Logs[0].Creator)

	// request without a grant is a revert
	resp = postJSON(t, srv.URL, "/api/v1/relayer/inputs", map[string]any{
		"contract_address": meta.ContractAddress,
		"user_address":     user,
		"values":           []fhe.Value{{Bits: 32, Value: 3}},
	}, false)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&enc))
	resp.Body.Close()

	resp = postJSON(t, srv.URL, "/api/v1/records/1/decryptions", map[string]any{
		"encrypted_scope": enc.Handles[0],
		"input_proof":     enc.InputProof,
		"scope_tag":       "0x01",
	}, true)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), ledger.ReasonNotAuthorized)

	// events
	resp, err = http.Get(srv.URL + "/api/v1/events?name=RecordCreated&creator=" + user)
	require.NoError(t, err)
	var events struct {
		Events []ledger.Log `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	resp.Body.Close()
	require.Len(t, events.Events, 1)

	// record view
	resp, err = http.Get(srv.URL + "/api/v1/records/1")
	require.NoError(t, err)
	var rec ledger.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	resp.Body.Close()
	assert.Equal(t, user, rec.Owner)

	resp, err = http.Get(srv.URL + "/api/v1/records/9")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCoprocessorKey(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	key, err := coprocessorKey("", log)
	require.NoError(t, err)
	assert.NotNil(t, key)

	hexKey := "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	key, err = coprocessorKey(hexKey, log)
	require.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", crypto.PubkeyToAddress(key.PublicKey).Hex())

	_, err = coprocessorKey("0xnothex", log)
	assert.Error(t, err)
}
