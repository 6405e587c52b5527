// Package reqsign подписывает HTTP запросы к узлу ledger ключом secp256k1.
//
// Подпись покрывает метод, путь, метку времени и тело запроса. Узел
// восстанавливает адрес отправителя из подписи и сверяет его с X-Signer.
package reqsign

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	HeaderSigner    = "X-Signer"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

var (
	ErrMissing   = errors.New("request is not signed")
	ErrMalformed = errors.New("malformed request signature")
	ErrStale     = errors.New("request timestamp outside the allowed window")
	ErrMismatch  = errors.New("signature does not match signer")
)

// Headers - заголовки подписанного запроса
type Headers struct {
	Signer    string
	Timestamp string
	Signature string
}

// Digest - хеш подписываемых данных
func Digest(method, path, timestamp string, body []byte) []byte {
	return crypto.Keccak256(
		[]byte(strings.ToUpper(method)),
		[]byte(path),
		[]byte(timestamp),
		crypto.Keccak256(body),
	)
}

// Sign подписывает запрос и возвращает заголовки для него
func Sign(key *ecdsa.PrivateKey, method, path string, body []byte, now time.Time) (Headers, error) {
	ts := strconv.FormatInt(now.Unix(), 10)
	sig, err := crypto.Sign(Digest(method, path, ts, body), key)
	if err != nil {
		return Headers{}, fmt.Errorf("sign request: %w", err)
	}
	return Headers{
		Signer:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Timestamp: ts,
		Signature: hexutil.Encode(sig),
	}, nil
}

// Verify проверяет подпись и возвращает адрес отправителя
func Verify(h Headers, method, path string, body []byte, now time.Time, window time.Duration) (string, error) {
	if h.Signature == "" && h.Signer == "" {
		return "", ErrMissing
	}
	if !common.IsHexAddress(h.Signer) {
		return "", fmt.Errorf("%w: signer %q", ErrMalformed, h.Signer)
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: timestamp", ErrMalformed)
	}
	if d := now.Sub(time.Unix(ts, 0)); d > window || d < -window {
		return "", ErrStale
	}

	sig, err := hexutil.Decode(h.Signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: signature", ErrMalformed)
	}

	pub, err := crypto.SigToPub(Digest(method, path, h.Timestamp, body), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	addr := crypto.PubkeyToAddress(*pub)
	if addr != common.HexToAddress(h.Signer) {
		return "", ErrMismatch
	}
	return addr.Hex(), nil
}
