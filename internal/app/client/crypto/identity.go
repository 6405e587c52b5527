package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity - разблокированный ключ подписанта
type Identity struct {
	key *ecdsa.PrivateKey
}

// NewIdentity генерирует новый ключ secp256k1
func NewIdentity() (*Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации ключа: %w", err)
	}
	return &Identity{key: key}, nil
}

// IdentityFromHex восстанавливает ключ из hex строки (с 0x или без)
func IdentityFromHex(s string) (*Identity, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("неверный приватный ключ: %w", err)
	}
	return &Identity{key: key}, nil
}

func identityFromBytes(b []byte) (*Identity, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("неверный приватный ключ: %w", err)
	}
	return &Identity{key: key}, nil
}

// Address - checksum адрес подписанта
func (i *Identity) Address() string {
	return crypto.PubkeyToAddress(i.key.PublicKey).Hex()
}

// PrivateKey нужен для подписи запросов к ledger
func (i *Identity) PrivateKey() *ecdsa.PrivateKey {
	return i.key
}

// Hex возвращает приватный ключ для экспорта
func (i *Identity) Hex() string {
	return hexutil.Encode(crypto.FromECDSA(i.key))
}

func (i *Identity) bytes() []byte {
	return crypto.FromECDSA(i.key)
}
