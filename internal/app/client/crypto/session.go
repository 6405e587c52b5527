package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionTimeout     = 15 * time.Minute // Таймаут сессии
	sessionPermissions = 0600
)

var (
	ErrNoSession      = errors.New("сессия не найдена")
	ErrSessionExpired = errors.New("сессия истекла")
)

// Session хранит разблокированный ключ между запусками CLI
type Session struct {
	SealedKey []byte    `json:"sealed_key"` // приватный ключ, зашифрованный ключом сессии
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveSession сохраняет разблокированный ключ на sessionTimeout
func (k *Keystore) SaveSession() error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.identity == nil {
		return ErrLocked
	}

	// Генерируем случайный ключ сессии для шифрования
	sessionKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, sessionKey); err != nil {
		return fmt.Errorf("ошибка генерации ключа сессии: %w", err)
	}

	raw := k.identity.bytes()
	defer clearMemory(raw)
	sealed, err := encryptWithKey(sessionKey, raw)
	if err != nil {
		return fmt.Errorf("ошибка шифрования ключа: %w", err)
	}

	now := k.now()
	data, err := json.Marshal(Session{
		SealedKey: sealed,
		Address:   k.identity.Address(),
		ExpiresAt: now.Add(sessionTimeout),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	encryptedSession, err := encryptWithKey(sessionKey, data)
	if err != nil {
		return fmt.Errorf("ошибка шифрования сессии: %w", err)
	}

	sessionJSON, err := json.MarshalIndent(struct {
		Key  string `json:"key"`
		Data string `json:"data"`
	}{
		Key:  hex.EncodeToString(sessionKey),
		Data: hex.EncodeToString(encryptedSession),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := os.WriteFile(k.sessionPath(), sessionJSON, sessionPermissions); err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}

	return nil
}

// LoadSession восстанавливает ключ из действующей сессии
func (k *Keystore) LoadSession() (*Identity, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	path := k.sessionPath()

	sessionJSON, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}

	var sessionData struct {
		Key  string `json:"key"`
		Data string `json:"data"`
	}
	if err := json.Unmarshal(sessionJSON, &sessionData); err != nil {
		return nil, fmt.Errorf("ошибка декодирования сессии: %w", err)
	}

	sessionKey, err := hex.DecodeString(sessionData.Key)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования ключа сессии: %w", err)
	}
	encryptedSession, err := hex.DecodeString(sessionData.Data)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования данных сессии: %w", err)
	}

	sessionBytes, err := decryptWithKey(sessionKey, encryptedSession)
	if err != nil {
		// Сессия повреждена, удаляем её
		_ = os.Remove(path)
		return nil, fmt.Errorf("ошибка расшифровки сессии: %w", err)
	}

	var session Session
	if err := json.Unmarshal(sessionBytes, &session); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("ошибка декодирования сессии: %w", err)
	}

	if k.now().After(session.ExpiresAt) {
		_ = os.Remove(path)
		return nil, ErrSessionExpired
	}

	raw, err := decryptWithKey(sessionKey, session.SealedKey)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("ошибка расшифровки ключа: %w", err)
	}
	defer clearMemory(raw)

	id, err := identityFromBytes(raw)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	// Сессия от другого файла ключа не подходит
	if k.header.Address != "" && id.Address() != k.header.Address {
		_ = os.Remove(path)
		return nil, ErrNoSession
	}

	k.identity = id
	return id, nil
}

// ClearSession удаляет файл сессии
func (k *Keystore) ClearSession() error {
	if err := os.Remove(k.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	return nil
}

func (k *Keystore) sessionPath() string {
	return filepath.Join(filepath.Dir(k.path), ".session")
}
