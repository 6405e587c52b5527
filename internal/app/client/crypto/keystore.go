// Package crypto хранит ключ подписанта клиента в зашифрованном файле.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Константы для PBKDF2
	pbkdf2Iterations = 100000
	pbkdf2SaltLength = 16

	// Константы для Argon2
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4

	derivedKeyLength = 32 // AES-256

	keyVersion = 1

	keyFilePermissions = 0600
)

// Алгоритмы получения ключа из пароля
const (
	AlgorithmArgon2id = "Argon2id"
	AlgorithmPBKDF2   = "PBKDF2-SHA256"
)

var (
	ErrNotInitialized = errors.New("ключ не создан, выполните init")
	ErrAlreadyExists  = errors.New("файл ключа уже существует")
	ErrWrongPassword  = errors.New("неверный пароль")
	ErrLocked         = errors.New("ключ не разблокирован")
)

// KeyHeader содержит метаданные файла ключа
type KeyHeader struct {
	Version      int       `json:"version"`
	KeyAlgorithm string    `json:"key_algorithm"`
	Salt         string    `json:"salt"` // hex
	Iterations   int       `json:"iterations,omitempty"`
	Address      string    `json:"address"`
	KeyHash      string    `json:"key_hash"` // SHA256 производного ключа для проверки пароля
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type keyFile struct {
	Header KeyHeader `json:"header"`
	Data   string    `json:"data"` // hex(AES-GCM(приватный ключ))
}

// Keystore управляет файлом ключа подписанта
type Keystore struct {
	path      string
	algorithm string
	identity  *Identity
	header    KeyHeader
	now       func() time.Time
	mu        sync.RWMutex
}

// NewKeystore создает менеджер для файла ключа. Алгоритм по умолчанию Argon2id.
func NewKeystore(path string) (*Keystore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения пути: %w", err)
	}

	ks := &Keystore{path: absPath, algorithm: AlgorithmArgon2id, now: time.Now}

	if _, err := os.Stat(absPath); err == nil {
		f, err := ks.readFile()
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки заголовка ключа: %w", err)
		}
		ks.header = f.Header
	}

	return ks, nil
}

// WithAlgorithm задает алгоритм для новых файлов ключа
func (k *Keystore) WithAlgorithm(alg string) *Keystore {
	k.algorithm = alg
	return k
}

// Path - путь к файлу ключа
func (k *Keystore) Path() string {
	return k.path
}

// IsInitialized проверяет, создан ли файл ключа
func (k *Keystore) IsInitialized() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return !k.header.CreatedAt.IsZero()
}

// Address возвращает адрес из заголовка, не требуя пароля
func (k *Keystore) Address() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.header.Address
}

// Generate создает новый ключ подписанта и сохраняет его под паролем
func (k *Keystore) Generate(password string) (*Identity, error) {
	id, err := NewIdentity()
	if err != nil {
		return nil, err
	}
	if err := k.Import(password, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Import сохраняет существующий ключ под паролем
func (k *Keystore) Import(password string, id *Identity) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, err := os.Stat(k.path); err == nil {
		return ErrAlreadyExists
	}

	now := k.now().UTC()
	header := KeyHeader{
		Version:      keyVersion,
		KeyAlgorithm: k.algorithm,
		Address:      id.Address(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := k.writeLocked(header, password, id); err != nil {
		return err
	}

	k.identity = id
	return nil
}

// Unlock расшифровывает ключ подписанта паролем
func (k *Keystore) Unlock(password string) (*Identity, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.identity != nil {
		return k.identity, nil
	}

	f, err := k.readFile()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	k.header = f.Header

	key, err := deriveKey(password, f.Header)
	if err != nil {
		return nil, err
	}
	defer clearMemory(key)

	if err := checkKeyHash(key, f.Header.KeyHash); err != nil {
		return nil, err
	}

	sealed, err := hex.DecodeString(f.Data)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования зашифрованного ключа: %w", err)
	}
	raw, err := decryptWithKey(key, sealed)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки ключа: %w", err)
	}
	defer clearMemory(raw)

	id, err := identityFromBytes(raw)
	if err != nil {
		return nil, err
	}

	k.identity = id
	return id, nil
}

// ChangePassword перешифровывает ключ новым паролем
func (k *Keystore) ChangePassword(oldPassword, newPassword string) error {
	k.mu.Lock()
	identity := k.identity
	k.identity = nil
	k.mu.Unlock()

	id, err := k.Unlock(oldPassword)
	if err != nil {
		k.mu.Lock()
		k.identity = identity
		k.mu.Unlock()
		return fmt.Errorf("неверный старый пароль: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	header := k.header
	header.KeyAlgorithm = k.algorithm
	header.UpdatedAt = k.now().UTC()
	return k.writeLocked(header, newPassword, id)
}

// Identity возвращает разблокированный ключ
func (k *Keystore) Identity() (*Identity, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.identity == nil {
		return nil, ErrLocked
	}
	return k.identity, nil
}

// Lock забывает разблокированный ключ
func (k *Keystore) Lock() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.identity = nil
}

func (k *Keystore) writeLocked(header KeyHeader, password string, id *Identity) error {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("ошибка генерации соли: %w", err)
	}
	header.Salt = hex.EncodeToString(salt)
	if header.KeyAlgorithm == AlgorithmPBKDF2 {
		header.Iterations = pbkdf2Iterations
	} else {
		header.Iterations = 0
	}

	key, err := deriveKey(password, header)
	if err != nil {
		return err
	}
	defer clearMemory(key)

	sum := sha256.Sum256(key)
	header.KeyHash = hex.EncodeToString(sum[:])

	raw := id.bytes()
	defer clearMemory(raw)
	sealed, err := encryptWithKey(key, raw)
	if err != nil {
		return fmt.Errorf("ошибка шифрования ключа: %w", err)
	}

	data, err := json.MarshalIndent(keyFile{Header: header, Data: hex.EncodeToString(sealed)}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}
	if err := os.WriteFile(k.path, data, keyFilePermissions); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}

	k.header = header
	return nil
}

func (k *Keystore) readFile() (*keyFile, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла ключа: %w", err)
	}

	var f keyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка декодирования файла ключа: %w", err)
	}
	return &f, nil
}

// deriveKey получает ключ шифрования из пароля по заголовку
func deriveKey(password string, h KeyHeader) ([]byte, error) {
	salt, err := hex.DecodeString(h.Salt)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования соли: %w", err)
	}

	switch h.KeyAlgorithm {
	case AlgorithmPBKDF2:
		return pbkdf2.Key([]byte(password), salt, h.Iterations, derivedKeyLength, sha256.New), nil
	case AlgorithmArgon2id:
		return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, derivedKeyLength), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый алгоритм: %s", h.KeyAlgorithm)
	}
}

func checkKeyHash(key []byte, want string) error {
	sum := sha256.Sum256(key)
	if hex.EncodeToString(sum[:]) != want {
		return ErrWrongPassword
	}
	return nil
}
