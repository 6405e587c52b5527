// Package badger - локальный кэш записей клиента в BadgerDB
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/dgraph-io/badger/v4"
)

var recordPrefix = []byte("record:")

type Store struct {
	db *badger.DB
}

// New открывает базу в каталоге path
func New(path string) (*Store, error) {
	return open(badger.DefaultOptions(path))
}

// NewInMemory - хранилище без диска, для тестов
func NewInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (map[string]vaccine.Payload, error) {
	out := make(map[string]vaccine.Payload)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), string(recordPrefix))
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			var p vaccine.Payload
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("ошибка парсинга записи %s: %w", key, err)
			}
			out[key] = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения badger: %w", err)
	}

	return out, nil
}

func (s *Store) Save(ctx context.Context, key string, p vaccine.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(append(append([]byte{}, recordPrefix...), key...), raw)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}
	return nil
}

// Count - количество записей в кэше. Значения не читаются.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
