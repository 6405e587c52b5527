// Package leveldb - локальный кэш записей клиента в LevelDB
package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const recordPrefix = "record:"

type Store struct {
	db *leveldb.DB
}

// New открывает базу в каталоге path
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

// NewInMemory - хранилище без диска, для тестов
func NewInMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (map[string]vaccine.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer iter.Release()

	out := make(map[string]vaccine.Payload)
	for iter.Next() {
		key := strings.TrimPrefix(string(iter.Key()), recordPrefix)

		var p vaccine.Payload
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			return nil, fmt.Errorf("ошибка парсинга записи %s: %w", key, err)
		}
		out[key] = p
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("ошибка чтения leveldb: %w", err)
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
	if err := s.db.Put([]byte(recordPrefix+key), raw, nil); err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}
	return nil
}

// Count - количество записей в кэше
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer iter.Release()

	count := 0
	for iter.Next() {
		count++
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
