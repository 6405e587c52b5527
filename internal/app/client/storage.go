package client

import (
	"context"
	"fmt"
	"io"

	"maskedvaccine/internal/app/client/config"
	"maskedvaccine/internal/domain/vaccine"
	"maskedvaccine/internal/infrastructure/storage/badger"
	"maskedvaccine/internal/infrastructure/storage/leveldb"
	"maskedvaccine/internal/infrastructure/storage/sqlite"
)

// CacheStore - долговременное хранилище кэша записей
type CacheStore interface {
	vaccine.Store
	io.Closer
	Count(ctx context.Context) (int, error)
}

// openCacheStore открывает хранилище по настройке CACHE_BACKEND.
// Для memory возвращается nil: кэш живет только в памяти процесса.
func openCacheStore(cfg *config.Config) (CacheStore, error) {
	var (
		store CacheStore
		err   error
	)
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		store, err = sqlite.New(cfg.CachePath)
	case config.CacheLevelDB:
		store, err = leveldb.New(cfg.CachePath)
	case config.CacheBadger:
		store, err = badger.New(cfg.CachePath)
	case config.CacheMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("неизвестное хранилище кэша: %s", cfg.CacheBackend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
