// Package sqlite - локальный кэш записей клиента в SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"maskedvaccine/internal/domain/vaccine"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

// New открывает базу по пути и создает таблицу кэша
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return s, nil
}

func (s *Store) initTables() error {
	// Записи не удаляются: id выдает ledger, перезапись только той же записи
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS vaccine_records (
			record_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// Load читает все закэшированные записи
func (s *Store) Load(ctx context.Context) (map[string]vaccine.Payload, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, payload FROM vaccine_records`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	out := make(map[string]vaccine.Payload)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}

		var p vaccine.Payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("ошибка парсинга записи %s: %w", key, err)
		}
		out[key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}

	return out, nil
}

// Save сохраняет запись под ключом
func (s *Store) Save(ctx context.Context, key string, p vaccine.Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vaccine_records (record_id, payload) VALUES (?, ?)
		ON CONFLICT(record_id) DO UPDATE SET payload = excluded.payload, saved_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	return nil
}

// Count - количество записей в кэше
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaccine_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
