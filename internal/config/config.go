package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Окружения запуска, влияют на формат и уровень логов
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// LoadDotEnv загружает первый найденный .env файл из списка путей.
// Отсутствие файла не ошибка: значения берутся из окружения.
func LoadDotEnv(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return p, err
		}
		return p, nil
	}
	return "", nil
}
