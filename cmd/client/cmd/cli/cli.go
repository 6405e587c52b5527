// Package cli - общие помощники команд клиента
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"maskedvaccine/internal/app/client"
	"maskedvaccine/internal/app/client/crypto"
	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PasswordEnv - пароль ключа для неинтерактивного запуска
const PasswordEnv = "MASKEDVACCINE_PASSWORD"

type ctxKey struct{}

// JSONOutput включается глобальным флагом --json
var JSONOutput bool

// WithApp кладет приложение в контекст команды
func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ctxKey{}).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// Connect разблокирует ключ и подключает сессию подписанта
func Connect(cmd *cobra.Command) (*client.App, *vaccine.Session, error) {
	app, err := App(cmd)
	if err != nil {
		return nil, nil, err
	}

	id, err := Unlock(app.Keystore())
	if err != nil {
		return nil, nil, err
	}

	session, err := app.Connect(cmd.Context(), id)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка подключения: %w", err)
	}

	if status, loadErr := app.InstanceStatus(); loadErr != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Шифрование недоступно (%s): %v\n", status, loadErr)
	}

	return app, session, nil
}

// Unlock берет ключ из действующей сессии, иначе спрашивает пароль
func Unlock(ks *crypto.Keystore) (*crypto.Identity, error) {
	if !ks.IsInitialized() {
		return nil, crypto.ErrNotInitialized
	}

	if id, err := ks.LoadSession(); err == nil {
		return id, nil
	}

	password := os.Getenv(PasswordEnv)
	if password == "" {
		var err error
		password, err = ReadPassword(fmt.Sprintf("Пароль ключа %s: ", ks.Address()))
		if err != nil {
			return nil, err
		}
	}

	id, err := ks.Unlock(password)
	if err != nil {
		return nil, err
	}

	if err := ks.SaveSession(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Не удалось сохранить сессию: %v\n", err)
	}
	return id, nil
}

// ReadPassword читает пароль без эха
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	return string(password), nil
}

// Print выводит значение как JSON при --json, иначе вызывает text
func Print(v any, text func()) error {
	if JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

// Explain добавляет к ошибке статус сессии, если он есть
// Disabled объясняет, почему операция над активной записью отключена
func Disabled(session *vaccine.Session, op string) error {
	if session.Active() == 0 {
		return fmt.Errorf("%s отключен: нет активной записи, выполните record select <id>", op)
	}
	if missing := session.Missing(); len(missing) > 0 {
		return fmt.Errorf("%s отключен: нет %s\nпроверьте LEDGER_URL и CHAIN_ID", op, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%s отключен", op)
}

func Explain(session *vaccine.Session, err error) error {
	if errors.Is(err, vaccine.ErrUnavailable) {
		return fmt.Errorf("%w\nпроверьте LEDGER_URL и CHAIN_ID: нужен relayer и адрес контракта", err)
	}
	if status := session.Status(); status != "" {
		return fmt.Errorf("%w\nстатус: %s", err, status)
	}
	return err
}
