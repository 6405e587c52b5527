package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/cmd/client/cmd/grant"
	"maskedvaccine/cmd/client/cmd/record"
	"maskedvaccine/internal/app/client/crypto"

	"github.com/spf13/cobra"
)

var (
	importKey string
	weakOK    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Создать ключ подписанта",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает ключ secp256k1 (или импортирует --import-key)
	2. Шифрует его паролем и сохраняет в директории конфигурации
	3. Проверяет, доступен ли relayer для выбранной сети

Адрес ключа - ваша личность в ledger: владелец записи или проверяющий.
Без пароля восстановить ключ невозможно.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		ks := app.Keystore()
		if ks.IsInitialized() {
			fmt.Printf("Ключ уже создан: %s\n", ks.Address())
			return nil
		}

		fmt.Println("=== Инициализация MaskedVaccine ===")
		fmt.Println()

		password, err := cli.ReadPassword("Введите пароль ключа: ")
		if err != nil {
			return err
		}
		confirm, err := cli.ReadPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("пароли не совпадают")
		}

		if strength := crypto.CheckPasswordStrength(password); strength == crypto.PasswordWeak && !weakOK {
			return fmt.Errorf("слишком простой пароль (%s): минимум 8 символов и три класса символов, или --allow-weak", strength)
		}

		var id *crypto.Identity
		if importKey != "" {
			id, err = crypto.IdentityFromHex(importKey)
			if err != nil {
				return err
			}
			err = ks.Import(password, id)
		} else {
			id, err = ks.Generate(password)
		}
		if err != nil {
			return fmt.Errorf("ошибка создания ключа: %w", err)
		}

		if err := ks.SaveSession(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Не удалось сохранить сессию: %v\n", err)
		}

		fmt.Printf("✓ Ключ сохранен: %s\n", ks.Path())
		fmt.Printf("✓ Адрес: %s\n", id.Address())

		fmt.Println("Проверка relayer...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if _, err := app.Connect(ctx, id); err != nil {
			return err
		}
		if status, loadErr := app.InstanceStatus(); loadErr != nil {
			fmt.Printf("⚠️  Relayer недоступен (%s): %v\n", status, loadErr)
			fmt.Println("Операции записи будут отключены, пока узел не станет доступен.")
		} else {
			fmt.Println("✓ Relayer доступен")
		}

		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Создайте демо-запись: maskedvaccine record demo")
		fmt.Println("2. Выдайте грант проверяющему: maskedvaccine grant authorize <адрес>")

		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Завершить сессию: следующий запуск спросит пароль",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}
		app.Keystore().Lock()
		if err := app.Keystore().ClearSession(); err != nil {
			return err
		}
		fmt.Println("✓ Сессия завершена")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&importKey, "import-key", "", "импортировать существующий приватный ключ (hex)")
	initCmd.Flags().BoolVar(&weakOK, "allow-weak", false, "разрешить простой пароль")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lockCmd)

	// Добавляем команды работы с записями
	rootCmd.AddCommand(record.RecordCmd)
	record.RecordCmd.AddCommand(record.CreateCmd)
	record.RecordCmd.AddCommand(record.DemoCmd)
	record.RecordCmd.AddCommand(record.ListCmd)
	record.RecordCmd.AddCommand(record.SelectCmd)
	record.RecordCmd.AddCommand(record.DecryptCmd)

	// Добавляем команды грантов
	rootCmd.AddCommand(grant.GrantCmd)
	grant.GrantCmd.AddCommand(grant.AuthorizeCmd)
	grant.GrantCmd.AddCommand(grant.SelfCmd)
	grant.GrantCmd.AddCommand(grant.RequestCmd)
}
