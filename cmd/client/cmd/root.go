package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/app/client"
	"maskedvaccine/internal/app/client/config"
	"maskedvaccine/internal/utils/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	ledgerURL string
	chainID   uint64
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "maskedvaccine",
	Short: "MaskedVaccine - клиент зашифрованных записей о вакцинации",
	Long: `MaskedVaccine хранит запись о вакцинации в ledger в зашифрованном виде.

Владелец создает запись и выдает проверяющим гранты на набор полей
(scope). Проверяющий отправляет запрос на расшифровку, ledger решает,
покрывает ли грант запрошенные поля. Открытый текст записи остается
только в локальном кэше владельца.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if ledgerURL != "" {
		cfg.LedgerURL = ledgerURL
	}
	if chainID != 0 {
		cfg.ChainID = chainID
	}

	log := logger.New(cfg.Env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(cli.WithApp(cmd.Context(), app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Ищем конфиг в стандартных местах
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".maskedvaccine"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return config.MustLoad(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml)")
	rootCmd.PersistentFlags().StringVar(&ledgerURL, "ledger", "", "URL узла ledger")
	rootCmd.PersistentFlags().Uint64Var(&chainID, "chain-id", 0, "id сети")
	rootCmd.PersistentFlags().BoolVar(&cli.JSONOutput, "json", false, "вывод в формате JSON")
}
