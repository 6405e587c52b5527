package grant

import (
	"fmt"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

var requestScope string

var RequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Запросить расшифровку полей записи",
	Long: `Отправляет запрос на расшифровку. Ledger принимает запрос, только если
у вас есть действующий грант, покрывающий все запрошенные поля.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		scope, err := vaccine.ParseScope(requestScope)
		if err != nil {
			return err
		}

		if recordID != 0 {
			session.SelectRecord(recordID)
		}
		if !session.CanRequestDecryption() {
			return cli.Disabled(session, "запрос на расшифровку")
		}

		req, err := session.RequestActiveDecryption(cmd.Context(), scope)
		if err != nil {
			return cli.Explain(session, err)
		}

		return cli.Print(req, func() {
			fmt.Printf("✓ Запрос на расшифровку записи #%d отправлен\n", req.RecordID)
			fmt.Printf("  scope: %s\n", req.Scope)
			fmt.Printf("  tag:   %s\n", req.ScopeTag)
			fmt.Printf("  tx:    %s\n", req.TxHash)
		})
	},
}

func init() {
	RequestCmd.Flags().StringVar(&requestScope, "scope", "0b11", "запрашиваемые поля")
}
