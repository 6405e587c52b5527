package grant

import (
	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

var AuthorizeCmd = &cobra.Command{
	Use:   "authorize <адрес проверяющего>",
	Short: "Выдать проверяющему грант на поля записи",
	Long: `Выдает грант на поля записи. Повторный грант тому же проверяющему
заменяет предыдущий. Выдать грант может только владелец записи.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		id, err := target(session)
		if err != nil {
			return err
		}
		scope, err := vaccine.ParseScope(scopeFlag)
		if err != nil {
			return err
		}

		d := ttl
		if d == 0 {
			d = app.Config().GrantTTL
		}

		g, err := session.Authorize(cmd.Context(), id, args[0], scope, d)
		if err != nil {
			return cli.Explain(session, err)
		}

		return cli.Print(g, func() { printGrant(g) })
	},
}

var SelfCmd = &cobra.Command{
	Use:   "self",
	Short: "Выдать грант самому себе",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		id, err := target(session)
		if err != nil {
			return err
		}
		scope, err := vaccine.ParseScope(scopeFlag)
		if err != nil {
			return err
		}

		d := ttl
		if d == 0 {
			d = app.Config().GrantTTL
		}

		g, err := session.AuthorizeSelf(cmd.Context(), id, scope, d)
		if err != nil {
			return cli.Explain(session, err)
		}

		return cli.Print(g, func() { printGrant(g) })
	},
}

func init() {
	for _, c := range []*cobra.Command{AuthorizeCmd, SelfCmd} {
		// 0b11111 - поля по умолчанию при выдаче гранта
		c.Flags().StringVar(&scopeFlag, "scope", "0b11111", "поля гранта")
		c.Flags().DurationVar(&ttl, "ttl", 0, "срок действия гранта (по умолчанию GRANT_TTL)")
	}
}
