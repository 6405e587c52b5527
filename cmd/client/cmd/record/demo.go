package record

import (
	"fmt"
	"os"

	"maskedvaccine/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var DemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Создать демо-запись",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		created, err := session.CreateDemoRecord(cmd.Context())
		if err != nil {
			return cli.Explain(session, err)
		}

		if err := app.SaveActive(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
		}

		return cli.Print(created, func() { printCreated(created) })
	},
}
