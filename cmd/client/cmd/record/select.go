package record

import (
	"fmt"

	"maskedvaccine/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var SelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Сделать запись активной",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		id, err := parseID(args, session)
		if err != nil {
			return err
		}

		session.SelectRecord(id)
		if err := app.SaveActive(); err != nil {
			return err
		}

		fmt.Println(session.Status())
		return nil
	},
}
