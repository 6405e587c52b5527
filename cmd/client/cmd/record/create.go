package record

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

var payload vaccine.Payload

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать запись о вакцинации",
	Long: `Создание новой записи о вакцинации.

Обязательные поля: тип вакцины, производитель, дата (YYYY-MM-DD),
место вакцинации. Незаданные флагами поля запрашиваются интерактивно.
Запись шифруется локально, открытый текст сохраняется только в кэше.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		p := payload
		in := bufio.NewScanner(os.Stdin)
		ask(in, "Тип вакцины", &p.VaccineType)
		ask(in, "Производитель", &p.Manufacturer)
		ask(in, "Номер партии (Enter чтобы пропустить)", &p.BatchNumber)
		ask(in, "Дата вакцинации (YYYY-MM-DD)", &p.Date)
		ask(in, "Место вакцинации", &p.Site)
		ask(in, "Врач (Enter чтобы пропустить)", &p.Doctor)
		ask(in, "Заметки (Enter чтобы пропустить)", &p.Notes)

		created, err := session.CreateRecord(cmd.Context(), p)
		if err != nil {
			return cli.Explain(session, err)
		}

		if err := app.SaveActive(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
		}

		return cli.Print(created, func() { printCreated(created) })
	},
}

// ask спрашивает значение, если оно не задано флагом
func ask(in *bufio.Scanner, prompt string, dst *string) {
	if *dst != "" || cli.JSONOutput {
		return
	}
	fmt.Printf("%s: ", prompt)
	if in.Scan() {
		*dst = strings.TrimSpace(in.Text())
	}
}

func init() {
	CreateCmd.Flags().StringVar(&payload.VaccineType, "type", "", "тип вакцины")
	CreateCmd.Flags().StringVar(&payload.Manufacturer, "manufacturer", "", "производитель")
	CreateCmd.Flags().StringVar(&payload.BatchNumber, "batch", "", "номер партии")
	CreateCmd.Flags().StringVar(&payload.Date, "date", "", "дата вакцинации, YYYY-MM-DD")
	CreateCmd.Flags().StringVar(&payload.Site, "site", "", "место вакцинации")
	CreateCmd.Flags().StringVar(&payload.Doctor, "doctor", "", "врач")
	CreateCmd.Flags().StringVar(&payload.Notes, "notes", "", "заметки")
}
