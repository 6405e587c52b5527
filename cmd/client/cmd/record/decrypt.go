package record

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

var DecryptCmd = &cobra.Command{
	Use:   "decrypt [id]",
	Short: "Показать содержимое записи",
	Long: `Восстанавливает содержимое записи по уровням:
	EXACT_CACHE   - запись есть в локальном кэше
	HASH_MATCHED  - в кэше есть запись с тем же provider hash
	METADATA_ONLY - только метаданные события RecordCreated
	UNRESOLVED    - событие создания не найдено

Без id используется активная запись, указанный id становится активным
до конца команды.`,
	Args: cobra.MaximumNArgs(1),
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
		if !session.CanDecrypt() {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", cli.Disabled(session, "полный вывод записи"))
		}

		res := session.DecryptActive(cmd.Context())

		return cli.Print(res, func() {
			printResult(res)
			if rec, err := app.EncryptedRecord(cmd.Context(), id); err == nil {
				fmt.Printf("\nВладелец: %s\nHandle:   %s\nСоздана:  %s\n",
					rec.Owner, rec.Handle, time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339))
			}
		})
	},
}

func printResult(res *vaccine.Result) {
	verified := "не подтверждено"
	if res.Verified {
		verified = "подтверждено"
	}
	fmt.Printf("Запись #%d: %s (%s)\n", res.RecordID, res.Tier, verified)
	fmt.Println(res.Message)
	if res.Tier == vaccine.TierUnresolved {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Тип вакцины\t%s\n", res.Fields.VaccineType)
	fmt.Fprintf(w, "Производитель\t%s\n", res.Fields.Manufacturer)
	fmt.Fprintf(w, "Партия\t%s\n", res.Fields.BatchNumber)
	fmt.Fprintf(w, "Дата\t%s\n", res.Fields.Date)
	fmt.Fprintf(w, "Место\t%s\n", res.Fields.Site)
	fmt.Fprintf(w, "Врач\t%s\n", res.Fields.Doctor)
	fmt.Fprintf(w, "Заметки\t%s\n", res.Fields.Notes)
	if res.Commitment != "" {
		fmt.Fprintf(w, "Commitment\t%s\n", res.Commitment)
	}
	w.Flush()
}
