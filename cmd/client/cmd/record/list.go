package record

import (
	"fmt"
	"os"
	"text/tabwriter"

	"maskedvaccine/cmd/client/cmd/cli"
	"maskedvaccine/internal/app/client"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Найти свои записи в ledger",
	Long: `Ищет события RecordCreated, где создатель - текущий подписант.
Последняя найденная запись становится активной.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, session, err := cli.Connect(cmd)
		if err != nil {
			return err
		}

		ids := session.LoadMyRecords(cmd.Context())
		if len(ids) > 0 {
			if err := app.SaveActive(); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
			}
		}

		type item struct {
			ID     uint64 `json:"id"`
			Active bool   `json:"active"`
			Cached bool   `json:"cached"`
		}
		items := make([]item, 0, len(ids))
		for _, id := range ids {
			_, cached := session.Cache().Get(id)
			items = append(items, item{ID: id, Active: id == session.Active(), Cached: cached})
		}

		stats, err := app.CacheStats(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
		}

		out := struct {
			Records []item            `json:"records"`
			Cache   client.CacheStats `json:"cache"`
		}{Records: items, Cache: stats}

		return cli.Print(out, func() {
			if err == nil {
				fmt.Printf("Локальный кэш: %s, записей: %d\n", stats.Backend, stats.Records)
			}
			if len(items) == 0 {
				fmt.Println(session.Status())
				return
			}

			fmt.Printf("Найдено записей: %d\n\n", len(items))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tАКТИВНАЯ\tВ КЭШЕ")
			for _, it := range items {
				fmt.Fprintf(w, "#%d\t%s\t%s\n", it.ID, mark(it.Active), mark(it.Cached))
			}
			w.Flush()
		})
	},
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return ""
}
