package record

import (
	"fmt"
	"strconv"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

// RecordCmd - родительская команда для всех операций с записями
var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Управление записями о вакцинации",
	Long:  `Создание, поиск, выбор и расшифровка записей о вакцинации.`,
}

// parseID разбирает id записи из аргумента или берет активную запись
func parseID(args []string, session *vaccine.Session) (uint64, error) {
	if len(args) == 0 {
		id := session.Active()
		if id == 0 {
			return 0, fmt.Errorf("нет активной записи: укажите id или выполните record select <id>")
		}
		return id, nil
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("неверный id записи: %q", args[0])
	}
	return id, nil
}

func printCreated(c *vaccine.Created) {
	if c.RecordID != 0 {
		fmt.Printf("✓ Запись #%d создана\n", c.RecordID)
	} else {
		fmt.Println("✓ Транзакция принята, но id записи не прочитан: выполните record list")
	}
	fmt.Printf("  tx:            %s (блок %d)\n", c.TxHash, c.BlockNumber)
	fmt.Printf("  provider hash: %s\n", c.ProviderHash)
	fmt.Printf("  handle:        %s\n", c.Handle)
}
