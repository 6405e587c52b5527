package grant

import (
	"fmt"
	"time"

	"maskedvaccine/internal/domain/vaccine"

	"github.com/spf13/cobra"
)

var (
	recordID  uint64
	scopeFlag string
	ttl       time.Duration
)

// GrantCmd - родительская команда грантов и запросов на расшифровку
var GrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Гранты проверяющим и запросы на расшифровку",
	Long: `Scope задается как "all", список полей через запятую
(type,manufacturer,date,site,batch,doctor,notes) или числовая маска
("0b11", "0x7f", "31").`,
}

// target возвращает запись из --record или активную
func target(session *vaccine.Session) (uint64, error) {
	if recordID != 0 {
		return recordID, nil
	}
	if id := session.Active(); id != 0 {
		return id, nil
	}
	return 0, fmt.Errorf("нет активной записи: укажите --record или выполните record select <id>")
}

func printGrant(g *vaccine.Grant) {
	fmt.Printf("✓ Грант на запись #%d выдан\n", g.RecordID)
	fmt.Printf("  проверяющий: %s\n", g.Verifier)
	fmt.Printf("  scope:       %s\n", g.Scope)
	fmt.Printf("  действует до: %s\n", g.Expiry.UTC().Format(time.RFC3339))
	fmt.Printf("  tag:         %s\n", g.ScopeTag)
	fmt.Printf("  tx:          %s\n", g.TxHash)
}

func init() {
	GrantCmd.PersistentFlags().Uint64Var(&recordID, "record", 0, "id записи (по умолчанию активная)")
}
