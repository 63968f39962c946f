package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shiftctl",
	Short: "Утилиты shiftboard: длительности, расписания, расчёт оплаты, токены",
	Long: `shiftctl - консольный помощник для разработки и поддержки shiftboard.

Команды работают с теми же функциями домена, что и HTTP API,
но без базы данных: расписание и ставка читаются из YAML файла.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env необязателен, переменные окружения имеют приоритет.
		_ = godotenv.Load(".env")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// writeJSON печатает результат команды с отступами.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
