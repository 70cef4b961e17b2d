package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/external/stooq"
)

var (
	fetchFrom string
	fetchTo   string
	fetchOut  string
)

// fetchCmd downloads a daily price panel from stooq
var fetchCmd = &cobra.Command{
	Use:   "fetch [symbols...]",
	Short: "Download daily prices into a panel CSV",
	Long: `Downloads daily close and volume history for the given symbols from
stooq and writes them as a panel CSV usable as DATA_CSV_PATH.

Example:
  go run ./cmd/factorlab fetch aapl.us msft.us spy.us \
    --from 2024-01-02 --to 2025-12-30 --out ./data/daily_prices.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "./data/daily_prices.csv", "output CSV path")
}

func runFetch(cmd *cobra.Command, args []string) error {
	_, log, err := initRuntime()
	if err != nil {
		return err
	}

	from, to, err := parseRange(fetchFrom, fetchTo)
	if err != nil {
		return err
	}

	client := stooq.New(log)
	panel, err := client.FetchPanel(context.Background(), args, from, to)
	if err != nil {
		return err
	}

	f, err := os.Create(fetchOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", fetchOut, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "code", "close", "volume"}); err != nil {
		return err
	}

	closes, err := panel.ColumnValues("close")
	if err != nil {
		return err
	}
	volumes, err := panel.ColumnValues("volume")
	if err != nil {
		return err
	}
	for i, key := range panel.Keys() {
		rec := []string{
			key.Date.Format("2006-01-02"),
			key.Code,
			formatFloat(closes[i]),
			formatFloat(volumes[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	fmt.Printf("wrote %d rows for %d symbols to %s\n", panel.Len(), len(args), fetchOut)
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
