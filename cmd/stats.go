package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mahnwesen/internal/ledger"
	"mahnwesen/internal/stats"
)

var flagStatsOut string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Export per-portfolio arrears statistics to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := ledger.IngestFile(flagCSV)
		if err != nil {
			return err
		}

		book, err := loadBook(flagLevels)
		if err != nil {
			return err
		}

		aggregated := stats.Aggregate(store, book)
		if err := stats.WriteWorkbook(flagStatsOut, aggregated); err != nil {
			return err
		}

		fmt.Printf("Statistik geschrieben: %s (%d Objekte)\n", flagStatsOut, len(aggregated))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&flagCSV, "csv", "", "path to the rent-ledger CSV export (required)")
	statsCmd.Flags().StringVar(&flagLevels, "levels", "", "optional dunning-state file (id;level[;fee])")
	statsCmd.Flags().StringVarP(&flagStatsOut, "out", "o", "statistik.xlsx", "output workbook path")
	statsCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(statsCmd)
}
