package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mahnwesen/internal/logger"
)

var version = "1.0.0"

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "mahnwesen",
	Short:   "Mahnwesen - generates dunning letters from rent-ledger exports",
	Long: `Mahnwesen turns a CSV export of rent-ledger records into per-tenant
dunning letters (Zahlungserinnerung, 1. Mahnung, 2. Mahnung) as paginated
PDF documents, optionally mails them, and exports arrears statistics.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := logger.DefaultConfig()
		cfg.Level = flagLogLevel
		return logger.Setup(cfg)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config.json", "path to the profile configuration")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}
