package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mahnwesen/internal/config"
	"mahnwesen/internal/dunning"
	"mahnwesen/internal/layout"
	"mahnwesen/internal/ledger"
)

var (
	flagCSV    string
	flagLevels string
	flagOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate dunning letters for all tenants of a ledger export",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		store, err := ledger.IngestFile(flagCSV)
		if err != nil {
			return err
		}

		book, err := loadBook(flagLevels)
		if err != nil {
			return err
		}

		outDir := flagOut
		if outDir == "" {
			outDir = cfg.OutputDir
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		asm := layout.NewAssembler(cfg, store, book, layout.NewAssetCache())
		runner := layout.NewRunner(asm, store)
		result := runner.GenerateAll(cmd.Context(), outDir)

		fmt.Printf("Erstellt: %d, Fehlgeschlagen: %d\n", result.Successful, result.Failed)
		for _, e := range result.Errors {
			fmt.Printf("  Mieter %s: %v\n", e.TenantID, e.Err)
		}
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d letters failed", result.Failed, result.Successful+result.Failed)
		}
		return nil
	},
}

// loadBook reads the optional dunning-state file. Each line assigns a
// tenant a level and optionally a manual fee:
//
//	4711;M2;10,00
//
// Level codes are the legacy string identifiers; they are converted to
// canonical levels here and nowhere else.
func loadBook(path string) (*dunning.Book, error) {
	book := dunning.NewBook()
	if path == "" {
		return book, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open levels file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read levels file: %w", err)
		}
		line++
		if len(row) < 2 {
			return nil, fmt.Errorf("levels file line %d: expected at least 2 fields", line)
		}

		id := strings.TrimSpace(row[0])
		level, err := dunning.LevelFromCode(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("levels file line %d: %w", line, err)
		}
		if err := book.SetLevel(id, level); err != nil {
			return nil, fmt.Errorf("levels file line %d: %w", line, err)
		}

		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			fee, err := ledger.ParseAmount(row[2])
			if err != nil {
				return nil, fmt.Errorf("levels file line %d: %w", line, err)
			}
			if err := book.SetFeeOverride(id, fee); err != nil {
				return nil, fmt.Errorf("levels file line %d: %w", line, err)
			}
		}
	}
	return book, nil
}

func init() {
	generateCmd.Flags().StringVar(&flagCSV, "csv", "", "path to the rent-ledger CSV export (required)")
	generateCmd.Flags().StringVar(&flagLevels, "levels", "", "optional dunning-state file (id;level[;fee])")
	generateCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output directory (defaults to the configured one)")
	generateCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(generateCmd)
}
