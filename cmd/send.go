package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mahnwesen/internal/config"
	"mahnwesen/internal/layout"
	"mahnwesen/internal/ledger"
	"mahnwesen/internal/logger"
	"mahnwesen/internal/mailer"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Generate dunning letters and email them to the tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cfg.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is not configured")
		}

		store, err := ledger.IngestFile(flagCSV)
		if err != nil {
			return err
		}
		book, err := loadBook(flagLevels)
		if err != nil {
			return err
		}

		asm := layout.NewAssembler(cfg, store, book, layout.NewAssetCache())
		m := mailer.New(cfg.SMTP, cfg.Profile.Email)
		log := logger.WithComponent("send")

		// Same ordering discipline as batch generation: one letter at a
		// time, a short pause between sends.
		sent, failed := 0, 0
		for i, t := range store.Selected() {
			if i > 0 {
				time.Sleep(250 * time.Millisecond)
			}

			letter, err := asm.Assemble(cmd.Context(), t, book.Level(t.ID))
			if err == nil {
				err = m.Send(t.Email, letter)
			}
			if err != nil {
				log.Error().Err(err).Str("tenant", t.ID).Msg("sending failed")
				failed++
				continue
			}
			sent++
		}

		fmt.Printf("Versendet: %d, Fehlgeschlagen: %d\n", sent, failed)
		if failed > 0 {
			return fmt.Errorf("%d letters could not be sent", failed)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&flagCSV, "csv", "", "path to the rent-ledger CSV export (required)")
	sendCmd.Flags().StringVar(&flagLevels, "levels", "", "optional dunning-state file (id;level[;fee])")
	sendCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(sendCmd)
}
