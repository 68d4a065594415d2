// Package stats aggregates arrears figures across the tenant store and
// exports them as an Excel workbook.
package stats

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"mahnwesen/internal/dunning"
	"mahnwesen/internal/ledger"
)

// PortfolioStats are the aggregate figures of one portfolio tag.
type PortfolioStats struct {
	Portfolio     string
	Tenants       int
	InArrears     int
	TotalArrears  decimal.Decimal
	TotalCredit   decimal.Decimal
	LevelCounts   [4]int // indexed by dunning.Level, 0 unused
}

// Aggregate computes per-portfolio statistics over all tenants.
func Aggregate(store *ledger.Store, book *dunning.Book) []PortfolioStats {
	byTag := make(map[string]*PortfolioStats)

	for _, t := range store.Tenants() {
		ps := byTag[t.Portfolio]
		if ps == nil {
			ps = &PortfolioStats{
				Portfolio:    t.Portfolio,
				TotalArrears: decimal.Zero,
				TotalCredit:  decimal.Zero,
			}
			byTag[t.Portfolio] = ps
		}

		ps.Tenants++
		total := store.TenantTotal(t)
		if total.IsNegative() {
			ps.InArrears++
			ps.TotalArrears = ps.TotalArrears.Add(total.Abs())
		} else {
			ps.TotalCredit = ps.TotalCredit.Add(total)
		}

		if lv := book.Level(t.ID); lv.Valid() {
			ps.LevelCounts[lv]++
		}
	}

	out := make([]PortfolioStats, 0, len(byTag))
	for _, ps := range byTag {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Portfolio < out[j].Portfolio })
	return out
}

var workbookHeader = []interface{}{
	"Objekt", "Mieter", "Mieter im Rückstand", "Rückstand gesamt",
	"Guthaben gesamt", "Erinnerungen", "1. Mahnungen", "2. Mahnungen",
}

// WriteWorkbook exports the statistics to an .xlsx file with one summary
// sheet.
func WriteWorkbook(path string, stats []PortfolioStats) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &workbookHeader); err != nil {
		return fmt.Errorf("failed to write workbook header: %w", err)
	}

	for i, ps := range stats {
		row := []interface{}{
			ps.Portfolio,
			ps.Tenants,
			ps.InArrears,
			ps.TotalArrears.InexactFloat64(),
			ps.TotalCredit.InexactFloat64(),
			ps.LevelCounts[dunning.Reminder],
			ps.LevelCounts[dunning.FirstNotice],
			ps.LevelCounts[dunning.SecondNotice],
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write workbook row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
