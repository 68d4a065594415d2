package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one billing-period line item of a tenant's rent ledger.
// Records are immutable once parsed except for the Enabled flag, which the
// caller toggles to exclude single positions from letters and totals.
type Record struct {
	Period   string // fixed-width year-month code, e.g. "202401"
	CostType string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Enabled  bool
}

// Difference returns credit minus debit. Negative values are arrears.
func (r Record) Difference() decimal.Decimal {
	return r.Credit.Sub(r.Debit)
}

// ParseAmount parses a decimal amount from a locale string as found in
// ledger exports. Both German ("1.234,56") and plain ("1234.56") forms are
// accepted; an empty string parses as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(clean, "€")
	clean = strings.TrimSuffix(clean, "EUR")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return decimal.Zero, nil
	}

	// German exports use '.' for thousands and ',' for decimals. If a
	// comma is present it is the decimal separator and every dot is a
	// grouping character.
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
