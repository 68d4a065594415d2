package dunning

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// feeRange validates manual fee overrides at the edit boundary. The engine
// itself never re-validates; out-of-range values cannot enter the book.
type feeRange struct {
	Fee float64 `validate:"gte=0,lte=999.99"`
}

// Book tracks the per-tenant dunning state of one run: escalation level
// and optional manual fee override.
type Book struct {
	levels    map[string]Level
	overrides map[string]decimal.Decimal
	validate  *validator.Validate
}

// NewBook returns an empty dunning book. Tenants without an entry are at
// the reminder stage.
func NewBook() *Book {
	return &Book{
		levels:    make(map[string]Level),
		overrides: make(map[string]decimal.Decimal),
		validate:  validator.New(),
	}
}

// Level returns the escalation stage of a tenant, defaulting to Reminder.
func (b *Book) Level(tenantID string) Level {
	if l, ok := b.levels[tenantID]; ok {
		return l
	}
	return Reminder
}

// SetLevel records the escalation stage of a tenant.
func (b *Book) SetLevel(tenantID string, l Level) error {
	if !l.Valid() {
		return fmt.Errorf("invalid dunning level %d", l)
	}
	b.levels[tenantID] = l
	return nil
}

// SetFeeOverride records a manual fee for a tenant. The value must lie in
// [0, 999.99].
func (b *Book) SetFeeOverride(tenantID string, fee decimal.Decimal) error {
	if err := b.validate.Struct(feeRange{Fee: fee.InexactFloat64()}); err != nil {
		return fmt.Errorf("fee override %s out of range: %w", fee.StringFixed(2), err)
	}
	b.overrides[tenantID] = fee
	return nil
}

// ClearFeeOverride removes a manual fee; the tenant falls back to the CSV
// fee or the statutory default.
func (b *Book) ClearFeeOverride(tenantID string) {
	delete(b.overrides, tenantID)
}

// FeeOverride returns the manual fee for a tenant, if set.
func (b *Book) FeeOverride(tenantID string) (decimal.Decimal, bool) {
	fee, ok := b.overrides[tenantID]
	return fee, ok
}

// ResolveFee determines the dunning fee for one letter. Precedence:
// level 1 is always zero, then the manual override, then the CSV-derived
// fee, then the level's statutory default. The paths never mix.
func (b *Book) ResolveFee(tenantID string, l Level, csvFee decimal.Decimal, hasCSVFee bool) decimal.Decimal {
	if l == Reminder {
		return decimal.Zero
	}
	if fee, ok := b.overrides[tenantID]; ok {
		return fee
	}
	if hasCSVFee {
		return csvFee
	}
	return LevelConfig(l).StatutoryFee
}
