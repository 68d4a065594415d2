// Package dunning holds the escalation state of the dunning run: the level
// of each tenant, the static per-level configuration, fee overrides and
// payment deadlines.
package dunning

import (
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/shopspring/decimal"
)

// Level is the canonical escalation stage. Numeric levels are canonical
// throughout the codebase; legacy string codes are converted exactly once
// at LevelFromCode.
type Level int

const (
	Reminder     Level = 1 // Zahlungserinnerung
	FirstNotice  Level = 2 // 1. Mahnung
	SecondNotice Level = 3 // 2. Mahnung
)

// Valid reports whether l is a known escalation stage.
func (l Level) Valid() bool {
	return l >= Reminder && l <= SecondNotice
}

// Config is the static configuration of one escalation stage.
type Config struct {
	Name         string
	Icon         string
	Color        [3]int // RGB for the letter heading
	StatutoryFee decimal.Decimal
	DeadlineDays int
}

var levelConfigs = map[Level]Config{
	Reminder: {
		Name:         "Zahlungserinnerung",
		Icon:         "🔔",
		Color:        [3]int{0, 102, 153},
		StatutoryFee: decimal.Zero,
		DeadlineDays: 14,
	},
	FirstNotice: {
		Name:         "1. Mahnung",
		Icon:         "⚠️",
		Color:        [3]int{204, 102, 0},
		StatutoryFee: decimal.NewFromFloat(5.00),
		DeadlineDays: 10,
	},
	SecondNotice: {
		Name:         "2. Mahnung",
		Icon:         "⛔",
		Color:        [3]int{178, 0, 0},
		StatutoryFee: decimal.NewFromFloat(10.00),
		DeadlineDays: 7,
	},
}

// LevelConfig returns the static configuration for a level. Unknown levels
// fall back to the reminder configuration.
func LevelConfig(l Level) Config {
	if cfg, ok := levelConfigs[l]; ok {
		return cfg
	}
	return levelConfigs[Reminder]
}

// legacyCodes maps the string identifiers used by older exports onto
// canonical levels. 'E' (Erinnerung) and 'M1' both denote the reminder
// stage.
var legacyCodes = map[string]Level{
	"E":  Reminder,
	"M1": Reminder,
	"M2": FirstNotice,
	"M3": SecondNotice,
}

// LevelFromCode converts a legacy string code into a canonical level. This
// is the single conversion boundary; string codes must not travel past it.
func LevelFromCode(code string) (Level, error) {
	l, ok := legacyCodes[code]
	if !ok {
		return 0, fmt.Errorf("unknown dunning level code %q", code)
	}
	return l, nil
}

// ---------------------------------------------------------------------------
// Payment deadline
// ---------------------------------------------------------------------------

// provinceHolidays maps German state abbreviations to their holiday slices.
var provinceHolidays = map[string][]*cal.Holiday{
	"BW": de.HolidaysBW,
	"BY": de.HolidaysBY,
	"BE": de.HolidaysBE,
	"BB": de.HolidaysBB,
	"HB": de.HolidaysHB,
	"HH": de.HolidaysHH,
	"HE": de.HolidaysHE,
	"MV": de.HolidaysMV,
	"NI": de.HolidaysNI,
	"NW": de.HolidaysNW,
	"RP": de.HolidaysRP,
	"SL": de.HolidaysSL,
	"SN": de.HolidaysSN,
	"ST": de.HolidaysST,
	"SH": de.HolidaysSH,
	"TH": de.HolidaysTH,
}

// businessCalendar creates a calendar with German holidays for the given
// province, defaulting to Baden-Württemberg.
func businessCalendar(province string) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	holidays, ok := provinceHolidays[province]
	if !ok {
		holidays = de.HolidaysBW
	}
	c.AddHoliday(holidays...)
	return c
}

// Deadline computes the payment deadline for a level: now plus the level's
// deadline days, rolled forward to the next business day in the given
// province. The roll only ever moves the deadline later, so the statutory
// minimum period is preserved.
func Deadline(l Level, now time.Time, province string) time.Time {
	d := now.AddDate(0, 0, LevelConfig(l).DeadlineDays)
	c := businessCalendar(province)
	for !c.IsWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
