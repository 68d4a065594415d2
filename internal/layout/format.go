package layout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

// dePrinter localizes numbers to German conventions (1.234,56).
var dePrinter = message.NewPrinter(language.German)

// FormatAmount formats a Euro amount with German separators, e.g.
// "1.234,56 EUR".
func FormatAmount(d decimal.Decimal) string {
	return dePrinter.Sprintf("%.2f EUR", d.InexactFloat64())
}

// formatNumber formats a bare amount without the currency suffix.
func formatNumber(d decimal.Decimal) string {
	return dePrinter.Sprintf("%.2f", d.InexactFloat64())
}

// FormatDate formats a date as DD.MM.YYYY (German format).
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

var germanMonths = [12]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatLongDate formats a date as a long German date, e.g. "2. Januar 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

// ---------------------------------------------------------------------------
// Filenames
// ---------------------------------------------------------------------------

var umlautReplacer = strings.NewReplacer(
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9. _-]+`)
var multiSpace = regexp.MustCompile(`\s+`)

// sanitizeFilename reduces a name fragment to a filesystem-safe character
// set, transliterating umlauts rather than dropping them.
func sanitizeFilename(s string) string {
	s = umlautReplacer.Replace(s)
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// buildFilename produces the deterministic output filename:
// {property}_{tenantName}_{levelName} vom {date}_{tenantId}[_{feeSuffix}].pdf
func buildFilename(property, tenantName, levelName string, date time.Time, tenantID string, feeOverride *decimal.Decimal) string {
	name := fmt.Sprintf("%s_%s_%s vom %s_%s",
		sanitizeFilename(property),
		sanitizeFilename(tenantName),
		sanitizeFilename(levelName),
		FormatDate(date),
		sanitizeFilename(tenantID),
	)
	if feeOverride != nil {
		name += "_Gebuehr" + feeOverride.StringFixed(2)
	}
	return name + ".pdf"
}
