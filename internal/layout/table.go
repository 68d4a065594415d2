package layout

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"mahnwesen/internal/dunning"
	"mahnwesen/internal/ledger"
)

// ---------------------------------------------------------------------------
// Ledger table layout engine
// ---------------------------------------------------------------------------

const (
	maxRowsPerPage  = 29
	rowHeight       = 6.0
	headerRowHeight = 7.0
	// Space kept free below the last row for the summary block, so the
	// summary never ends up alone on a page without at least one row.
	summaryReserve = 30.0
	columnGap      = 2.0
	cellPad        = 1.0
)

// Proportional column weights: period, cost type, debit, credit, difference.
var columnWeights = [5]float64{0.12, 0.50, 0.12, 0.12, 0.14}

var columnTitles = [5]string{"Periode", "Kostenart", "Soll", "Haben", "Differenz"}

// column is one computed column rectangle.
type column struct {
	x, w  float64
	align string
}

// columnRects derives the five column rectangles from the usable width.
// Pure in the page width; the width is constant per document but the
// routine is re-derivable at any time.
func columnRects(contentWidth float64) [5]column {
	var cols [5]column
	usable := contentWidth - 4*columnGap
	x := marginLeft
	for i, w := range columnWeights {
		align := "L"
		if i >= 2 {
			align = "R" // numeric columns
		}
		cols[i] = column{x: x, w: usable * w, align: align}
		x += usable*w + columnGap
	}
	return cols
}

// TableResult carries the outcome of the table layout: the cursor position,
// pagination metadata and the computed totals that the trailing-text and
// banking sections consume without recomputation.
type TableResult struct {
	FinalY    float64
	Pages     int // pages the table occupied, including its first
	Positions int // rows drawn

	Net       decimal.Decimal // signed sum of credit-debit
	Arrears   decimal.Decimal // absolute amount owed; zero for credit balances
	Fee       decimal.Decimal
	AmountDue decimal.Decimal
}

// qualifyingRecords filters enabled records with a non-zero difference and
// sorts them ascending by period. The sort is a lexicographic string
// compare on purpose: periods are fixed-width YYYYMM codes and downstream
// page-break timing depends on this exact traversal order.
func qualifyingRecords(records []*ledger.Record) []*ledger.Record {
	var out []*ledger.Record
	for _, r := range records {
		if r.Enabled && !r.Difference().IsZero() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// layoutTable draws the ledger table starting at the current cursor,
// breaking pages internally as needed, and finishes with the summary
// block. The resolved fee and amount due are returned, not published
// through shared state.
func layoutTable(rc *renderContext) (TableResult, error) {
	doc := rc.doc
	if doc == nil || doc.pdf == nil {
		return TableResult{}, fmt.Errorf("no document to lay out")
	}

	records := qualifyingRecords(rc.tenant.Records)
	cols := columnRects(doc.contentWidth())

	if !doc.fits(headerRowHeight + rowHeight + summaryReserve) {
		doc.addPage()
	}
	drawTableHeader(doc, cols)

	res := TableResult{Pages: 1, Net: decimal.Zero}
	rowsOnPage := 0

	for _, r := range records {
		if rowsOnPage >= maxRowsPerPage || !doc.fits(rowHeight+summaryReserve) {
			doc.addPage()
			drawTableHeader(doc, cols)
			rowsOnPage = 0
			res.Pages++
		}
		drawRow(doc, cols, r)
		res.Net = res.Net.Add(r.Difference())
		rowsOnPage++
		res.Positions++
	}

	drawSummary(rc, cols, &res)
	res.FinalY = doc.y
	if err := doc.pdf.Error(); err != nil {
		return res, fmt.Errorf("table rendering failed: %w", err)
	}
	return res, nil
}

// drawTableHeader draws the column titles and the rule below them.
func drawTableHeader(d *document, cols [5]column) {
	pdf := d.pdf
	pdf.SetFont(baseFont, "B", 9)
	for i, c := range cols {
		pdf.SetXY(c.x, d.y)
		pdf.CellFormat(c.w, headerRowHeight, d.tr(columnTitles[i]), "", 0, c.align, false, 0, "")
	}
	pdf.SetLineWidth(0.4)
	pdf.Line(marginLeft, d.y+headerRowHeight, marginLeft+d.contentWidth(), d.y+headerRowHeight)
	pdf.SetFont(baseFont, "", 9)
	d.advance(headerRowHeight + 1)
}

// drawRow draws one ledger position. Negative differences (arrears) are
// emphasized in bold red; credits stay plain. The cost type is wrapped to
// its column, with at most two continuation lines at a reduced size.
func drawRow(d *document, cols [5]column, r *ledger.Record) {
	pdf := d.pdf
	diff := r.Difference()

	pdf.SetXY(cols[0].x, d.y)
	pdf.CellFormat(cols[0].w, rowHeight, r.Period, "", 0, cols[0].align, false, 0, "")

	costLines := pdf.SplitText(d.tr(r.CostType), cols[1].w-cellPad)
	first := ""
	if len(costLines) > 0 {
		first = costLines[0]
	}
	pdf.SetXY(cols[1].x, d.y)
	pdf.CellFormat(cols[1].w, rowHeight, first, "", 0, cols[1].align, false, 0, "")

	pdf.SetXY(cols[2].x, d.y)
	pdf.CellFormat(cols[2].w, rowHeight, formatNumber(r.Debit), "", 0, cols[2].align, false, 0, "")
	pdf.SetXY(cols[3].x, d.y)
	pdf.CellFormat(cols[3].w, rowHeight, formatNumber(r.Credit), "", 0, cols[3].align, false, 0, "")

	if diff.IsNegative() {
		pdf.SetFont(baseFont, "B", 9)
		pdf.SetTextColor(178, 0, 0)
	}
	pdf.SetXY(cols[4].x, d.y)
	pdf.CellFormat(cols[4].w, rowHeight, formatNumber(diff), "", 0, cols[4].align, false, 0, "")
	pdf.SetFont(baseFont, "", 9)
	pdf.SetTextColor(0, 0, 0)

	d.advance(rowHeight)

	// Continuation lines of the cost type, capped at two.
	if len(costLines) > 1 {
		cont := costLines[1:]
		if len(cont) > 2 {
			cont = cont[:2]
		}
		pdf.SetFont(baseFont, "", smallFontSize)
		for _, line := range cont {
			pdf.SetXY(cols[1].x, d.y)
			pdf.CellFormat(cols[1].w, smallLineHght, line, "", 0, "L", false, 0, "")
			d.advance(smallLineHght)
		}
		pdf.SetFont(baseFont, "", 9)
	}
}

// drawSummary draws the rule and the totals: net arrears or credit, the
// dunning fee when one applies, and the bold amount due.
func drawSummary(rc *renderContext, cols [5]column, res *TableResult) {
	doc := rc.doc
	pdf := doc.pdf

	if !doc.fits(summaryReserve) {
		doc.addPage()
		res.Pages++
	}

	pdf.SetLineWidth(0.4)
	pdf.Line(marginLeft, doc.y+1, marginLeft+doc.contentWidth(), doc.y+1)
	doc.advance(3)

	label := "Guthaben:"
	amount := res.Net
	if res.Net.IsNegative() {
		label = "Gesamtrückstand:"
		amount = res.Net.Abs()
		res.Arrears = amount
		res.AmountDue = amount
	}
	summaryLine(doc, cols, label, amount, false)

	if res.Net.IsNegative() && rc.level >= dunning.FirstNotice {
		fee := rc.resolveFee()
		if fee.IsPositive() {
			res.Fee = fee
			res.AmountDue = res.Arrears.Add(fee)
			summaryLine(doc, cols, "Mahngebühr:", fee, false)
			summaryLine(doc, cols, "Zu zahlender Gesamtbetrag:", res.AmountDue, true)
		}
	}
}

// summaryLine writes a label spanning the text columns and an amount
// right-aligned under the difference column.
func summaryLine(d *document, cols [5]column, label string, amount decimal.Decimal, bold bool) {
	pdf := d.pdf
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont(baseFont, style, 10)
	pdf.SetXY(cols[0].x, d.y)
	labelW := cols[3].x + cols[3].w - cols[0].x
	pdf.CellFormat(labelW, rowHeight, d.tr(label), "", 0, "R", false, 0, "")
	pdf.SetXY(cols[4].x, d.y)
	pdf.CellFormat(cols[4].w, rowHeight, formatNumber(amount), "", 0, "R", false, 0, "")
	pdf.SetFont(baseFont, "", 9)
	d.advance(rowHeight)
}
