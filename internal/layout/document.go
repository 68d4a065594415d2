// Package layout is the document composition and pagination engine. It
// turns one tenant's ledger and contact data into a paginated PDF dunning
// letter: fixed section pipeline, ledger table with internal page breaks,
// uniform footer post-pass and per-section fallback rendering.
package layout

import (
	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// Page geometry
// ---------------------------------------------------------------------------

const (
	marginLeft   = 25.0 // DIN 5008 letter margin
	marginRight  = 20.0
	marginTop    = 15.0
	footerReserve = 32.0 // band at the page bottom kept free for the footer

	baseFont      = "Helvetica"
	baseFontSize  = 11.0
	smallFontSize = 8.0
	lineHeight    = 5.0
	smallLineHght = 3.5

	// Address window and subject position on the first page (DIN 5008).
	addressWindowY = 50.0
	subjectY       = 92.0
)

// document wraps the PDF instance together with the vertical cursor the
// assembler owns. All sections advance the cursor through this wrapper so
// the cursor and the PDF's own Y position never drift apart.
type document struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string // cp1252 translator for umlauts
	y     float64
	pageW float64
	pageH float64

	footerStamped bool
}

func newDocument() *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	// The engine owns all page breaks; fpdf must never break on its own.
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont(baseFont, "", baseFontSize)

	w, h := pdf.GetPageSize()
	d := &document{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		pageW: w,
		pageH: h,
	}
	d.addPage()
	return d
}

// addPage starts a new page and resets the cursor to the top margin.
func (d *document) addPage() {
	d.pdf.AddPage()
	d.setY(marginTop)
}

func (d *document) setY(y float64) {
	d.y = y
	d.pdf.SetY(y)
}

func (d *document) advance(h float64) {
	d.setY(d.y + h)
}

// contentWidth is the usable width between the side margins.
func (d *document) contentWidth() float64 {
	return d.pageW - marginLeft - marginRight
}

// fits reports whether a block of the given height fits above the footer
// band on the current page.
func (d *document) fits(height float64) bool {
	return d.pageH-d.y-footerReserve >= height
}

// text writes one line of translated text at the cursor and advances it.
func (d *document) text(s string, h float64) {
	d.pdf.SetX(marginLeft)
	d.pdf.CellFormat(d.contentWidth(), h, d.tr(s), "", 0, "L", false, 0, "")
	d.advance(h)
}

// wrapped writes a word-wrapped block at the cursor and advances it by the
// height actually consumed.
func (d *document) wrapped(s string, h float64) {
	lines := d.pdf.SplitText(d.tr(s), d.contentWidth())
	for _, line := range lines {
		d.pdf.SetX(marginLeft)
		d.pdf.CellFormat(d.contentWidth(), h, line, "", 0, "L", false, 0, "")
		d.advance(h)
	}
}
