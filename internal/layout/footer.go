package layout

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Footer compositor
// ---------------------------------------------------------------------------

const (
	footerTextSize   = 7.5
	footerLineHeight = 3.2
	footerLogoWidth  = 18.0
)

// stampFooter writes the uniform footer band onto every page that exists
// at the time of the call. It must run after all content pages exist,
// including pages created by the table's internal pagination, which is why
// it is a post-pass and not a per-section step. Stamping is idempotent: a
// second call on the same document is a no-op.
func stampFooter(rc *renderContext) error {
	doc := rc.doc
	if doc.footerStamped {
		return nil
	}

	p := rc.profile
	lines := [3]string{
		fmt.Sprintf("%s · %s · %s %s", p.Company, p.Street, p.Postal, p.City),
		fmt.Sprintf("Tel. %s · %s", p.Phone, p.Email),
		fmt.Sprintf("IBAN %s · BIC %s · %s", p.IBAN, p.BIC, p.Bank),
	}

	logoLeft := rc.cache.Get(rc.ctx, "logo", rc.logoURL)
	logoRight := rc.cache.Get(rc.ctx, "partner-logo", rc.partnerLogoURL)

	pdf := doc.pdf
	bandTop := doc.pageH - footerReserve + 6
	textHeight := 3 * footerLineHeight

	for page := 1; page <= pdf.PageCount(); page++ {
		pdf.SetPage(page)

		pdf.SetLineWidth(0.2)
		pdf.SetDrawColor(150, 150, 150)
		pdf.Line(marginLeft, bandTop, doc.pageW-marginRight, bandTop)
		pdf.SetDrawColor(0, 0, 0)

		pdf.SetFont(baseFont, "", footerTextSize)
		pdf.SetTextColor(110, 110, 110)
		y := bandTop + 3
		for _, line := range lines {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(doc.contentWidth(), footerLineHeight, doc.tr(line), "", 0, "C", false, 0, "")
			y += footerLineHeight
		}
		pdf.SetTextColor(0, 0, 0)

		// Logos anchored left/right, vertically centered on the text band.
		if logoLeft != nil {
			h := footerLogoWidth * float64(logoLeft.Height) / float64(logoLeft.Width)
			drawAsset(doc, "logo", logoLeft, marginLeft, bandTop+3+(textHeight-h)/2, footerLogoWidth)
		}
		if logoRight != nil {
			h := footerLogoWidth * float64(logoRight.Height) / float64(logoRight.Width)
			drawAsset(doc, "partner-logo", logoRight,
				doc.pageW-marginRight-footerLogoWidth, bandTop+3+(textHeight-h)/2, footerLogoWidth)
		}
	}

	pdf.SetPage(pdf.PageCount())
	doc.footerStamped = true
	return nil
}
