package layout

import (
	"fmt"
	"strings"

	"mahnwesen/internal/dunning"
)

// ---------------------------------------------------------------------------
// Letter texts
// ---------------------------------------------------------------------------

// Placeholder variables resolved against the ledger totals and the level
// configuration before a text block is drawn.
const (
	phArrears  = "{SCHULDEN_BETRAG}"
	phTotal    = "{GESAMT_BETRAG}"
	phDeadline = "{ZAHLUNGSFRIST}"
	phName     = "{MIETER_NAME}"
)

var introTexts = map[dunning.Level]string{
	dunning.Reminder: "sicherlich haben Sie übersehen, dass auf Ihrem Mietkonto " +
		"derzeit ein Zahlungsrückstand besteht. Die offenen Positionen haben " +
		"wir nachfolgend für Sie aufgestellt.",
	dunning.FirstNotice: "trotz unserer Zahlungserinnerung besteht auf Ihrem " +
		"Mietkonto weiterhin ein Zahlungsrückstand. Wir mahnen die " +
		"nachfolgend aufgestellten Positionen hiermit an.",
	dunning.SecondNotice: "trotz wiederholter Aufforderung besteht auf Ihrem " +
		"Mietkonto unverändert ein erheblicher Zahlungsrückstand. Wir mahnen " +
		"die nachfolgend aufgestellten Positionen hiermit letztmalig an.",
}

var trailingTexts = map[dunning.Level]string{
	dunning.Reminder: "Bitte überweisen Sie den offenen Betrag von " +
		phArrears + " bis spätestens zum " + phDeadline + " auf das unten " +
		"genannte Konto. Sollten Sie die Zahlung bereits veranlasst haben, " +
		"betrachten Sie dieses Schreiben bitte als gegenstandslos.",
	dunning.FirstNotice: "Bitte überweisen Sie den Gesamtbetrag von " +
		phTotal + " bis spätestens zum " + phDeadline + " auf das unten " +
		"genannte Konto. Sollten Sie die Zahlung bereits veranlasst haben, " +
		"betrachten Sie dieses Schreiben bitte als gegenstandslos.",
	dunning.SecondNotice: "Wir fordern Sie letztmalig auf, den Gesamtbetrag " +
		"von " + phTotal + " bis spätestens zum " + phDeadline + " auf das " +
		"unten genannte Konto zu überweisen.",
}

// terminationWarning is appended in bold for second notices only.
const terminationWarning = "Sollte der Zahlungsrückstand nicht fristgerecht " +
	"ausgeglichen werden, behalten wir uns die fristlose Kündigung des " +
	"Mietverhältnisses gemäß § 543 Abs. 2 Nr. 3 BGB sowie die gerichtliche " +
	"Geltendmachung der Forderung ausdrücklich vor."

const generatedDisclaimer = "Dieses Schreiben wurde maschinell erstellt und " +
	"ist auch ohne Unterschrift gültig."

// resolvePlaceholders substitutes the letter variables with the values
// computed from the ledger totals and the level's deadline configuration.
func resolvePlaceholders(text string, rc *renderContext) string {
	return strings.NewReplacer(
		phArrears, FormatAmount(rc.table.Arrears),
		phTotal, FormatAmount(rc.table.AmountDue),
		phDeadline, FormatLongDate(rc.deadline),
		phName, rc.tenant.DisplayName(),
	).Replace(text)
}

// ---------------------------------------------------------------------------
// Section modules
// ---------------------------------------------------------------------------

// renderLogo places the company logo in the top right corner. The logo
// never advances the cursor; the header sections flow beside it.
func renderLogo(rc *renderContext) error {
	asset := rc.cache.Get(rc.ctx, "logo", rc.logoURL)
	if asset == nil {
		return nil // asset failure: omit, never block text
	}
	const logoWidth = 38.0
	drawAsset(rc.doc, "logo", asset, rc.doc.pageW-marginRight-logoWidth, marginTop, logoWidth)
	return nil
}

// renderCompanyHeader draws the sender block: the small one-line return
// address above the address window and the contact/date block on the right.
func renderCompanyHeader(rc *renderContext) error {
	doc, p := rc.doc, rc.profile
	pdf := doc.pdf

	// Return address line above the window, small and underlined.
	pdf.SetFont(baseFont, "U", 7)
	pdf.SetXY(marginLeft, addressWindowY-6)
	sender := fmt.Sprintf("%s · %s · %s %s", p.Company, p.Street, p.Postal, p.City)
	pdf.CellFormat(85, 3.5, doc.tr(sender), "", 0, "L", false, 0, "")

	// Contact block right of the address window.
	pdf.SetFont(baseFont, "", 9)
	infoX := doc.pageW - marginRight - 60
	lines := []string{
		p.Name,
		"Tel. " + p.Phone,
		p.Email,
		"",
		p.City + ", den " + FormatDate(rc.now),
	}
	y := addressWindowY
	for _, line := range lines {
		pdf.SetXY(infoX, y)
		pdf.CellFormat(60, 4.5, doc.tr(line), "", 0, "L", false, 0, "")
		y += 4.5
	}

	pdf.SetFont(baseFont, "", baseFontSize)
	return nil
}

// renderAddress draws the tenant address into the DIN address window,
// honoring a delivery-address override when present.
func renderAddress(rc *renderContext) error {
	doc, t := rc.doc, rc.tenant
	pdf := doc.pdf

	street, postal, city := t.Street, t.PostalCode, t.City
	if rc.postAddress != nil {
		street, postal, city = rc.postAddress.Street, rc.postAddress.PostalCode, rc.postAddress.City
	}

	lines := []string{t.Name1}
	if t.Name2 != "" {
		lines = append(lines, t.Name2)
	}
	lines = append(lines, street, postal+" "+city)

	pdf.SetFont(baseFont, "", baseFontSize)
	y := addressWindowY
	for _, line := range lines {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(85, lineHeight, doc.tr(line), "", 0, "L", false, 0, "")
		y += lineHeight
	}

	doc.setY(subjectY)
	return nil
}

// fallbackAddress writes the bare tenant identity when the full address
// block cannot be rendered.
func fallbackAddress(rc *renderContext) error {
	doc := rc.doc
	doc.setY(addressWindowY)
	doc.text(rc.tenant.DisplayName(), lineHeight)
	doc.text("Mieternummer "+rc.tenant.ID, lineHeight)
	doc.setY(subjectY)
	return nil
}

// renderSubject draws the bold subject line in the level's color.
func renderSubject(rc *renderContext) error {
	doc := rc.doc
	pdf := doc.pdf

	doc.setY(subjectY)
	subject := fmt.Sprintf("%s – %s, Mieternummer %s", rc.levelCfg.Name, rc.property, rc.tenant.ID)
	c := rc.levelCfg.Color
	pdf.SetFont(baseFont, "B", 12)
	pdf.SetTextColor(c[0], c[1], c[2])
	doc.text(subject, 7)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(baseFont, "", baseFontSize)
	doc.advance(4)
	return nil
}

func fallbackSubject(rc *renderContext) error {
	doc := rc.doc
	doc.setY(subjectY)
	doc.pdf.SetFont(baseFont, "B", 12)
	doc.text(rc.levelCfg.Name, 7)
	doc.pdf.SetFont(baseFont, "", baseFontSize)
	doc.advance(4)
	return nil
}

// renderIntro draws the salutation and the level's introductory paragraph.
func renderIntro(rc *renderContext) error {
	doc, t := rc.doc, rc.tenant

	salutation := t.Salutation
	if salutation == "" {
		salutation = "Sehr geehrte Damen und Herren,"
	}
	doc.text(salutation, lineHeight)
	doc.advance(2)
	doc.wrapped(resolvePlaceholders(introTexts[rc.level], rc), lineHeight)
	doc.advance(3)
	return nil
}

func fallbackIntro(rc *renderContext) error {
	rc.doc.text("Sehr geehrte Damen und Herren,", lineHeight)
	rc.doc.advance(3)
	return nil
}

// renderTrailing draws the payment request below the table, including the
// bold termination warning for second notices.
func renderTrailing(rc *renderContext) error {
	doc := rc.doc

	doc.advance(4)
	if !doc.fits(4 * lineHeight) {
		doc.addPage()
	}
	doc.wrapped(resolvePlaceholders(trailingTexts[rc.level], rc), lineHeight)

	if rc.level == dunning.SecondNotice {
		doc.advance(3)
		if !doc.fits(4 * lineHeight) {
			doc.addPage()
		}
		doc.pdf.SetFont(baseFont, "B", baseFontSize)
		doc.wrapped(terminationWarning, lineHeight)
		doc.pdf.SetFont(baseFont, "", baseFontSize)
	}
	return nil
}

func fallbackTrailing(rc *renderContext) error {
	doc := rc.doc
	doc.advance(4)
	doc.text("Zahlbar bis: "+FormatLongDate(rc.deadline), lineHeight)
	doc.text("Gesamtbetrag: "+FormatAmount(rc.table.AmountDue), lineHeight)
	return nil
}

// bankingMinHeight is the minimum footprint of the banking block; if less
// space remains, the assembler breaks the page before rendering it.
const bankingMinHeight = 7 * lineHeight

// renderBanking draws the payment account block. The space reservation is
// checked here so the block is never split across pages.
func renderBanking(rc *renderContext) error {
	doc := rc.doc

	if !doc.fits(bankingMinHeight) {
		doc.addPage()
	}
	doc.advance(3)

	doc.pdf.SetFont(baseFont, "B", baseFontSize)
	doc.text("Bitte überweisen Sie auf folgendes Konto:", lineHeight)
	doc.pdf.SetFont(baseFont, "", baseFontSize)
	doc.advance(1)

	b := rc.bank
	doc.text("Kontoinhaber: "+b.AccountHolder, lineHeight)
	doc.text("IBAN: "+b.IBAN, lineHeight)
	doc.text("BIC: "+b.BIC+"  ("+b.BankName+")", lineHeight)
	doc.text("Verwendungszweck: "+rc.purpose, lineHeight)
	return nil
}

func fallbackBanking(rc *renderContext) error {
	doc := rc.doc
	if !doc.fits(2 * lineHeight) {
		doc.addPage()
	}
	doc.advance(3)
	doc.text("IBAN: "+rc.bank.IBAN, lineHeight)
	doc.text("Verwendungszweck: "+rc.purpose, lineHeight)
	return nil
}

// renderClosing draws the signature block and the machine-generated
// disclaimer.
func renderClosing(rc *renderContext) error {
	doc, p := rc.doc, rc.profile

	if !doc.fits(8 * lineHeight) {
		doc.addPage()
	}
	doc.advance(6)
	doc.text("Mit freundlichen Grüßen", lineHeight)
	doc.advance(6)
	doc.text(p.Name, lineHeight)
	doc.text(p.Company, lineHeight)

	doc.advance(4)
	doc.pdf.SetFont(baseFont, "I", smallFontSize)
	doc.pdf.SetTextColor(110, 110, 110)
	doc.wrapped(generatedDisclaimer, smallLineHght)
	doc.pdf.SetTextColor(0, 0, 0)
	doc.pdf.SetFont(baseFont, "", baseFontSize)
	return nil
}

func fallbackClosing(rc *renderContext) error {
	doc := rc.doc
	if !doc.fits(3 * lineHeight) {
		doc.addPage()
	}
	doc.advance(4)
	doc.text("Mit freundlichen Grüßen", lineHeight)
	doc.text(rc.profile.Company, lineHeight)
	return nil
}

// noop is the guaranteed fallback for purely decorative sections.
func noop(*renderContext) error { return nil }
