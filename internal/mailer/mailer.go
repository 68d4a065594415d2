// Package mailer composes and sends dunning letters by email, reusing the
// totals the layout engine recorded so nothing is computed twice.
package mailer

import (
	"fmt"
	"io"

	"github.com/go-gomail/gomail"

	"mahnwesen/internal/config"
	"mahnwesen/internal/layout"
)

// Mailer sends finished letters via SMTP.
type Mailer struct {
	cfg  config.SMTPConfig
	from string
}

// New returns a mailer for the given SMTP account.
func New(cfg config.SMTPConfig, from string) *Mailer {
	return &Mailer{cfg: cfg, from: from}
}

// Send mails one letter to the tenant with the PDF attached. The body is
// built from the session mail context.
func (m *Mailer) Send(to string, letter *layout.Letter) error {
	if to == "" {
		return fmt.Errorf("tenant %s has no email address", letter.TenantID)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", letter.Mail.Purpose)
	msg.SetBody("text/plain", body(letter))

	msg.Attach(letter.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(letter.Data)
		return err
	}))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return dialer.DialAndSend(msg)
}

func body(letter *layout.Letter) string {
	mc := letter.Mail
	return fmt.Sprintf(
		"Sehr geehrte Damen und Herren,\n\n"+
			"anbei erhalten Sie unser Schreiben zu Ihrem Mietkonto.\n\n"+
			"Offener Betrag: %s\n"+
			"Mahngebühr: %s\n"+
			"Zu zahlender Gesamtbetrag: %s\n\n"+
			"Zahlung bitte auf IBAN %s, Verwendungszweck: %s\n\n"+
			"Mit freundlichen Grüßen",
		layout.FormatAmount(mc.Arrears),
		layout.FormatAmount(mc.Fee),
		layout.FormatAmount(mc.AmountDue),
		mc.Bank.IBAN,
		mc.Purpose,
	)
}
