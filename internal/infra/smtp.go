package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"comercioapp/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerNoConfigurado is returned when SMTP_HOST is empty.
var ErrMailerNoConfigurado = errors.New("mailer: smtp not configured")

// Mailer wraps SMTP configuration for sending receipts as PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     fmt.Sprintf("%s <%s>", cfg.NombreComercio, cfg.SMTPUser),
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado reports whether an SMTP host is set.
func (m *Mailer) Configurado() bool { return m != nil && m.host != "" }

// EnviarRecibo sends the receipt PDF to the customer.
func (m *Mailer) EnviarRecibo(to, subject, body, pdfPath string) error {
	if !m.Configurado() {
		return ErrMailerNoConfigurado
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var a smtp.Auth
	if m.user != "" {
		a = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, a)
}
