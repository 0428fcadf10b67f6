package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the PDF receipt to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"comercioapp/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// ReciboMailer is satisfied by *infra.Mailer.
type ReciboMailer interface {
	EnviarRecibo(to, subject, body, pdfPath string) error
}

// EmailWorker sends receipt e-mails, retrying transient SMTP failures.
type EmailWorker struct {
	mailer      ReciboMailer
	maxAttempts int
}

func NewEmailWorker(mailer ReciboMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer, maxAttempts: 3}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := withRetry(ctx, w.maxAttempts, func(attempt int) error {
		err := w.mailer.EnviarRecibo(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		if err != nil && !errors.Is(err, infra.ErrMailerNoConfigurado) {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if errors.Is(err, infra.ErrMailerNoConfigurado) {
		log.Warn().Str("to", payload.ToEmail).Msg("email_worker: SMTP not configured, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: recibo sent successfully")
	return nil
}
