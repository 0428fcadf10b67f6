package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibo: renders the PDF (with QR) and, when
// the customer left an e-mail, enqueues the email job.

import (
	"context"
	"encoding/json"
	"fmt"

	"comercioapp/internal/infra"
	"comercioapp/internal/model"

	"github.com/rs/zerolog/log"
)

// ReciboWorker renders receipts into opts.StoragePath.
type ReciboWorker struct {
	opts       infra.ReciboOptions
	dispatcher *Dispatcher
}

func NewReciboWorker(opts infra.ReciboOptions, dispatcher *Dispatcher) *ReciboWorker {
	return &ReciboWorker{opts: opts, dispatcher: dispatcher}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var r model.Recibo
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("recibo_worker: invalid payload: %w", err)
	}

	pdfPath, err := infra.GenerarReciboPDF(r, w.opts)
	if err != nil {
		return fmt.Errorf("recibo_worker: venta %d: %w", r.VentaID, err)
	}
	log.Info().Str("pdf", pdfPath).Int64("venta_id", r.VentaID).Msg("recibo_worker: PDF generated")

	if r.ClienteEmail == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail: r.ClienteEmail,
		Subject: fmt.Sprintf("Comprobante %s - Venta #%d", w.opts.NombreComercio, r.VentaID),
		Body:    fmt.Sprintf("Adjunto encontrarás tu comprobante de compra.\nTotal: $%s", r.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EncolarEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", r.ClienteEmail).Msg("recibo_worker: failed to enqueue email")
		return nil
	}
	log.Info().Str("email", r.ClienteEmail).Msg("recibo_worker: email job enqueued")
	return nil
}
