package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comercioapp/internal/model"
	"comercioapp/internal/repository"

	"github.com/rs/zerolog/log"
)

// pareador posts the ingreso that follows a sale the remote API already
// accepted. The sale is never re-posted; when the movement POST fails the
// movement is parked in the outbox for the retry cron.
type pareador struct {
	api     VentasAPI
	outbox  repository.MovimientoPendienteRepository
	metrics *Metrics
	now     func() time.Time
}

// enviar returns encolado=true when the movement went to the outbox instead of
// the remote API. A non-nil error means neither worked.
func (p *pareador) enviar(ctx context.Context, mov model.Movimiento, ventaID int64) (encolado bool, err error) {
	// The sale is already committed remotely; a client disconnect must not
	// abort its movement.
	ctx = context.WithoutCancel(ctx)

	postErr := p.api.RegistrarMovimiento(ctx, mov)
	if postErr == nil {
		return false, nil
	}
	log.Warn().Err(postErr).
		Int64("caja_id", mov.CajaID).
		Int64("venta_id", ventaID).
		Msg("movimiento: POST failed, moving to outbox")

	if p.outbox == nil {
		return false, fmt.Errorf("%w: %w", ErrOutboxNoDisponible, postErr)
	}
	row := model.NuevoMovimientoPendiente(mov, ventaID, p.now())
	if err := p.outbox.Create(ctx, row); err != nil {
		log.Error().Err(err).Int64("venta_id", ventaID).Msg("movimiento: outbox write failed")
		return false, fmt.Errorf("%w: %w", ErrOutboxNoDisponible, errors.Join(postErr, err))
	}
	p.metrics.Outbox("encolado")
	log.Info().Str("pendiente_id", row.ID).Int64("venta_id", ventaID).Msg("movimiento: queued in outbox")
	return true, nil
}
