package worker

// retry_cron.go
// Background goroutine that periodically re-sends the paired movements stuck
// in the outbox (movimientos_pendientes, estado='pendiente', next_retry_at in
// the past). Uses the Circuit Breaker to avoid hammering a downed API.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/infra"
	"comercioapp/internal/model"
	"comercioapp/internal/repository"
	"comercioapp/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueMovimientos = "outbox:movimientos"

	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
	MaxOutboxRetries  = 10
)

// MovimientoSender is satisfied by *infra.APIClient.
type MovimientoSender interface {
	RegistrarMovimiento(ctx context.Context, m model.Movimiento) error
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Repo repository.MovimientoPendienteRepository
	// SenderPara returns a client authenticated for the given caja.
	SenderPara func(cajaID int64) MovimientoSender
	CB         *infra.CircuitBreaker
	RDB        *redis.Client // nil: exhausted rows are not copied to the DLQ
	Metrics    *service.Metrics
	Interval   time.Duration
	MaxRetries int

	now func() time.Time
}

// SenderPorCaja builds RetryCronConfig.SenderPara from the shared client:
// each caja's movements go out with the last token seen for that caja.
func SenderPorCaja(client *infra.APIClient, store auth.TokenStore) func(int64) MovimientoSender {
	return func(cajaID int64) MovimientoSender {
		return client.WithCredentials(auth.NewStoreProvider(store, cajaID))
	}
}

// StartRetryCron launches a background goroutine that ticks every Interval,
// queries due outbox rows, and re-sends them through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = retryTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				ProcessRetries(ctx, cfg)
			}
		}
	}()
}

// ProcessRetries runs one pass over the due outbox rows. Exported for the
// operator CLI.
func ProcessRetries(ctx context.Context, cfg RetryCronConfig) {
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = MaxOutboxRetries
	}

	// If CB is open, skip entirely, don't hammer a downed API
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	rows, err := cfg.Repo.ListDue(ctx, cfg.now().UTC(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending movimientos")
		return
	}
	if len(rows) == 0 {
		return
	}

	log.Info().Int("count", len(rows)).Msg("retry_cron: processing pending movimientos")

	for i := range rows {
		row := &rows[i]

		// Check CB state before each call: it may have tripped mid-batch
		if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		sendErr := cfg.SenderPara(row.CajaID).RegistrarMovimiento(ctx, row.Movimiento())
		if sendErr == nil {
			row.Estado = model.PendienteEstadoEnviado
			row.NextRetryAt = nil
			row.LastError = nil
			if err := cfg.Repo.Update(ctx, row); err != nil {
				log.Error().Err(err).Str("pendiente_id", row.ID).Msg("retry_cron: sent but failed to mark enviado")
			}
			cfg.Metrics.Outbox("enviado")
			log.Info().
				Str("pendiente_id", row.ID).
				Int64("venta_id", row.VentaID).
				Int("total_retries", row.RetryCount).
				Msg("retry_cron: movimiento sent after retry")
			continue
		}

		// Failure: increment retry count, schedule next attempt
		row.RetryCount++
		errMsg := sendErr.Error()
		row.LastError = &errMsg
		nextRetry := cfg.now().UTC().Add(computeRetryBackoff(row.RetryCount))
		row.NextRetryAt = &nextRetry

		if row.RetryCount >= cfg.MaxRetries {
			row.Estado = model.PendienteEstadoError
			row.NextRetryAt = nil
			cfg.Metrics.Outbox("agotado")
			log.Error().
				Str("pendiente_id", row.ID).
				Int64("venta_id", row.VentaID).
				Int("retries", row.RetryCount).
				Msg("retry_cron: max retries exceeded, moving to error/DLQ")

			if cfg.RDB != nil {
				payload, _ := json.Marshal(map[string]any{
					"pendiente_id": row.ID,
					"venta_id":     row.VentaID,
					"caja_id":      row.CajaID,
				})
				SendToDLQ(ctx, cfg.RDB, QueueMovimientos, "movimiento", payload,
					fmt.Sprintf("max retries (%d) exceeded: %s", cfg.MaxRetries, errMsg),
					row.RetryCount)
			}
		} else {
			log.Warn().
				Err(sendErr).
				Str("pendiente_id", row.ID).
				Int("retry_count", row.RetryCount).
				Time("next_retry_at", *row.NextRetryAt).
				Msg("retry_cron: retry failed, scheduled next attempt")
		}

		if err := cfg.Repo.Update(ctx, row); err != nil {
			log.Error().Err(err).Str("pendiente_id", row.ID).Msg("retry_cron: failed to update row")
		}
	}
}

// Requeue moves an error row back to pendiente, due now.
func Requeue(ctx context.Context, repo repository.MovimientoPendienteRepository, id string, now time.Time) error {
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if row.Estado == model.PendienteEstadoEnviado {
		return fmt.Errorf("movimiento %s already sent", id)
	}
	due := now.UTC()
	row.Estado = model.PendienteEstadoPendiente
	row.RetryCount = 0
	row.NextRetryAt = &due
	return repo.Update(ctx, row)
}
