package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"comercioapp/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderHandler struct {
	mu   sync.Mutex
	raws []json.RawMessage
	err  error
}

func (h *recorderHandler) Process(_ context.Context, raw json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raws = append(h.raws, raw)
	return h.err
}

func (h *recorderHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.raws)
}

func reciboDePrueba() model.Recibo {
	return model.Recibo{
		VentaID:   41,
		CajaID:    1,
		Fecha:     "2024-03-15T14:30:05",
		MedioPago: model.MedioEfectivo,
		Lineas: []model.ReciboLinea{
			{Nombre: "Yerba", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(1200), Descuento: decimal.Zero, Total: decimal.NewFromInt(1200)},
		},
		Bruto:     decimal.NewFromInt(1200),
		Descuento: decimal.Zero,
		Total:     decimal.NewFromInt(1200),
	}
}

func TestDispatcher_EncolaEnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDispatcher(rdb)

	require.NoError(t, d.EncolarRecibo(context.Background(), reciboDePrueba()))

	raw, err := rdb.RPop(context.Background(), QueueRecibo).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, JobRecibo, job.Type)

	var r model.Recibo
	require.NoError(t, json.Unmarshal(job.Payload, &r))
	assert.Equal(t, int64(41), r.VentaID)
}

func TestDispatcher_PoolProcesaYMandaFallasAlDLQ(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDispatcher(rdb)
	h := &recorderHandler{err: errors.New("smtp down")}
	d.Handle(JobEmail, h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.StartWorkerPool(ctx, 1)

	require.NoError(t, d.EncolarEmail(ctx, EmailJobPayload{ToEmail: "a@b.c"}))

	require.Eventually(t, func() bool { return h.count() == 1 }, 3*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		n, err := DLQLength(context.Background(), rdb, QueueEmail)
		return err == nil && n == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestDispatcher_SinRedisCorreInline(t *testing.T) {
	d := NewDispatcher(nil)
	h := &recorderHandler{}
	d.Handle(JobRecibo, h)

	require.NoError(t, d.EncolarRecibo(context.Background(), reciboDePrueba()))
	d.Wait()
	assert.Equal(t, 1, h.count())
}
