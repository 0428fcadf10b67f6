package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"comercioapp/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecibo = "jobs:recibo"
	QueueEmail  = "jobs:email"

	JobRecibo = "recibo"
	JobEmail  = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes the payload of one job type.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. Without Redis (rdb nil) jobs run inline in a goroutine.
type Dispatcher struct {
	rdb *redis.Client

	mu       sync.RWMutex
	handlers map[string]JobHandler
	inline   sync.WaitGroup
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb, handlers: make(map[string]JobHandler)}
}

// Handle registers h for jobType. Call before StartWorkerPool.
func (d *Dispatcher) Handle(jobType string, h JobHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[jobType] = h
}

// EncolarRecibo pushes a receipt job.
func (d *Dispatcher) EncolarRecibo(ctx context.Context, r model.Recibo) error {
	return d.enqueue(ctx, QueueRecibo, JobRecibo, r)
}

// EncolarEmail pushes an email job.
func (d *Dispatcher) EncolarEmail(ctx context.Context, p EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, p)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}

	if d.rdb == nil {
		d.inline.Add(1)
		go func() {
			defer d.inline.Done()
			d.processJob(context.WithoutCancel(ctx), queue, job)
		}()
		return nil
	}

	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Wait blocks until inline jobs started so far have finished.
func (d *Dispatcher) Wait() { d.inline.Wait() }

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (d *Dispatcher) StartWorkerPool(ctx context.Context, numWorkers int) {
	if d.rdb == nil {
		log.Warn().Msg("worker pool disabled: no redis, jobs run inline")
		return
	}
	for i := 0; i < numWorkers; i++ {
		go d.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	queues := []string{QueueRecibo, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := d.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			var job Job
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				log.Error().Str("queue", result[0]).Err(err).Msg("failed to unmarshal job")
				continue
			}
			d.processJob(ctx, result[0], job)
		}
	}
}

func (d *Dispatcher) processJob(ctx context.Context, queue string, job Job) {
	d.mu.RLock()
	h, ok := d.handlers[job.Type]
	d.mu.RUnlock()
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("job failed")
		if d.rdb != nil {
			SendToDLQ(ctx, d.rdb, queue, job.Type, job.Payload, fmt.Sprintf("handler error: %v", err), 1)
		}
	}
}
