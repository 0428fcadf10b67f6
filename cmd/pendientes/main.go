// cmd/pendientes/main.go: operator tool for the movimientos outbox and the DLQs.
// Uso:
//
//	go run ./cmd/pendientes                 # pendiente + error rows
//	go run ./cmd/pendientes -estado error
//	go run ./cmd/pendientes -reencolar <id> # error → pendiente, due now
//	go run ./cmd/pendientes -enviar         # one retry pass (needs Redis tokens)
//	go run ./cmd/pendientes -dlq            # DLQ lengths and latest entries
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/config"
	"comercioapp/internal/infra"
	"comercioapp/internal/model"
	"comercioapp/internal/repository"
	"comercioapp/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	estado := flag.String("estado", "", "listar solo filas en este estado (pendiente|error|enviado)")
	reencolar := flag.String("reencolar", "", "id de fila a reencolar")
	enviar := flag.Bool("enviar", false, "ejecutar una pasada de reintentos")
	dlq := flag.Bool("dlq", false, "mostrar las colas DLQ")
	limite := flag.Int("n", 50, "máximo de filas/entradas a mostrar")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open outbox database")
	}
	repo := repository.NewMovimientoPendienteRepository(db)
	ctx := context.Background()

	switch {
	case *reencolar != "":
		if err := worker.Requeue(ctx, repo, *reencolar, time.Now()); err != nil {
			log.Fatal().Err(err).Str("id", *reencolar).Msg("requeue failed")
		}
		fmt.Printf("Movimiento %s reencolado\n", *reencolar)

	case *enviar:
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil || rdb == nil {
			log.Fatal().Err(err).Msg("redis is required to read caja tokens")
		}
		api := infra.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout, nil, nil)
		worker.ProcessRetries(ctx, worker.RetryCronConfig{
			Repo:       repo,
			SenderPara: worker.SenderPorCaja(api, auth.NewRedisTokenStore(rdb, cfg.TokenTTL)),
			CB:         api.Breaker(),
			RDB:        rdb,
			MaxRetries: cfg.OutboxMaxRetries,
		})
		imprimirConteos(ctx, repo)

	case *dlq:
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil || rdb == nil {
			log.Fatal().Err(err).Msg("redis is required for the DLQ")
		}
		for _, q := range worker.DLQQueues {
			n, err := worker.DLQLength(ctx, rdb, q)
			if err != nil {
				log.Fatal().Err(err).Str("queue", q).Msg("dlq length")
			}
			fmt.Printf("%s%s: %d\n", worker.DLQPrefix, q, n)
			entries, err := worker.ListDLQ(ctx, rdb, q, int64(*limite))
			if err != nil {
				log.Fatal().Err(err).Str("queue", q).Msg("dlq list")
			}
			for _, e := range entries {
				fmt.Printf("  %s  %-8s intentos=%d  %s\n", e.FailedAt, e.JobType, e.Attempts, e.Reason)
			}
		}

	default:
		estados := []string{model.PendienteEstadoPendiente, model.PendienteEstadoError}
		if *estado != "" {
			estados = []string{*estado}
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tESTADO\tCAJA\tVENTA\tMONTO\tINTENTOS\tPROXIMO\tERROR")
		for _, e := range estados {
			rows, err := repo.ListByEstado(ctx, e, *limite)
			if err != nil {
				log.Fatal().Err(err).Msg("list failed")
			}
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n",
					r.ID, r.Estado, r.CajaID, r.VentaID, r.Monto.StringFixed(2), r.RetryCount, proximo(r.NextRetryAt), ultimoError(r.LastError))
			}
		}
		_ = w.Flush()
	}
}

func imprimirConteos(ctx context.Context, repo repository.MovimientoPendienteRepository) {
	counts, err := repo.CountByEstado(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("count failed")
	}
	for _, e := range []string{model.PendienteEstadoPendiente, model.PendienteEstadoError, model.PendienteEstadoEnviado} {
		fmt.Printf("%-10s %d\n", e, counts[e])
	}
}

func proximo(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func ultimoError(s *string) string {
	if s == nil {
		return ""
	}
	if len(*s) > 60 {
		return (*s)[:57] + "..."
	}
	return *s
}
