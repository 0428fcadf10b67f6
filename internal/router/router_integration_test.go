//go:build integration

package router

// Same checkout flow as TestRouter_CobroYOutbox, against real Postgres and
// Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http/httptest"
	"testing"

	"comercioapp/internal/infra"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestIntegration_CobroYOutboxPostgres(t *testing.T) {
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("comercioapp_test"),
		tcPostgres.WithUsername("comercioapp"),
		tcPostgres.WithPassword("comercioapp"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	require.NotNil(t, rdb)

	remote := &fakeRemote{failMovimientos: 1}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	env := newTestEnv(t, srv.URL, db, rdb)
	cobroConMovimientoEnOutbox(t, env, remote)
}
