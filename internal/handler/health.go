package handler

import (
	"context"
	"net/http"
	"time"

	"comercioapp/internal/infra"
	"comercioapp/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports local store, Redis and remote API breaker status plus the
// outbox backlog. An open breaker does not fail the check: the gateway keeps
// serving tickets while the API is down. Redis is optional.
func Health(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker, outbox repository.MovimientoPendienteRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"api":   cb.State().String(),
		}
		if dbStatus == "connected" && outbox != nil {
			if counts, err := outbox.CountByEstado(ctx); err == nil {
				body["movimientos_pendientes"] = counts
			}
		}
		c.JSON(status, body)
	}
}
