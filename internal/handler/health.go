package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthProbeTimeout = 3 * time.Second

// Health reports whether the engine can reach its two stores. Postgres down
// means no settlements at all; Redis down only degrades the price cache and
// alert queue, but both still flip the endpoint to 503 so the orchestrator
// restarts or reroutes.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		defer cancel()

		checks := gin.H{"db": "ok", "redis": "ok"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["db"] = "unreachable"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		checks["ok"] = healthy
		c.JSON(status, checks)
	}
}
