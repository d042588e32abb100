package controller

import (
	"errors"
	"net/http"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store service.ContentStore
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, store service.ContentStore) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Store: store}
}

// HealthCheck godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	redisStatus := "up"
	if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		redisStatus = "down"
	}

	// A missing manifest still proves the store is reachable.
	storeStatus := "up"
	if _, err := c.Store.GetFile(ctx.Request.Context(), model.ManifestPath); err != nil && !errors.Is(err, util.ErrFileNotFound) {
		storeStatus = "down"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":      "up",
			"redis":         redisStatus,
			"content_store": storeStatus,
		},
	})
}
