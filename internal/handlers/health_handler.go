package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`
}

type HealthHandler struct {
	db     *gorm.DB
	rdb    *redis.Client
	engine llm.Engine
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, engine llm.Engine) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, engine: engine}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.db == nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "database not initialized"}
		allChecksPass = false
	} else if sqlDB, err := handler.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "database unreachable"}
		allChecksPass = false
	} else {
		checks["database"] = ReadinessCheck{Status: "ok"}
	}

	if handler.rdb == nil {
		checks["redis"] = ReadinessCheck{Status: "failed", Message: "redis not initialized"}
		allChecksPass = false
	} else if err := handler.rdb.Ping(ctx).Err(); err != nil {
		checks["redis"] = ReadinessCheck{Status: "failed", Message: "redis unreachable"}
		allChecksPass = false
	} else {
		checks["redis"] = ReadinessCheck{Status: "ok"}
	}

	if handler.engine == nil {
		checks["engine"] = ReadinessCheck{Status: "failed", Message: "AI engine not initialized"}
		allChecksPass = false
	} else {
		checks["engine"] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
