package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studymate/studymate-backend/internal/db"
)

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type HealthHandler struct {
	postgres *db.PostgresService
}

func NewHealthHandler(postgres *db.PostgresService) *HealthHandler {
	return &HealthHandler{postgres: postgres}
}

// APIHealth reports service and database health for the frontend banner.
func (hh *HealthHandler) APIHealth(c *gin.Context) {
	status := "healthy"
	if hh.postgres == nil || hh.postgres.Ping() != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"database":  "postgresql",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
