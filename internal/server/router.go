package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studymate/studymate-backend/internal/handlers"
	"github.com/studymate/studymate-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins   []string
	StaticDir        string
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	PlanHandler      *handlers.PlanHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.GET("/health", cfg.HealthHandler.APIHealth)
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Plans
	protected.POST("/generate-plan", cfg.PlanHandler.GeneratePlan)
	protected.GET("/plan/:plan_id", cfg.PlanHandler.GetPlan)
	protected.GET("/user-plans", cfg.PlanHandler.ListPlans)
	protected.POST("/update-progress", cfg.PlanHandler.UpdateProgress)
	// Dashboard
	protected.GET("/dashboard", cfg.DashboardHandler.GetDashboard)

	registerStatic(router, cfg.StaticDir)

	return router
}

// registerStatic serves the compiled frontend with an index.html fallback
// for client-side routes. API paths never fall through to it.
func registerStatic(router *gin.Engine, staticDir string) {
	if staticDir == "" {
		staticDir = "./build"
	}
	index := filepath.Join(staticDir, "index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handlers.RespondError(c, http.StatusNotFound, "not_found", nil)
			return
		}
		if _, err := os.Stat(index); err != nil {
			handlers.RespondError(c, http.StatusServiceUnavailable, "frontend_unavailable",
				fmt.Errorf("Frontend build not found. Run the frontend build first."))
			return
		}
		requested := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(index)
	})
}
