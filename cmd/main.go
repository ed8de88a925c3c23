package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	redisclient "github.com/studymate/studymate-backend/internal/clients/redis"
	"github.com/studymate/studymate-backend/internal/db"
	"github.com/studymate/studymate-backend/internal/handlers"
	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/middleware"
	"github.com/studymate/studymate-backend/internal/planner"
	"github.com/studymate/studymate-backend/internal/repos"
	"github.com/studymate/studymate-backend/internal/server"
	"github.com/studymate/studymate-backend/internal/services"
	"github.com/studymate/studymate-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "", log)
	staticDir := utils.GetEnv("STATIC_DIR", "./build", log)
	defaultDailyHours := utils.GetEnvAsFloat("DEFAULT_DAILY_HOURS", planner.DefaultDailyHours, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	studyPlanRepo := repos.NewStudyPlanRepo(thePG, log)
	planTaskRepo := repos.NewPlanTaskRepo(thePG, log)
	userEventRepo := repos.NewUserEventRepo(thePG, log)

	// Redis (optional dashboard cache)
	dashboardCache, cacheErr := redisclient.NewDashboardCache(log)
	if cacheErr != nil {
		log.Warn("Dashboard cache disabled", "reason", cacheErr)
		dashboardCache = nil
	} else {
		defer dashboardCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(
		thePG, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo)
	planService := services.NewPlanService(thePG, log, userRepo, studyPlanRepo, planTaskRepo, userEventRepo, dashboardCache, defaultDailyHours)
	dashboardService := services.NewDashboardService(thePG, log, userRepo, studyPlanRepo, planTaskRepo, userEventRepo, dashboardCache)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	planHandler := handlers.NewPlanHandler(planService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	healthHandler := handlers.NewHealthHandler(postgresService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	var origins []string
	if allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:   origins,
		StaticDir:        staticDir,
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		PlanHandler:      planHandler,
		DashboardHandler: dashboardHandler,
		HealthHandler:    healthHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
