package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"sidequest/internal/api"
	"sidequest/internal/middleware"
	"sidequest/internal/repository"
	"sidequest/internal/service"
	"sidequest/pkg/auth"
	"sidequest/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	sessionAuth := auth.NewSessionAuth(cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour)

	eventHub := api.NewEventHub()

	userService := service.NewUserService(repo)
	progressService := service.NewProgressService(repo, eventHub)
	catalogService := service.NewCatalogService(repo)

	authz := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewAuthRoutes(a, userService, sessionAuth)
	api.NewProgressRoutes(a, progressService, sessionAuth)
	api.NewCatalogRoutes(a, catalogService, sessionAuth, authz)
	api.NewEventRoutes(a, eventHub, sessionAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
