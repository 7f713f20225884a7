package main

import (
	"fmt"
	"os"

	"github.com/yungbote/coursesmith-backend/internal/db"
	"github.com/yungbote/coursesmith-backend/internal/handlers"
	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/middleware"
	"github.com/yungbote/coursesmith-backend/internal/repos"
	"github.com/yungbote/coursesmith-backend/internal/server"
	"github.com/yungbote/coursesmith-backend/internal/services"
	"github.com/yungbote/coursesmith-backend/internal/utils"
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
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey)
	productService := services.NewProductService(thePG, log, productRepo)
	exportService := services.NewExportService(thePG, log, productRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	productHandler := handlers.NewProductHandler(log, productService)
	exportHandler := handlers.NewExportHandler(log, exportService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up Router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		ProductHandler: productHandler,
		ExportHandler:  exportHandler,
	})

	log.Info("Starting server...", "port", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
