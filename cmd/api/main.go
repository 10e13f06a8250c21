package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/database"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/metrics"
	"budgetbuddy/internal/router"
)

// @title           BudgetBuddy API
// @version         1.0
// @description     BudgetBuddy tracks expenses against hierarchical spending categories and periodic budgets.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	svc := router.NewServices(dbManager.DB())

	if appConfig.SeedDefaultCategories {
		created, err := svc.Categories.SeedDefaultCategories()
		if err != nil {
			return fmt.Errorf("failed to seed default categories: %w", err)
		}
		log.Infow("default categories seeded", "created", created)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	r := router.New(appConfig, svc)

	log.Infof("Starting BudgetBuddy backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return r.Run(":" + appConfig.Port)
}
