package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hubledger/internal/clock"
	"hubledger/internal/config"
	"hubledger/internal/database"
	"hubledger/internal/handlers"
	"hubledger/internal/logger"
	"hubledger/internal/notify"
	"hubledger/internal/services"
	"hubledger/internal/validator"

	_ "hubledger/internal/docs" // Import swagger docs
)

// @title           Hubledger API
// @version         1.0
// @description     Shared household ledger: recurring transactions and monthly budgets per hub.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key

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
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	clk := clock.Real{}
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	notificationService := services.NewNotificationService(db)
	notifier, closeNotifier := notify.Build(notificationService, notifyOptions(appConfig))
	defer closeNotifier()

	templateService := services.NewTemplateService(db, accountService, clk)
	recurringService := services.NewRecurringService(db, accountService, transactionService, notifier, clk, appConfig.RecurringWorkers)
	runService := services.NewRecurringRunService(db)
	settingsService := services.NewHubSettingsService(db, appConfig.HubSettingsCacheTTL)
	budgetService := services.NewBudgetService(db, clk)
	instanceService := services.NewBudgetInstanceService(db, settingsService)

	router := handlers.NewRouter(handlers.Handlers{
		Account:      handlers.NewAccountHandler(accountService),
		Category:     handlers.NewCategoryHandler(categoryService),
		Transaction:  handlers.NewTransactionHandler(transactionService),
		Template:     handlers.NewTemplateHandler(templateService, recurringService, clk),
		Budget:       handlers.NewBudgetHandler(budgetService, instanceService, clk),
		Settings:     handlers.NewSettingsHandler(settingsService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Pipeline:     handlers.NewPipelineHandler(recurringService, runService, clk),
	}, appConfig.PipelineAPIKey)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if appConfig.PipelineAPIKey == "" {
		log.Warn("PIPELINE_API_KEY is empty; pipeline endpoints will answer 503")
	}
	log.Infof("Starting Hubledger API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

func notifyOptions(cfg *config.Config) notify.Options {
	return notify.Options{
		AMQPURL:        cfg.AMQPURL,
		AMQPExchange:   cfg.AMQPExchange,
		AMQPRoutingKey: cfg.AMQPRoutingKey,
		WebhookURL:     cfg.NotifyWebhookURL,
	}
}
