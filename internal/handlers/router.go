package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hubledger/internal/middleware"
)

// Handlers groups every HTTP handler served under /api/v1.
type Handlers struct {
	Account      *AccountHandler
	Category     *CategoryHandler
	Transaction  *TransactionHandler
	Template     *TemplateHandler
	Budget       *BudgetHandler
	Settings     *SettingsHandler
	Notification *NotificationHandler
	Pipeline     *PipelineHandler
}

// NewRouter builds the engine with the shared middleware and the /api/v1
// routes. Hub routes sit behind HubScope; scheduler routes behind the
// pipeline API key.
func NewRouter(h Handlers, pipelineAPIKey string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	v1 := router.Group("/api/v1")

	pipeline := v1.Group("/pipeline", middleware.PipelineAuthMiddleware(pipelineAPIKey))
	pipeline.POST("/recurring/run", h.Pipeline.RunRecurring)
	pipeline.GET("/recurring/runs", h.Pipeline.ListRuns)

	hub := v1.Group("/hubs/:hubID", middleware.HubScope())

	accounts := hub.Group("/accounts")
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.GetHubAccounts)
	accounts.GET("/:id", h.Account.GetAccount)

	categories := hub.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetHubCategories)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	hub.GET("/transactions", h.Transaction.GetHubTransactions)

	templates := hub.Group("/templates")
	templates.POST("", h.Template.CreateTemplate)
	templates.GET("", h.Template.ListTemplates)
	templates.GET("/:id", h.Template.GetTemplate)
	templates.POST("/:id/archive", h.Template.ArchiveTemplate)
	templates.POST("/:id/unarchive", h.Template.UnarchiveTemplate)
	templates.PUT("/:id/status", h.Template.SetStatus)
	templates.POST("/:id/generate", h.Template.GenerateNow)

	budgets := hub.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/period", h.Budget.GetPeriodBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)
	budgets.PUT("/:id/spent", h.Budget.SetSpent)

	hub.GET("/settings/carry-over", h.Settings.GetCarryOver)
	hub.PUT("/settings/carry-over", h.Settings.SetCarryOver)

	hub.GET("/notifications", h.Notification.GetHubNotifications)

	return router
}
