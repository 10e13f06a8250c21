// Package router wires services, handlers and middleware into the HTTP API.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/handlers"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/validator"

	_ "budgetbuddy/internal/docs" // Import swagger docs
)

// Services bundles the service layer the router exposes.
type Services struct {
	Categories  services.CategoryServicer
	Expenses    services.ExpenseServicer
	Budgets     services.BudgetServicer
	Archives    services.ArchiveServicer
	Incomes     services.IncomeServicer
	Performance services.PerformanceServicer
	Audit       services.AuditServicer
}

// NewServices builds the production service graph on db. Category, expense
// and budget writes share one spend propagator.
func NewServices(db *gorm.DB) *Services {
	propagator := services.NewSpendPropagator()
	archives := services.NewArchiveService(db)

	return &Services{
		Categories:  services.NewCategoryService(db, propagator),
		Expenses:    services.NewExpenseService(db, propagator),
		Budgets:     services.NewBudgetService(db, propagator, archives),
		Archives:    archives,
		Incomes:     services.NewIncomeService(db),
		Performance: services.NewPerformanceService(db),
		Audit:       services.NewAuditService(db),
	}
}

// New returns the API engine with every route registered.
func New(cfg *config.Config, svc *Services) *gin.Engine {
	validator.Register()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())

	if len(cfg.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowOrigins,
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
			AllowCredentials: true,
		}))
	}

	if cfg.EnablePprof {
		pprof.Register(r)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Archives, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Audit)
	incomeHandler := handlers.NewIncomeHandler(svc.Incomes, svc.Audit)
	performanceHandler := handlers.NewPerformanceHandler(svc.Performance)
	pipelineHandler := handlers.NewPipelineHandler(svc.Budgets)

	v1 := r.Group("/api/v1")

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/budgets/rollover", pipelineHandler.RolloverBudgets)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)
	budgets.POST("/:id/archive-and-reset", budgetHandler.ArchiveAndReset)
	budgets.PATCH("/:id/reset-preference", budgetHandler.UpdateResetPreference)
	protected.GET("/budget-history", budgetHandler.GetBudgetHistory)

	protected.GET("/performance", performanceHandler.GetPerformance)
	protected.GET("/balance", performanceHandler.GetBalance)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetUserExpenses)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	incomes := protected.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetUserIncomes)
	incomes.GET("/:id", incomeHandler.GetIncomeByID)
	incomes.PUT("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	return r
}
