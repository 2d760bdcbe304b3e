// Package server assembles the services and the HTTP router shared by the
// API and the scheduled syncer.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"finsight/internal/aggregate"
	"finsight/internal/cache"
	"finsight/internal/config"
	"finsight/internal/events"
	"finsight/internal/handlers"
	"finsight/internal/middleware"
	"finsight/internal/models"
	"finsight/internal/plaid"
	"finsight/internal/services"
)

// Services holds every service the handlers and the syncer depend on.
type Services struct {
	Rules        services.RuleServicer
	Accounts     services.AccountServicer
	Items        services.ItemServicer
	Transactions services.TransactionServicer
	Sync         services.SyncServicer
	Summary      services.SummaryServicer
	Audit        services.AuditServicer
}

// NewServices wires the service graph over db.
func NewServices(db *gorm.DB, cfg *config.Config, clients plaid.Clients, notifier events.Notifier) *Services {
	rules := services.NewRuleService(db)
	accounts := services.NewAccountService(db, cache.NewMemory[string, models.Account](), cfg.AccountCacheTTL)
	items := services.NewItemService(db)
	transactions := services.NewTransactionService(db, accounts, rules, services.UpsertOptions{
		BatchSize:   cfg.UpsertBatchSize,
		Concurrency: cfg.UpsertConcurrency,
	})
	syncService := services.NewSyncService(items, accounts, transactions, clients, notifier, services.SyncOptions{
		PageSize:        cfg.SyncPageSize,
		StalenessWindow: cfg.SyncStalenessWindow,
		UserConcurrency: cfg.SyncUserConcurrency,
	})
	classifier := aggregate.NewClassifier(cfg.CostCategories, cfg.IncomeCategories)

	return &Services{
		Rules:        rules,
		Accounts:     accounts,
		Items:        items,
		Transactions: transactions,
		Sync:         syncService,
		Summary:      services.NewSummaryService(transactions, classifier),
		Audit:        services.NewAuditService(db),
	}
}

// Options configures the router.
type Options struct {
	JWTSecret       string
	PipelineAPIKeys []string
	// Heartbeat is the keep-alive interval of the sync event stream.
	Heartbeat time.Duration
	Swagger   bool
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *Services, hub *events.Hub, opts Options) *gin.Engine {
	ruleHandler := handlers.NewRuleHandler(svc.Rules, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	itemHandler := handlers.NewItemHandler(svc.Items, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Accounts)
	syncHandler := handlers.NewSyncHandler(svc.Sync, hub, svc.Audit, opts.Heartbeat)
	summaryHandler := handlers.NewSummaryHandler(svc.Summary)
	pipelineHandler := handlers.NewPipelineHandler(svc.Sync)
	auditHandler := handlers.NewAuditHandler(svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKeys...))
	pipeline.POST("/sync", pipelineHandler.SyncAllUsers)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(opts.JWTSecret))

	rules := protected.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetUserRules)
	rules.GET("/:id", ruleHandler.GetRuleByID)
	rules.PUT("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.POST("/:id/mark-delete", transactionHandler.MarkDelete)

	items := protected.Group("/items")
	items.GET("", itemHandler.GetUserItems)
	items.POST("/:id/archive", itemHandler.ArchiveItem)

	protected.GET("/accounts", accountHandler.GetUserAccounts)
	protected.GET("/net-worth", accountHandler.GetNetWorth)

	protected.POST("/sync", syncHandler.SyncUser)
	protected.GET("/sync/events", syncHandler.StreamEvents)

	protected.GET("/summaries/monthly", summaryHandler.GetMonthlySummary)

	protected.GET("/audit-logs", auditHandler.GetUserAuditLogs)

	return router
}
