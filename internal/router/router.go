package router

import (
	"time"

	"github.com/dimaswi/pos-sub002/internal/config"
	"github.com/dimaswi/pos-sub002/internal/handler"
	"github.com/dimaswi/pos-sub002/internal/middleware"
	"github.com/dimaswi/pos-sub002/internal/repository"
	"github.com/dimaswi/pos-sub002/internal/service"
	"github.com/dimaswi/pos-sub002/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	returnRepo := repository.NewSalesReturnRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	pricingSvc := service.NewPricingService()
	txSvc := service.NewTransactionService(
		txRepo, productRepo, customerRepo, discountRepo, methodRepo, returnRepo,
		inventorySvc, pricingSvc, dispatcher, cfg.TransactionPrefix)
	returnSvc := service.NewReturnService(returnRepo, txRepo, discountRepo, inventorySvc, cfg.ReturnPrefix)
	transferSvc := service.NewTransferService(transferRepo, productRepo, inventorySvc, cfg.TransferPrefix)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	txH := handler.NewTransactionsHandler(txSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	transfersH := handler.NewTransfersHandler(transferSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	priceH := handler.NewPriceCheckHandler(productRepo, inventoryRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Price check — no auth required (scanner kiosks)
	r.GET("/v1/price/:store_id/:barcode", priceH.GetPrice)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		v1.POST("/transactions", middleware.RequireRole("cashier", "supervisor", "admin"), txH.Settle)
		v1.GET("/transactions", middleware.RequireRole("cashier", "supervisor", "admin"), txH.List)
		v1.GET("/transactions/:id", middleware.RequireRole("cashier", "supervisor", "admin"), txH.Get)
		v1.POST("/transactions/:id/void", middleware.RequireRole("supervisor", "admin"), txH.Void)

		returns := v1.Group("/returns")
		{
			returns.POST("", middleware.RequireRole("cashier", "supervisor", "admin"), returnsH.Create)
			returns.GET("", middleware.RequireRole("cashier", "supervisor", "admin"), returnsH.List)
			returns.GET("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), returnsH.Get)
			returns.PUT("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), returnsH.Update)
			returns.DELETE("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), returnsH.Delete)
			returns.POST("/:id/approve", middleware.RequireRole("supervisor", "admin"), returnsH.Approve)
			returns.POST("/:id/reject", middleware.RequireRole("supervisor", "admin"), returnsH.Reject)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.POST("", middleware.RequireRole("supervisor", "admin"), transfersH.Create)
			transfers.GET("", middleware.RequireRole("cashier", "supervisor", "admin"), transfersH.List)
			transfers.GET("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), transfersH.Get)
			transfers.PUT("/:id", middleware.RequireRole("supervisor", "admin"), transfersH.Update)
			transfers.DELETE("/:id", middleware.RequireRole("supervisor", "admin"), transfersH.Delete)
			transfers.POST("/:id/submit", middleware.RequireRole("supervisor", "admin"), transfersH.Submit)
			transfers.POST("/:id/approve", middleware.RequireRole("admin"), transfersH.Approve)
			transfers.POST("/:id/reject", middleware.RequireRole("admin"), transfersH.Reject)
			transfers.POST("/:id/cancel", middleware.RequireRole("supervisor", "admin"), transfersH.Cancel)
			transfers.POST("/:id/ship", middleware.RequireRole("supervisor", "admin"), transfersH.Ship)
			transfers.POST("/:id/receive", middleware.RequireRole("supervisor", "admin"), transfersH.Receive)
		}

		inv := v1.Group("/inventory")
		{
			inv.POST("/adjust", middleware.RequireRole("supervisor", "admin"), inventoryH.Adjust)
			inv.GET("/movements", middleware.RequireRole("cashier", "supervisor", "admin"), inventoryH.Movements)
			inv.GET("/low-stock", middleware.RequireRole("supervisor", "admin"), inventoryH.LowStock)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
