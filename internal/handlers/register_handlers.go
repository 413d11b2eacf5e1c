package handlers

import (
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/digiwallet/wallet_backend/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Prometheus scrape endpoint, outside the authenticated group
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API v1 routes with token auth, passing service interfaces
	setupAPIV1Routes(r, cfg, services, rateLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	// Apply token auth and rate limiting to the entire v1 group
	v1 := r.Group("/api/v1",
		middleware.RateLimit(rateLimiter),
		middleware.APITokenAuth(cfg.APIToken, cfg.APITokenHash),
	)

	// Delegate route registration to specific handlers, passing required services
	registerAccountRoutes(v1, services.Account)
	registerTransactionRoutes(v1, services.Transfer)
	registerTopUpRoutes(v1, services.TopUp)
}

func registerAccountRoutes(rg *gin.RouterGroup, accountSvc portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountSvc)
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:email", h.getAccount)
	}
}

func registerTransactionRoutes(rg *gin.RouterGroup, transferSvc portssvc.TransferSvcFacade) {
	h := newTransactionHandler(transferSvc)
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransfer)
		transactions.GET("", h.listTransactions)
	}
}

func registerTopUpRoutes(rg *gin.RouterGroup, topUpSvc portssvc.TopUpSvcFacade) {
	h := newTopUpHandler(topUpSvc)
	topups := rg.Group("/topups")
	{
		topups.POST("/session", h.createCheckoutSession)
		topups.POST("/confirm", h.confirmTopUp)
	}
}
