package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/digiwallet/wallet_backend/internal/adapters/balance"
	"github.com/digiwallet/wallet_backend/internal/adapters/payment"
	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
	"github.com/digiwallet/wallet_backend/internal/core/services"
	"github.com/digiwallet/wallet_backend/internal/handlers"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/digiwallet/wallet_backend/internal/repositories/database/pgsql"
	"github.com/digiwallet/wallet_backend/pkg/config"
	"github.com/digiwallet/wallet_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors, latency metrics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(cfg),
		middleware.HTTPMetrics(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	adjuster := buildAdjuster(cfg, logger)

	var provider portsgw.PaymentProvider
	if cfg.StripeAPIKey != "" {
		provider = payment.NewStripeProvider(cfg.StripeAPIKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(repos, adjuster, provider, services.ContainerConfig{
		Transfer: services.TransferConfig{
			RemoteCallTimeout: cfg.RemoteCallTimeout,
			RetryBackoff:      cfg.RetryBackoff,
		},
		ProviderName: cfg.ProviderName,
		Currency:     cfg.Currency,
	})

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(r, cfg, container, rateLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildAdjuster picks the remote balance transport. HTTP wins when both
// a URL and a NATS address are configured; with neither, transfers apply
// balances locally only.
func buildAdjuster(cfg *config.Config, logger *slog.Logger) portsgw.BalanceAdjuster {
	if cfg.BalanceServiceURL != "" {
		logger.Info("Using HTTP balance adjuster", slog.String("url", cfg.BalanceServiceURL))
		return balance.NewHTTPAdjuster(cfg.BalanceServiceURL, cfg.BalanceServiceToken, cfg.RemoteCallTimeout)
	}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Error("Failed to connect to NATS", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Using NATS balance adjuster", slog.String("url", cfg.NATSURL))
		return balance.NewNATSAdjuster(nc)
	}
	logger.Info("No balance service configured, applying balances locally only")
	return nil
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Idempotency-Key")
	return cors.New(corsCfg)
}

// runMigrations applies pending schema migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
