package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mintflow/syncd/internal/core/ports"
	"github.com/mintflow/syncd/internal/core/services"
	"github.com/mintflow/syncd/internal/handlers"
	"github.com/mintflow/syncd/internal/integrations/plaidapi"
	"github.com/mintflow/syncd/internal/middleware"
	"github.com/mintflow/syncd/internal/platform/categorizer"
	"github.com/mintflow/syncd/internal/platform/config"
	"github.com/mintflow/syncd/internal/platform/notifier"
	"github.com/mintflow/syncd/internal/repositories/database/pgsql"
	"github.com/mintflow/syncd/internal/scheduler"
	"github.com/mintflow/syncd/pkg/database"

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
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	provider := plaidapi.NewClient(cfg.ProviderBaseURL, cfg.ProviderClientID, cfg.ProviderSecret, cfg.ProviderTimeout)

	var classifier ports.Categorizer
	if cfg.CategorizerURL != "" {
		classifier = categorizer.NewRemoteCategorizer(cfg.CategorizerURL, cfg.ProviderTimeout)
		logger.Info("Using remote categorizer", slog.String("url", cfg.CategorizerURL))
	} else {
		classifier = categorizer.NewKeywordCategorizer()
		logger.Info("Using built-in keyword categorizer")
	}

	publisher := notifier.NewChannelPublisher(64)
	defer publisher.Close()
	go drainNotifications(publisher, logger)

	serviceContainer := services.NewServiceContainer(cfg, repos, provider, classifier, publisher)

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RateLimit(newRateLimiter(cfg.RateLimit, logger)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	// Background sync schedule
	syncScheduler := scheduler.NewSyncScheduler(repos.ConnectionRepo, serviceContainer.Sync, cfg.SyncSchedule, logger)
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	if err := syncScheduler.Start(schedulerCtx); err != nil {
		logger.Error("Failed to start sync scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer syncScheduler.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt, then shut down gracefully so in-flight syncs can finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server exited")
}

// runMigrations applies all pending database migrations from the migrations directory.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a standard sql.DB connection for migrations, using the pgx stdlib
	// driver so it is compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
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

// newRateLimiter builds an in-memory IP rate limiter from a formatted rate
// such as "100-M". An invalid format falls back to a permissive default.
func newRateLimiter(formatted string, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.Warn("Invalid rate limit format, using default 100-M", slog.String("value", formatted))
		rate, _ = limiter.NewRateFromFormatted("100-M")
	}
	return limiter.New(memory.NewStore(), rate)
}

// drainNotifications logs published alert messages. In a deployment with a
// real broker this consumer would be replaced by the broker integration.
func drainNotifications(publisher *notifier.ChannelPublisher, logger *slog.Logger) {
	for msg := range publisher.Messages() {
		logger.Info("Alert notification published",
			slog.String("topic", msg.Topic),
			slog.Any("payload", msg.Payload),
		)
	}
}
