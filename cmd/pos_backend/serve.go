package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/adapters/database/memory"
	"github.com/SscSPs/pos_reconciliation/internal/adapters/database/pgsql"
	"github.com/SscSPs/pos_reconciliation/internal/adapters/messaging"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/services"
	"github.com/SscSPs/pos_reconciliation/internal/handlers"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/SscSPs/pos_reconciliation/internal/platform/config"
	"github.com/SscSPs/pos_reconciliation/internal/platform/metrics"
	"github.com/SscSPs/pos_reconciliation/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the HTTP API. With STORE_DRIVER=postgres pending migrations are applied first
unless --skip-migrations is given.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("skip-migrations", false, "Do not apply pending migrations on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tm, closeStore, err := openStore(ctx, cfg, skipMigrations, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	m := metrics.New()
	container := services.NewServiceContainer(tm,
		services.WithPublisher(publisher),
		services.WithMetrics(m),
	)

	if cfg.InitialUSDToIQD.IsPositive() {
		seeded, err := services.SeedExchangeRate(ctx, tm, cfg.InitialUSDToIQD)
		if err != nil {
			return fmt.Errorf("failed to seed exchange rate: %w", err)
		}
		if seeded {
			logger.Info("Seeded live exchange rate", slog.String("usd_to_iqd", cfg.InitialUSDToIQD.String()))
		}
	}

	router, err := newRouter(cfg, container, m, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, skipMigrations bool, logger *slog.Logger) (portsrepo.TransactionManager, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("Using the in-memory store; records are lost on restart")
		return memory.NewDB(), func() {}, nil
	}

	if !skipMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp); err != nil {
			return nil, nil, err
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	return pgsql.NewDB(pool), func() { database.ClosePgxPool(pool) }, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (portssvc.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return messaging.NoopPublisher{}, func() {}
	}
	producer := messaging.NewProducer(cfg.KafkaBrokers)
	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", slog.String("error", err.Error()))
		}
	}
	return messaging.NewKafkaEventPublisher(producer, cfg.KafkaTopic, logger), closeFn
}

func newRouter(cfg *config.Config, container *portssvc.ServiceContainer, m *metrics.Metrics, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), middleware.Metrics(m))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	lim, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	handlers.RegisterRoutes(r, cfg, container, m, lim)
	return r, nil
}
