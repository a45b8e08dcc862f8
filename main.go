package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/database/migrations"
	"ms-linkmarket/internal/importer"
	"ms-linkmarket/internal/importer/import_api"
	importkafka "ms-linkmarket/internal/importer/kafka"
	importredis "ms-linkmarket/internal/importer/redis"
	"ms-linkmarket/internal/kafka"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/order"
	orderdb "ms-linkmarket/internal/order/db"
	orderkafka "ms-linkmarket/internal/order/kafka"
	"ms-linkmarket/internal/order/order_api"
	"ms-linkmarket/internal/outlet"
	outletdb "ms-linkmarket/internal/outlet/db"
	"ms-linkmarket/internal/outlet/outlet_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.Username, cfg.Database.Password,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func runMigrations(bunDB *bun.DB, logger *logger.Logger) {
	opts := migrations.DefaultOptions()
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		opts.MigrationsDir = dir
	}

	runner := migrations.NewRunner(bunDB, opts)
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	logger.Info("DATABASE", "✅ Schema migrations applied")
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Link Market gateway initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runMigrations(bunDB, logger)

	kafkaBrokers := cfg.Kafka.Brokers
	orderProducer := orderkafka.NewProducer(kafkaBrokers, cfg.Kafka.Topics)
	importProducer := importkafka.NewProducer(kafkaBrokers, cfg.Kafka.Topics.OutletSubmitted)
	logger.Info("KAFKA", "Kafka producers initialized successfully")

	requiredTopics := []string{
		cfg.Kafka.Topics.OrderCreated,
		cfg.Kafka.Topics.OrderStatusChanged,
		cfg.Kafka.Topics.OrderContentUpdated,
		cfg.Kafka.Topics.OutletSubmitted,
	}
	if err := kafka.EnsureTopicsExist(kafkaBrokers, requiredTopics); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		logger.Info("KAFKA", "Required topics ensured successfully")
	}

	payments, err := order.NewStripePayments(cfg.Stripe, logger)
	if err != nil {
		logger.Fatal("STRIPE", fmt.Sprintf("Stripe initialization failed: %v", err))
	}

	outletStore := &outletdb.DB{Bun: bunDB}

	orderService := order.NewOrderService(
		&orderdb.DB{Bun: bunDB},
		outletStore,
		orderProducer,
		payments,
		logger,
	)
	outletService := outlet.NewOutletService(outletStore, redisClient, logger)
	imp := importer.NewImporter(
		outletStore,
		importredis.NewRedis(redisClient),
		importProducer,
		logger,
	)
	sheets := importer.NewSheetFetcher(cfg.Sheets)

	orderHandler := order_api.NewHandler(orderService, logger)
	outletHandler := outlet_api.NewHandler(outletService, logger)
	importHandler := import_api.NewHandler(imp, sheets, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		logger.Info("AUTH", "JWT middleware applied to protected API routes")

		orderHandler.RegisterRoutes(r)
		logger.Info("ROUTER", "Order routes registered under /api/v1/orders")

		outletHandler.RegisterRoutes(r)
		logger.Info("ROUTER", "Outlet routes registered under /api/v1/outlets")

		importHandler.RegisterRoutes(r)
		logger.Info("ROUTER", "Import routes registered under /api/v1/import")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Link Market gateway running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Link Market gateway shutdown complete")
	}

	_ = orderProducer.Close()
	_ = importProducer.Close()
}
