package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/importer"
	"ms-linkmarket/internal/importer/import_api"
	importkafka "ms-linkmarket/internal/importer/kafka"
	importredis "ms-linkmarket/internal/importer/redis"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/outlet"
	outletdb "ms-linkmarket/internal/outlet/db"
	"ms-linkmarket/internal/outlet/outlet_api"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.NewLogger()
	defer appLogger.Close()

	// --- PostgreSQL Setup ---
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.Username, cfg.Database.Password,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("❌ Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Initialize Dependencies ---
	store := &outletdb.DB{Bun: bunDB}
	producer := importkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OutletSubmitted)
	defer producer.Close()

	imp := importer.NewImporter(store, importredis.NewRedis(redisClient), producer, appLogger)
	sheets := importer.NewSheetFetcher(cfg.Sheets)
	outletService := outlet.NewOutletService(store, redisClient, appLogger)

	importHandler := import_api.NewHandler(imp, sheets, appLogger)
	outletHandler := outlet_api.NewHandler(outletService, appLogger)

	// --- Setup Router ---
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		importHandler.RegisterRoutes(r)
		outletHandler.RegisterRoutes(r)
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Import Service running on %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("📦 Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
