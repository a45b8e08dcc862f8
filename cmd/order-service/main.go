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
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/order"
	orderdb "ms-linkmarket/internal/order/db"
	orderkafka "ms-linkmarket/internal/order/kafka"
	"ms-linkmarket/internal/order/order_api"
	outletdb "ms-linkmarket/internal/outlet/db"
)

func main() {
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

	// --- Initialize Dependencies ---
	producer := orderkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
	defer producer.Close()

	payments, err := order.NewStripePayments(cfg.Stripe, appLogger)
	if err != nil {
		log.Fatalf("❌ Stripe initialization failed: %v", err)
	}

	service := order.NewOrderService(
		&orderdb.DB{Bun: bunDB},
		&outletdb.DB{Bun: bunDB},
		producer,
		payments,
		appLogger,
	)
	handler := order_api.NewHandler(service, appLogger)

	// --- Setup Router ---
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		handler.RegisterRoutes(r)
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Order Service running on %s", cfg.Server.Port)
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
