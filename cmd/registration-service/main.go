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
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"guestlist/internal/config"
	"guestlist/internal/kafka"
	"guestlist/internal/ledger"
	ledgerdb "guestlist/internal/ledger/db"
	"guestlist/internal/ledger/public_api"
	"guestlist/internal/logger"
)

// The registration service is the anonymous surface behind shared
// /guest?token=... links. It runs separately from the staff service so a
// viral link cannot take the door tooling down with it.
func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	appLogger := logger.NewLogger("registration-service")
	defer appLogger.Close()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	if err := sqldb.Ping(); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	appLogger.Info("DATABASE", "Postgres connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	// Schema is owned by the staff service; this one only reads and writes.
	var producer *kafka.Producer
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka)
		publisher = producer
	} else {
		appLogger.Warn("KAFKA", "Kafka disabled, registrations will not be streamed")
	}

	ledgerService := ledger.NewService(&ledgerdb.DB{Bun: bunDB}, publisher)
	handler := &public_api.Handler{Ledger: ledgerService, Logger: appLogger}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	handler.RegisterRoutes(r)

	port := cfg.Server.Port
	if env := os.Getenv("REGISTRATION_PORT"); env != "" {
		port = env
	}

	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", "Registration Service running on "+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	appLogger.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)

	if producer != nil {
		_ = producer.Close()
	}
	appLogger.Info("SERVER", "Registration service shutdown complete")
}
