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

	"guestlist/internal/analytics"
	analyticsapi "guestlist/internal/analytics/api"
	"guestlist/internal/auth"
	"guestlist/internal/cache"
	"guestlist/internal/config"
	"guestlist/internal/database/migrations"
	"guestlist/internal/kafka"
	"guestlist/internal/ledger"
	ledgerdb "guestlist/internal/ledger/db"
	"guestlist/internal/ledger/guest_api"
	"guestlist/internal/links"
	linksdb "guestlist/internal/links/db"
	"guestlist/internal/links/link_api"
	"guestlist/internal/locks"
	"guestlist/internal/logger"
	"guestlist/internal/users"
	usersdb "guestlist/internal/users/db"
	"guestlist/internal/users/user_api"
	"guestlist/internal/venues"
	venuesdb "guestlist/internal/venues/db"
	"guestlist/internal/venues/venue_api"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	log.Info("REDIS", "Redis connection successful")
	return client
}

// startInvalidators consumes guest events from the registration service
// and drops the affected listing snapshot, so staff polling sees new
// registrations without waiting out the snapshot TTL.
func startInvalidators(cfg *config.Config, snapshots *cache.SnapshotCache, log *logger.Logger) []*kafka.Consumer {
	topics := []string{
		cfg.Kafka.Topics.GuestRegistered,
		cfg.Kafka.Topics.GuestCheckedIn,
		cfg.Kafka.Topics.GuestDeleted,
	}

	consumers := make([]*kafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID)
		consumers = append(consumers, consumer)

		go consumer.Start(func(event kafka.GuestEvent) {
			snapshots.Invalidate(context.Background(), event.Guest.VenueID, event.Guest.TargetDate)
			log.LogKafka("CONSUME", event.Type, fmt.Sprintf("invalidated snapshot %s/%s", event.Guest.VenueID, event.Guest.TargetDate))
		})
	}
	return consumers
}

// requestLogger logs every API call with its caller. The sub is read
// from the bearer token without verification, for log attribution only;
// the OIDC middleware behind it does the real check.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			caller := "anonymous"
			if token, err := auth.ExtractTokenFromRequest(r); err == nil {
				if sub, err := auth.ExtractUserIDFromJWT(token); err == nil {
					caller = sub
				}
			}

			next.ServeHTTP(w, r)
			log.LogAPI(r.Method, r.URL.Path, caller, time.Since(start).String())
		})
	}
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	appLogger := logger.NewLogger("guestlist-service")
	defer appLogger.Close()

	bunDB := connectDatabase(cfg, appLogger)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	appLogger.Info("DATABASE", "Migrations applied")

	redisClient := connectRedis(cfg, appLogger)
	defer redisClient.Close()

	// --- Kafka ---
	var producer *kafka.Producer
	var consumers []*kafka.Consumer
	snapshots := cache.NewSnapshotCache(redisClient)
	if cfg.Kafka.Enabled {
		if !cfg.Kafka.MockMode {
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{
				cfg.Kafka.Topics.GuestRegistered,
				cfg.Kafka.Topics.GuestCheckedIn,
				cfg.Kafka.Topics.GuestDeleted,
			}); err != nil {
				appLogger.Warn("KAFKA", fmt.Sprintf("Topic setup failed: %v", err))
			}
			consumers = startInvalidators(cfg, snapshots, appLogger)
		}
		producer = kafka.NewProducer(cfg.Kafka)
	} else {
		appLogger.Warn("KAFKA", "Kafka disabled, guest events will not be published")
	}

	// --- Services ---
	usersDB := &usersdb.DB{Bun: bunDB}
	resolver := auth.NewResolver(usersDB, redisClient)
	locker := locks.NewLocker(redisClient)

	ledgerService := ledger.NewService(&ledgerdb.DB{Bun: bunDB}, publisherOrNil(producer))
	linkService := links.NewService(&linksdb.DB{Bun: bunDB})
	venueService := venues.NewService(&venuesdb.DB{Bun: bunDB})
	userService := users.NewService(usersDB)
	analyticsService := analytics.NewService(analytics.NewDB(bunDB))

	// --- Handlers ---
	guestHandler := &guest_api.Handler{
		Ledger:     ledgerService,
		Resolver:   resolver,
		Locker:     locker,
		Snapshots:  snapshots,
		Logger:     appLogger,
		CutoffHour: cfg.Business.CutoffHour,
	}
	linkHandler := &link_api.Handler{
		Links:        linkService,
		Resolver:     resolver,
		Logger:       appLogger,
		PublicOrigin: cfg.Server.PublicOrigin,
		CutoffHour:   cfg.Business.CutoffHour,
	}
	venueHandler := &venue_api.Handler{Venues: venueService, Resolver: resolver, Logger: appLogger}
	userHandler := &user_api.Handler{Users: userService, Resolver: resolver, Logger: appLogger}
	analyticsHandler := &analyticsapi.Handler{
		Analytics:  analyticsService,
		Resolver:   resolver,
		Logger:     appLogger,
		CutoffHour: cfg.Business.CutoffHour,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(requestLogger(appLogger))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))
		guestHandler.RegisterRoutes(r)
		linkHandler.RegisterRoutes(r)
		venueHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r)
		analyticsHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", "Guestlist Service running on "+cfg.Server.Port)
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

	for _, consumer := range consumers {
		_ = consumer.Close()
	}
	if producer != nil {
		_ = producer.Close()
	}
	appLogger.Info("SERVER", "Guestlist service shutdown complete")
}

// publisherOrNil keeps the ledger's publisher a typed nil-free interface:
// a nil *Producer inside a non-nil interface would dodge the service's
// nil check.
func publisherOrNil(p *kafka.Producer) ledger.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
