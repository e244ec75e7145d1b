// The pantallad command implements the signage provider daemon
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/narabyte/pantalla-signage/internal/pantallad/config"
	"github.com/narabyte/pantalla-signage/internal/pantallad/database"
	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
	eventhttp "github.com/narabyte/pantalla-signage/internal/pantallad/event/http"
	eventpg "github.com/narabyte/pantalla-signage/internal/pantallad/event/postgres"
	"github.com/narabyte/pantalla-signage/internal/pantallad/jobs"
	"github.com/narabyte/pantalla-signage/internal/pantallad/metrics"
	"github.com/narabyte/pantalla-signage/internal/pantallad/migrations"
	"github.com/narabyte/pantalla-signage/internal/pantallad/ratelimit"
	redisstore "github.com/narabyte/pantalla-signage/internal/pantallad/ratelimit/redis"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
	terminalhttp "github.com/narabyte/pantalla-signage/internal/pantallad/terminal/http"
	terminalpg "github.com/narabyte/pantalla-signage/internal/pantallad/terminal/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// A .env file is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		logger.Error("failed to setup database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	limiter := ratelimit.NewService(redisstore.NewStore(redisClient), logger)
	if err := limiter.RegisterLimit(terminalhttp.RateLimitScreenFetch, ratelimit.Limit{
		Rate:      cfg.RateLimit.ScreenFetchRate,
		Period:    cfg.RateLimit.Period,
		BurstSize: cfg.RateLimit.ScreenFetchBurst,
	}); err != nil {
		logger.Error("failed to register rate limit", "error", err)
		os.Exit(1)
	}

	hub := terminalhttp.NewHub(logger)

	eventRepo := eventpg.NewRepository(db, logger)
	eventService := event.NewService(eventRepo, hub, logger)

	terminalRepo := terminalpg.NewRepository(db, logger)
	terminalService := terminal.NewService(terminalRepo, eventService, logger)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.RegisterEventRetention(eventRepo, cfg.Jobs.RetentionSchedule, cfg.Jobs.RetentionKeepFor); err != nil {
		logger.Error("failed to register retention job", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// The terminal router carries the shared middleware stack; the event
	// admin API and metrics endpoint mount onto it
	r := terminalhttp.NewHandler(terminalService, limiter, hub, logger).Router()
	r.Mount("/api/v1alpha1/events", eventhttp.NewHandler(eventService, logger).Router())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
		)

		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	<-shutdown
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// setupDatabase connects with retry, applies pool settings, and runs any
// pending migrations
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := database.Connect(cfg.Database.ConnectionString(), 5, time.Second)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrations.NewManager(db).ApplyMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database ready",
		"host", cfg.Database.Host,
		"name", cfg.Database.Name,
	)
	return db, nil
}
