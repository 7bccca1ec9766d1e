package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"relief-ops/config"
	"relief-ops/internal/api/handler"
	"relief-ops/internal/api/router"
	"relief-ops/internal/repository"
	"relief-ops/internal/scheduler"
	"relief-ops/internal/service"
	"relief-ops/pkg/database"
	"relief-ops/pkg/jwt"
	applogger "relief-ops/pkg/logger"
	"relief-ops/pkg/modelstore"
	"relief-ops/pkg/predictionfeed"
	"relief-ops/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting relief-ops",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 4. redis is optional: without it there is no token blacklist, no
	// login rate limit and predictions live in memory
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}

	// 5. model store
	models, err := modelstore.Open(cfg.Forecast.ModelPath, logger)
	if err != nil {
		logger.Warn("model store unavailable, models are retrained on start", zap.Error(err))
		models = nil
	}

	// 6. wiring: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	var deps service.Deps
	if rdb != nil {
		deps.Blacklist = rdb
		deps.Predictions = service.NewCachePredictionStore(rdb)
	}
	if models != nil {
		deps.Models = models
	}
	if cfg.Feed.URL != "" {
		deps.Feed = predictionfeed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout, logger)
	}

	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	if err := svc.Forecast.WarmUp(context.Background()); err != nil {
		logger.Warn("forecast warm-up failed, training on first request", zap.Error(err))
	}

	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 7. periodic jobs
	sched := scheduler.New(&cfg.Scheduler, svc.Forecast, svc.Notifier, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	sched.Stop(ctx)

	if sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if models != nil {
		models.Close()
	}

	logger.Info("server stopped")
}
