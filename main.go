package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-dashboard/clients"
	"storefront-dashboard/config"
	"storefront-dashboard/logger"
	"storefront-dashboard/metrics"
	"storefront-dashboard/routes"
	"storefront-dashboard/services"
	"storefront-dashboard/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("invalid configuration: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	defer func() { _ = logger.Log.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var store storage.Store = storage.NewExpiringMemoryStore(cfg.SessionTTL)
	if cfg.RedisURL != "" {
		redisClient, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = storage.NewRedisStore(redisClient, "dashboard:", cfg.SessionTTL)
		logger.Log.Info("Session storage: redis")
	} else {
		logger.Log.Info("Session storage: memory")
	}

	var mc *metrics.Client
	if cfg.CloudWatchEnabled {
		mc, err = metrics.NewCloudWatch(ctx, cfg.CloudWatchNamespace)
		if err != nil {
			logger.Log.Warn("CloudWatch metrics init failed", zap.Error(err))
		} else {
			logger.Log.Info("CloudWatch metrics enabled", zap.String("namespace", cfg.CloudWatchNamespace))
		}
	}

	api := clients.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)
	dash := services.NewDashboard(api, nil, cfg.SessionTTL)

	r := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Dashboard: dash,
		Store:     store,
		Metrics:   mc,
		Log:       logger.Log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Dashboard listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Shutdown error", zap.Error(err))
	}
	logger.Log.Info("Dashboard stopped")
}
