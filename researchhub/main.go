package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"researchhub/researchhub/catalog"
	"researchhub/researchhub/config"
	"researchhub/researchhub/routes"
	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources/redis"
	"researchhub/researchhub/sources/storage"
	"researchhub/researchhub/sources/stores"
	"researchhub/researchhub/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.ErrorLogger.Error("invalid configuration", zap.Error(err))
		logging.AppLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, fellBack, err := stores.OpenWithFallback(ctx, cfg)
	if fellBack {
		logging.AppLogger.Warn("database unavailable, using in-memory store",
			zap.String("driver", cfg.StoreDriver),
			zap.Error(err),
		)
	} else if err != nil {
		logging.AppLogger.Fatal("store initialization failed", zap.Error(err))
	}

	cat, err := catalog.Default()
	if err != nil {
		logging.AppLogger.Fatal("catalog load failed", zap.Error(err))
	}

	deps := routes.Deps{
		Store:         store,
		Tokens:        token.NewService(cfg.JWTSecret, cfg.JWTExpiresIn),
		Catalog:       cat,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		Frontend:      frontendFS(ctx, cfg),
	}

	var rdb *redis.Redis
	if cfg.RedisAddr != "" {
		rdb, err = redis.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logging.AppLogger.Warn("redis unavailable, auth rate limiting disabled", zap.Error(err))
		} else {
			deps.Limiter = rdb
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", store.Driver()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
			logging.AppLogger.Fatal("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("store close error", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logging.AppLogger.Info("server shutdown complete")
}

// frontendFS picks the bucket when FRONTEND_BUCKET is set and the build
// directory otherwise. A nil result makes /app answer 503.
func frontendFS(ctx context.Context, cfg config.Config) fs.FS {
	if cfg.FrontendBucket != "" {
		client, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.AppLogger.Warn("frontend bucket unavailable", zap.String("bucket", cfg.FrontendBucket), zap.Error(err))
			return nil
		}
		return client.FS("")
	}
	if _, err := os.Stat(cfg.FrontendDir); err != nil {
		logging.AppLogger.Warn("frontend build directory not found", zap.String("dir", cfg.FrontendDir))
		return nil
	}
	return os.DirFS(cfg.FrontendDir)
}
