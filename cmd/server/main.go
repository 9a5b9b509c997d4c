// Package main runs the CSR platform HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/csr-bridge/backend/config"
	"github.com/csr-bridge/backend/internal/auth"
	"github.com/csr-bridge/backend/internal/server"
	"github.com/csr-bridge/backend/internal/store/driver"
	"github.com/csr-bridge/backend/pkg/queue"
	"github.com/csr-bridge/backend/pkg/redis"
	"github.com/csr-bridge/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.JWT.Secret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET not set; using the development default")
	}

	ctx := context.Background()
	st, err := driver.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("store", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer st.Close(context.Background())

	app := &server.App{
		Store:     st,
		Tokens:    auth.NewTokenService(cfg.JWT.Secret),
		Logger:    logger,
		APIPrefix: cfg.Server.APIPrefix,
		ListLimit: cfg.Server.ListLimit,
		CORS:      cfg.Server.CORSAllowedOrigins,
	}

	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("repair queue disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			app.Repairs = queue.NewQueue(rdb.Client, logger)
		}
	} else {
		logger.Info("REDIS_ADDR not set; partial connection writes are logged only")
	}

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ImagesBucket:         cfg.AWS.ImagesBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	if s3Cfg.Enabled() {
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			app.Images = s3Client
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.NewRouter(app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("prefix", cfg.Server.APIPrefix),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
