package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"project-management-api/internal/core/auth"
	"project-management-api/internal/core/cache"
	"project-management-api/internal/core/config"
	"project-management-api/internal/core/database"
	"project-management-api/internal/core/logger"
	"project-management-api/internal/core/server"
	"project-management-api/internal/core/tracing"
	"project-management-api/internal/domain"
	"project-management-api/internal/repo"
	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, cleanup := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.IsProduction(),
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()

	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.IsTesting():
		gin.SetMode(gin.TestMode)
	}
	gin.DefaultWriter = logger.ToWriter(lg, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(lg, zapcore.ErrorLevel)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, lg)
	lg.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(domain.Models()...); err != nil {
			lg.Fatal("automigrate failed", zap.Error(err))
		}
		lg.Info("automigrate done")
	}

	// 用户缓存（redis 地址为空则关闭）
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL())
	if rc != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			lg.Warn("redis unreachable, falling back to db", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	tp, err := tracing.New(context.Background(), tracing.Options{
		Enable:      cfg.Tracing.Enable,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})
	if err != nil {
		lg.Fatal("tracing init failed", zap.Error(err))
	}

	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	}

	userRepo := repo.NewUserRepo(db)
	projectRepo := repo.NewProjectRepo(db)
	taskRepo := repo.NewTaskRepo(db)
	userSvc := service.NewUserService(userRepo, projectRepo, rc, lg.Named("user"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.NewAPIEngine(router.Deps{
		Log:      lg,
		DB:       db,
		HTTP:     cfg.App.HTTP,
		Name:     cfg.App.Name,
		Tokens:   jwter,
		Users:    userSvc,
		Projects: service.NewProjectService(projectRepo, userRepo, taskRepo, lg.Named("project")),
		Tasks:    service.NewTaskService(taskRepo, projectRepo, lg.Named("task")),
		Auth:     service.NewAuthService(userSvc, userRepo, jwter, lg.Named("auth")),
		Registry: reg,
		Tracing:  tp,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	srv.ErrorLog = logger.ToStdLogger(lg, zapcore.ErrorLevel)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	lg.Info("api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	lg.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("http shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		lg.Warn("tracing shutdown", zap.Error(err))
	}
	if err := rc.Close(); err != nil {
		lg.Warn("redis close", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	lg.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.FromConfig(cfg.DB))
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
