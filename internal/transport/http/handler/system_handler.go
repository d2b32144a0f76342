package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/core/errs"
)

type SystemHandler struct {
	name string
	db   *gorm.DB
	log  *zap.Logger
}

func NewSystemHandler(name string, db *gorm.DB, l *zap.Logger) *SystemHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &SystemHandler{name: name, db: db, log: l}
}

func (h *SystemHandler) Priority() int { return 0 }

func (h *SystemHandler) Mount(g Groups) {
	RegisterAction(g.Public, Action[struct{}]{
		Method: http.MethodGet, Path: "/", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			return http.StatusOK, gin.H{
				"message": "Project Management API",
				"name":    h.name,
				"endpoints": gin.H{
					"auth":     "/auth",
					"users":    "/users",
					"projects": "/projects",
					"tasks":    "/tasks",
					"health":   "/health",
				},
			}, nil
		},
	})

	RegisterAction(g.Public, Action[struct{}]{
		Method: http.MethodGet, Path: "/health", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			if err := h.ping(c.Request.Context()); err != nil {
				h.log.Warn("health check failed", zap.Error(err))
				return 0, nil, errs.New(errs.KindUnavailable, "Database unavailable")
			}
			return http.StatusOK, gin.H{"status": "ok"}, nil
		},
	})
}

func (h *SystemHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
