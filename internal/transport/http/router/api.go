package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"project-management-api/internal/core/config"
	"project-management-api/internal/core/errs"
	"project-management-api/internal/core/server"
	"project-management-api/internal/core/tracing"
	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/handler"
	mdw "project-management-api/internal/transport/http/middleware"
	resp "project-management-api/internal/transport/http/response"
)

type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	HTTP     config.HTTP
	Name     string
	Tokens   mdw.TokenVerifier
	Users    *service.UserService
	Projects *service.ProjectService
	Tasks    *service.TaskService
	Auth     *service.AuthService
	// Registry 为空时新建独立 registry
	Registry *prometheus.Registry
	// Tracing 为空时用 noop
	Tracing *tracing.Provider
}

var errRouteNotFound = errs.NotFound("Resource not found")

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if d.Tracing == nil {
		d.Tracing = tracing.Noop()
	}

	r := server.NewEngine(d.Log, server.Options{
		AllowOrigins: d.HTTP.CORSAllowOrigins,
		Recovery:     mdw.Recovered,
	})

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Tracing(d.Tracing),
		mdw.NewMetrics(d.Registry).Handler(),
		mdw.AccessLog(d.Log),
	)
	if d.HTTP.RequestTimeoutSec > 0 {
		// 放在并发限制之前，排队等待也受超时约束
		r.Use(mdw.Timeout(time.Duration(d.HTTP.RequestTimeoutSec) * time.Second))
	}
	if d.HTTP.RateLimitRPS > 0 {
		burst := d.HTTP.RateLimitBurst
		if burst <= 0 {
			burst = max(1, int(d.HTTP.RateLimitRPS))
		}
		if d.HTTP.RateLimitPerIP {
			r.Use(mdw.RateLimitPerIP(rate.Limit(d.HTTP.RateLimitRPS), burst, 10*time.Minute))
		} else {
			r.Use(mdw.RateLimit(rate.Limit(d.HTTP.RateLimitRPS), burst))
		}
	}
	if d.HTTP.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(d.HTTP.MaxInFlight))
	}
	if d.HTTP.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(d.HTTP.MaxBodyBytes))
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry})))
	r.NoRoute(func(c *gin.Context) { resp.Fail(c, errRouteNotFound) })

	authed := r.Group("", mdw.RequireAccess(d.Tokens, d.Users))
	groups := handler.Groups{
		Public:  &r.RouterGroup,
		Authed:  authed,
		Manager: authed.Group("", mdw.RequireManager()),
	}
	MountAll(groups,
		handler.NewSystemHandler(d.Name, d.DB, d.Log),
		handler.NewAuthHandler(d.Auth),
		handler.NewUserHandler(d.Users),
		handler.NewProjectHandler(d.Projects),
		handler.NewTaskHandler(d.Tasks),
	)
	return r
}
