package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"project-management-api/internal/core/errs"
	resp "project-management-api/internal/transport/http/response"
)

var errServerBusy = errs.New(errs.KindUnavailable, "Server busy, try again later")

// ConcurrencyLimit 限制同时在处理的请求数（保护 DB 下游）；等待受请求超时约束
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Fail(c, errServerBusy)
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
