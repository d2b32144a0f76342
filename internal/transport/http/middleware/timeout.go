package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/core/errs"
	resp "project-management-api/internal/transport/http/response"
)

// Timeout 给请求上下文加截止时间；gorm/redis 都走 WithContext，到点即取消。
// 存储层超时由 service 映射成 504，这里兜底处理 handler 什么都没写的情况
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Fail(c, errs.Timeout("request deadline", ctx.Err()))
		}
	}
}
