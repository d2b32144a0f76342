package response

import (
	"github.com/gin-gonic/gin"

	"project-management-api/internal/core/errs"
)

type ErrorBody struct {
	Error string `json:"error"`
}

// Fail 中止请求并写 {"error": msg}；原始错误挂到 c.Errors 由访问日志输出
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusOf(err), ErrorBody{Error: errs.PublicMessage(err)})
}

func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
