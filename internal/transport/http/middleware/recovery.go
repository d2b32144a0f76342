package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/core/errs"
	resp "project-management-api/internal/transport/http/response"
)

// Recovered 作为 ginzap.CustomRecoveryWithZap 的回调：panic 统一返回 500 JSON
func Recovered(c *gin.Context, rec any) {
	resp.Fail(c, errs.Internal("panic recovered", fmt.Errorf("%v", rec)))
}
