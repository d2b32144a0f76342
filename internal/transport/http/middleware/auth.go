package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/core/auth"
	"project-management-api/internal/domain"
	resp "project-management-api/internal/transport/http/response"
)

const KeyUser = "auth.user"

type TokenVerifier interface {
	VerifyType(token string, want auth.TokenType) (*auth.Claims, error)
}

// PrincipalLoader 不存在时返回 nil, nil
type PrincipalLoader interface {
	Principal(ctx context.Context, id uint64) (*domain.User, error)
}

// RequireAccess Bearer access token → 校验 → 加载用户 → 写入上下文
func RequireAccess(v TokenVerifier, users PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			resp.Fail(c, auth.ErrMissingToken)
			return
		}
		claims, err := v.VerifyType(raw, auth.TokenAccess)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		u, err := users.Principal(c.Request.Context(), claims.UserID)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if u == nil {
			resp.Fail(c, auth.ErrUserNotFound)
			return
		}
		c.Set(KeyUser, u)
		c.Next()
	}
}

// RequireManager 必须挂在 RequireAccess 之后；角色以库里为准而不是 token
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			resp.Fail(c, auth.ErrMissingToken)
			return
		}
		if !u.IsManager() {
			resp.Fail(c, auth.ErrInsufficientRole)
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(KeyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// BearerToken 只接受 Authorization 头，不读 query
func BearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
