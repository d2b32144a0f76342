package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/dto"
	mdw "project-management-api/internal/transport/http/middleware"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) Mount(g Groups) {
	RegisterAction(g.Public, Action[service.RegisterInput]{
		Method: http.MethodPost, Path: "/auth/register", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.RegisterInput) (int, any, error) {
			res, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, tokenBody("User registered successfully", res), nil
		},
	})

	RegisterAction(g.Public, Action[service.LoginInput]{
		Method: http.MethodPost, Path: "/auth/login", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (int, any, error) {
			res, err := h.svc.Login(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, tokenBody("Login successful", res), nil
		},
	})

	RegisterAction(g.Public, Action[service.RefreshInput]{
		Method: http.MethodPost, Path: "/auth/refresh", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.RefreshInput) (int, any, error) {
			tok, err := h.svc.Refresh(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "Token refreshed successfully", "access_token": tok}, nil
		},
	})

	RegisterAction(g.Authed, Action[struct{}]{
		Method: http.MethodGet, Path: "/auth/verify", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			return http.StatusOK, gin.H{"valid": true, "user": dto.FromUser(mdw.CurrentUser(c))}, nil
		},
	})

	// 无状态 token，服务端不做吊销；客户端丢弃即可
	RegisterAction(g.Authed, Action[struct{}]{
		Method: http.MethodPost, Path: "/auth/logout", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			return http.StatusOK, gin.H{"message": "Logout successful"}, nil
		},
	})
}

func tokenBody(msg string, res *service.AuthResult) gin.H {
	return gin.H{
		"message":       msg,
		"user":          dto.FromUser(res.User),
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
	}
}
