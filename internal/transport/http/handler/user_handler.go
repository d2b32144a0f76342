package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/service"
	"project-management-api/internal/transport/http/dto"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Mount(g Groups) {
	RegisterAction(g.Manager, Action[service.CreateUserInput]{
		Method: http.MethodPost, Path: "/users", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (int, any, error) {
			u, err := h.svc.Create(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, gin.H{"message": "User created successfully", "user": dto.FromUser(u)}, nil
		},
	})

	RegisterAction(g.Authed, Action[service.ListUsersInput]{
		Method: http.MethodGet, Path: "/users", Binder: BindQuery,
		Handler: func(c *gin.Context, in *service.ListUsersInput) (int, any, error) {
			page, err := h.svc.List(c.Request.Context(), *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, list("users", dto.Users(page.Items), len(page.Items), page.Total, page.Limit, page.Offset), nil
		},
	})

	RegisterAction(g.Authed, Action[struct{}]{
		Method: http.MethodGet, Path: "/users/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			v, err := h.svc.Get(c.Request.Context(), id, flag(c, "include_projects"))
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"user": dto.FromUserView(v)}, nil
		},
	})

	RegisterAction(g.Manager, Action[service.UpdateUserInput]{
		Method: http.MethodPut, Path: "/users/:id", Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.UpdateUserInput) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			u, err := h.svc.Update(c.Request.Context(), id, *in)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "User updated successfully", "user": dto.FromUser(u)}, nil
		},
	})

	RegisterAction(g.Manager, Action[struct{}]{
		Method: http.MethodDelete, Path: "/users/:id", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (int, any, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return 0, nil, err
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return 0, nil, err
			}
			return http.StatusOK, gin.H{"message": "User deleted successfully"}, nil
		},
	})
}
